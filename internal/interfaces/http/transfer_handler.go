package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/pos-backoffice/internal/application/dto"
	"github.com/jhoicas/pos-backoffice/internal/application/inventory"
	"github.com/jhoicas/pos-backoffice/internal/application/transfer"
	"github.com/jhoicas/pos-backoffice/internal/domain"
	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
)

// TransferHandler maneja las peticiones HTTP de traslados (protegido).
type TransferHandler struct {
	uc    *transfer.TransferUseCase
	stock *inventory.StockUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.TransferUseCase, stock *inventory.StockUseCase) *TransferHandler {
	return &TransferHandler{uc: uc, stock: stock}
}

// Create godoc
// @Summary      Trasladar productos entre ubicaciones
// @Description  Crea la factura de traslado (valor cero) y mueve cada ítem en orden.
//
//	Si un ítem falla se detiene el lote; los anteriores quedan aplicados y la respuesta es 422.
//
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "items, source, destination"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.TransferResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var req dto.TransferRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	in, err := toCreateInput(req, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.uc.Execute(c.Context(), in)
	return h.respond(c, res, err, fiber.StatusCreated)
}

// Resume godoc
// @Summary      Reanudar un traslado abortado
// @Description  Recibe el mismo carrito original; continúa desde el primer ítem sin línea persistida.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del traslado"
// @Param        body  body  dto.TransferResumeRequest  true  "carrito original"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.TransferResponse
// @Router       /api/transfers/{id}/resume [post]
func (h *TransferHandler) Resume(c *fiber.Ctx) error {
	var req dto.TransferResumeRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	res, err := h.uc.Resume(c.Context(), c.Params("id"), toItems(req.Items), GetUserID(c))
	return h.respond(c, res, err, fiber.StatusOK)
}

// respond 422 con el resultado parcial si el lote abortó; cualquier otro error pasa por writeError.
func (h *TransferHandler) respond(c *fiber.Ctx, res *transfer.TransferResult, err error, okStatus int) error {
	if err != nil {
		var of *domain.OperationFailure
		if res != nil && errors.As(err, &of) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(toTransferResponse(res))
		}
		return writeError(c, err)
	}
	return c.Status(okStatus).JSON(toTransferResponse(res))
}

// GetByID godoc
// @Summary      Obtener traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	detail, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toDetailResponse(detail))
}

// Slip godoc
// @Summary      Comprobante PDF del traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/slip [get]
func (h *TransferHandler) Slip(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.Slip(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}

// Movements godoc
// @Summary      Rastro de movimientos de un traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {array}   dto.MovementResponse
// @Router       /api/transfers/{id}/movements [get]
func (h *TransferHandler) Movements(c *fiber.Ctx) error {
	list, err := h.stock.Movements(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MovementResponse{
			ID:        m.ID,
			ProductID: m.ProductID,
			Location:  toLocationResponse(&entity.LocationDetail{Location: m.Location}),
			Type:      m.Type,
			Quantity:  m.Quantity,
			Before:    m.Before,
			After:     m.After,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
			CreatedBy: m.CreatedBy,
		})
	}
	return c.JSON(out)
}

// LinkOrphans godoc
// @Summary      Enlazar traslados huérfanos al libro
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LinkOrphansResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/transfers/ledger/link-orphans [post]
func (h *TransferHandler) LinkOrphans(c *fiber.Ctx) error {
	n, err := h.uc.LinkOrphans(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LinkOrphansResponse{Linked: n})
}

// ── mapeos ────────────────────────────────────────────────────────────────────

func toCreateInput(req dto.TransferRequest, actor string) (transfer.CreateInput, error) {
	src, err := entity.ParseLocation(req.Source.Kind, req.Source.ID)
	if err != nil {
		return transfer.CreateInput{}, domain.NewValidationError("source", err.Error())
	}
	dst, err := entity.ParseLocation(req.Destination.Kind, req.Destination.ID)
	if err != nil {
		return transfer.CreateInput{}, domain.NewValidationError("destination", err.Error())
	}
	return transfer.CreateInput{
		Items:             toItems(req.Items),
		Source:            src,
		Destination:       dst,
		RequestedLedgerID: req.LedgerID,
		Actor:             actor,
	}, nil
}

func toItems(items []dto.TransferItemRequest) []transfer.ItemInput {
	out := make([]transfer.ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, transfer.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func toTransferResponse(res *transfer.TransferResult) dto.TransferResponse {
	out := dto.TransferResponse{
		InvoiceID:     res.InvoiceID,
		InvoiceNumber: res.InvoiceNumber,
		LedgerID:      res.LedgerID,
		State:         string(res.State),
		Items:         make([]dto.TransferItemResult, 0, len(res.Items)),
		Message:       res.Message,
	}
	if res.AbortedAt >= 0 {
		at := res.AbortedAt
		out.AbortedAt = &at
	}
	for _, it := range res.Items {
		out.Items = append(out.Items, dto.TransferItemResult{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			Applied:    it.Applied,
			Stage:      string(it.Stage),
			LineItemID: it.LineItemID,
		})
	}
	return out
}

func toLocationResponse(d *entity.LocationDetail) dto.LocationResponse {
	if d == nil || d.Location == nil {
		return dto.LocationResponse{}
	}
	return dto.LocationResponse{
		Kind:    string(d.Location.Kind()),
		ID:      d.Location.Ref(),
		Name:    d.Name,
		Address: d.Address,
	}
}

func toDetailResponse(d *transfer.TransferDetail) dto.TransferDetailResponse {
	inv := d.Invoice
	out := dto.TransferDetailResponse{
		ID:          inv.ID,
		Number:      inv.Number,
		LedgerID:    inv.LedgerID,
		Source:      toLocationResponse(d.Source),
		Destination: toLocationResponse(d.Destination),
		NetTotal:    inv.NetTotal.StringFixed(2),
		TaxTotal:    inv.TaxTotal.StringFixed(2),
		GrandTotal:  inv.GrandTotal.StringFixed(2),
		Notes:       inv.Notes,
		ItemCount:   inv.ItemCount,
		CreatedBy:   inv.CreatedBy,
		CreatedAt:   inv.CreatedAt.Format(time.RFC3339),
		Lines:       make([]dto.TransferLineResponse, 0, len(d.Lines)),
	}
	for _, l := range d.Lines {
		out.Lines = append(out.Lines, dto.TransferLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Position:  l.Position,
		})
	}
	return out
}
