package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/pos-backoffice/internal/application/dto"
	"github.com/jhoicas/pos-backoffice/internal/application/inventory"
)

// InventoryHandler maneja las consultas y ajustes de existencias (protegido).
type InventoryHandler struct {
	uc *inventory.StockUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// ListByLocation godoc
// @Summary      Existencias de una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        kind  path  string  true  "branch | warehouse"
// @Param        id    path  string  true  "ID de la ubicación"
// @Success      200   {object}  dto.LocationStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/{kind}/{id} [get]
func (h *InventoryHandler) ListByLocation(c *fiber.Ctx) error {
	stock, err := h.uc.ListByLocation(c.Context(), c.Params("kind"), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.LocationStockResponse{
		Location: toLocationResponse(stock.Location),
		Total:    len(stock.Records),
		Records:  make([]dto.InventoryRecordResponse, 0, len(stock.Records)),
	}
	for _, r := range stock.Records {
		out.Records = append(out.Records, dto.InventoryRecordResponse{
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
			UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajustar existencia de un producto en una sucursal
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind        path  string                  true  "branch"
// @Param        id          path  string                  true  "ID de la sucursal"
// @Param        product_id  path  string                  true  "ID del producto"
// @Param        body        body  dto.AdjustStockRequest  true  "cantidad contada"
// @Success      200  {object}  dto.InventoryRecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{kind}/{id}/products/{product_id} [put]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var req dto.AdjustStockRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	rec, err := h.uc.Adjust(c.Context(), inventory.AdjustInput{
		Kind:       c.Params("kind"),
		LocationID: c.Params("id"),
		ProductID:  c.Params("product_id"),
		Quantity:   *req.Quantity,
		Actor:      GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.InventoryRecordResponse{
		ProductID: rec.ProductID,
		Quantity:  rec.Quantity,
		UpdatedAt: rec.UpdatedAt.Format(time.RFC3339),
	})
}
