package dto

// LocationRef par (kind, id) de una ubicación.
type LocationRef struct {
	Kind string `json:"kind" validate:"required,oneof=branch warehouse"`
	ID   string `json:"id" validate:"required"`
}

// TransferItemRequest un producto del carrito.
type TransferItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"gt=0"`
}

// TransferRequest body para POST /api/transfers.
// LedgerID se acepta pero se ignora: el traslado siempre queda en el libro de traslados.
type TransferRequest struct {
	Items       []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
	Source      LocationRef           `json:"source"`
	Destination LocationRef           `json:"destination"`
	LedgerID    string                `json:"ledger_id,omitempty"`
}

// TransferResumeRequest body para POST /api/transfers/:id/resume: solo el carrito original.
// Origen y destino salen de la cabecera guardada.
type TransferResumeRequest struct {
	Items []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// TransferItemResult resultado de un ítem.
type TransferItemResult struct {
	ProductID  string `json:"product_id"`
	Quantity   int64  `json:"quantity"`
	Applied    bool   `json:"applied"`
	Stage      string `json:"stage,omitempty"`
	LineItemID string `json:"line_item_id,omitempty"`
}

// TransferResponse resultado de un traslado (completo o abortado).
type TransferResponse struct {
	InvoiceID     string               `json:"invoice_id,omitempty"`
	InvoiceNumber string               `json:"invoice_number,omitempty"`
	LedgerID      string               `json:"ledger_id"`
	State         string               `json:"state"`
	AbortedAt     *int                 `json:"aborted_at,omitempty"`
	Items         []TransferItemResult `json:"items"`
	Message       string               `json:"message"`
}

// LocationResponse ubicación con nombre legible.
type LocationResponse struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// TransferLineResponse línea persistida.
type TransferLineResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Position  int    `json:"position"`
}

// TransferDetailResponse cabecera + líneas para GET /api/transfers/:id.
type TransferDetailResponse struct {
	ID          string                 `json:"id"`
	Number      string                 `json:"number"`
	LedgerID    string                 `json:"ledger_id,omitempty"`
	Source      LocationResponse       `json:"source"`
	Destination LocationResponse       `json:"destination"`
	NetTotal    string                 `json:"net_total"`
	TaxTotal    string                 `json:"tax_total"`
	GrandTotal  string                 `json:"grand_total"`
	Notes       string                 `json:"notes"`
	ItemCount   int                    `json:"item_count"`
	CreatedBy   string                 `json:"created_by,omitempty"`
	CreatedAt   string                 `json:"created_at"`
	Lines       []TransferLineResponse `json:"lines"`
}

// LinkOrphansResponse resultado del barrido manual de huérfanos.
type LinkOrphansResponse struct {
	Linked int64 `json:"linked"`
}
