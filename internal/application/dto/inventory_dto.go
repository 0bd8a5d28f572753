package dto

// InventoryRecordResponse existencia de un producto en una ubicación.
type InventoryRecordResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UpdatedAt string `json:"updated_at"`
}

// LocationStockResponse body de GET /api/inventory/:kind/:id.
type LocationStockResponse struct {
	Location LocationResponse          `json:"location"`
	Total    int                       `json:"total"`
	Records  []InventoryRecordResponse `json:"records"`
}

// AdjustStockRequest body para PUT /api/inventory/:kind/:id/products/:product_id.
type AdjustStockRequest struct {
	Quantity *int64 `json:"quantity" validate:"required,gte=0"`
}

// MovementResponse un movimiento del rastro de auditoría.
type MovementResponse struct {
	ID        string           `json:"id"`
	ProductID string           `json:"product_id"`
	Location  LocationResponse `json:"location"`
	Type      string           `json:"type"`
	Quantity  int64            `json:"quantity"`
	Before    int64            `json:"before"`
	After     int64            `json:"after"`
	CreatedAt string           `json:"created_at"`
	CreatedBy string           `json:"created_by,omitempty"`
}
