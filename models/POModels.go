package models

import "time"

// Material types accepted on PO creation: direct or indirect material.
const (
	MaterialTypeDirect   = "D"
	MaterialTypeIndirect = "I"
)

// CreatePORequest creates one purchase order covering one or more approved
// comparison lists.
type CreatePORequest struct {
	MaterialType string       `json:"material_type" binding:"required" example:"D"`
	Remark       string       `json:"remark" example:"Deliver to warehouse B"`
	ExtDiscount  float64      `json:"ext_discount" example:"0"`
	POList       []POListItem `json:"po_list" binding:"required"`
}

type POListItem struct {
	PclID int `json:"pcl_id" binding:"required" example:"1"`
}

// PurchaseOrder is the committed order document.
type PurchaseOrder struct {
	POID         int       `json:"po_id" example:"1"`
	PONo         string    `json:"po_no" example:"PO-2024-0001"`
	MaterialType string    `json:"material_type" example:"D"`
	Remark       string    `json:"remark" example:""`
	ExtDiscount  float64   `json:"ext_discount" example:"0"`
	VendorCode   string    `json:"vendor_code" example:"V001"`
	VendorName   string    `json:"vendor_name" example:"ABC Suppliers"`
	Status       string    `json:"status" example:"Po Created"`
	TotalAmount  float64   `json:"total_amount" example:"250000.00"`
	CreatedBy    string    `json:"created_by" example:"John Doe"`
	CreatedAt    time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	Lines        []POLine  `json:"lines,omitempty"`
}

// POLine is one comparison list rolled into a purchase order.
type POLine struct {
	PclID         int     `json:"pcl_id" example:"1"`
	PartNo        string  `json:"part_no" example:"PN-001"`
	ProductDetail string  `json:"product_detail" example:"Hex bolt M8x30"`
	Qty           float64 `json:"qty" example:"500"`
	Unit          string  `json:"unit" example:"pcs"`
	Price         float64 `json:"price" example:"480.00"`
	Amount        float64 `json:"amount" example:"240000.00"`
}
