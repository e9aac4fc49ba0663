package models

import "time"

// Vendor is one entry in the vendor directory.
type Vendor struct {
	VendorCode string    `json:"vendor_code" example:"V001"`
	VendorName string    `json:"vendor_name" binding:"required" example:"ABC Suppliers"`
	TaxID      string    `json:"tax_id" example:"0105536112233"`
	CreditTerm string    `json:"credit_term" example:"30 days"`
	Email      string    `json:"email" example:"sales@abc.example.com"`
	Phone      string    `json:"phone" example:"022223333"`
	Fax        string    `json:"fax" example:""`
	Address    string    `json:"address" example:"123 Industrial Rd"`
	Status     string    `json:"status" example:"active"`
	CreatedAt  time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt  time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
	CreatedBy  string    `json:"created_by" example:"admin"`
	UpdatedBy  string    `json:"updated_by" example:"admin"`
}
