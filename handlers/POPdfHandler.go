package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GeneratePOPdf godoc
// @Summary      Generate purchase order PDF
// @Tags         PurchaseOrders
// @Param        po_id  path  int  true  "PO id"
// @Success      200  "PDF file"
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/purchase/po/pdf/{po_id} [get]
func GeneratePOPdf(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := bearerToken(c)
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization header is required"})
			return
		}
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		poID, err := strconv.Atoi(c.Param("po_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "po_id must be an integer"})
			return
		}

		titleCaser := cases.Title(language.Und)

		po, err := fetchPO(db, poID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var vendorAddress, vendorEmail, vendorPhone, creditTerm string
		_ = db.QueryRow(`
			SELECT COALESCE(address, ''), COALESCE(email, ''), COALESCE(phone, ''), COALESCE(credit_term, '')
			FROM vendors WHERE vendor_code = $1`, po.VendorCode).
			Scan(&vendorAddress, &vendorEmail, &vendorPhone, &creditTerm)

		// --- Generate PDF ---
		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetMargins(10, 10, 10)
		pdf.SetFont("Arial", "", 10)

		// --- Header ---
		pdf.SetFont("Arial", "B", 18)
		pdf.Cell(190, 10, "PURCHASE ORDER")
		pdf.Ln(12)

		// --- Vendor block ---
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(95, 8, "Vendor")
		pdf.Cell(95, 8, "Order Info")
		pdf.Ln(8)

		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(90, 6, fmt.Sprintf(
			"%s (%s)\n%s\n%s\n%s",
			po.VendorName, po.VendorCode, vendorAddress, vendorEmail, vendorPhone,
		), "", "", false)
		pdf.SetXY(110, 38)
		materialType := "Direct material"
		if po.MaterialType == "I" {
			materialType = "Indirect material"
		}
		pdf.MultiCell(90, 6, fmt.Sprintf(
			"PO No: %s\nDate: %s\nMaterial: %s\nCredit term: %s",
			po.PONo, po.CreatedAt.Format("02-Jan-2006"), materialType, creditTerm,
		), "", "", false)
		pdf.Ln(10)

		// --- Table Header ---
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(30, 8, "Part No", "1", 0, "L", true, 0, "")
		pdf.CellFormat(60, 8, "Description", "1", 0, "L", true, 0, "")
		pdf.CellFormat(25, 8, "Qty", "1", 0, "C", true, 0, "")
		pdf.CellFormat(15, 8, "Unit", "1", 0, "C", true, 0, "")
		pdf.CellFormat(25, 8, "Unit Price", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 8, "Amount", "1", 1, "R", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		var subtotal float64
		for _, line := range po.Lines {
			subtotal += line.Amount

			detail := line.ProductDetail
			if len(detail) > 38 {
				detail = detail[:35] + "..."
			}
			pdf.CellFormat(30, 8, line.PartNo, "1", 0, "L", false, 0, "")
			pdf.CellFormat(60, 8, detail, "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 8, fmt.Sprintf("%.2f", line.Qty), "1", 0, "C", false, 0, "")
			pdf.CellFormat(15, 8, line.Unit, "1", 0, "C", false, 0, "")
			pdf.CellFormat(25, 8, fmt.Sprintf("%.2f", line.Price), "1", 0, "C", false, 0, "")
			pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", line.Amount), "1", 1, "R", false, 0, "")
		}

		pdf.Ln(5)

		// --- Totals ---
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(155, 8, "Subtotal")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", subtotal), "1", 1, "R", false, 0, "")
		if po.ExtDiscount > 0 {
			pdf.Cell(155, 8, "Extra Discount")
			pdf.CellFormat(35, 8, fmt.Sprintf("-%.2f", po.ExtDiscount), "1", 1, "R", false, 0, "")
		}
		pdf.Cell(155, 8, "Total Amount")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", po.TotalAmount-po.ExtDiscount), "1", 1, "R", false, 0, "")

		// --- Remark ---
		if po.Remark != "" {
			pdf.Ln(8)
			pdf.SetFont("Arial", "B", 11)
			pdf.Cell(190, 8, "Remark:")
			pdf.Ln(6)
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(190, 6, po.Remark, "", "L", false)
		}

		// --- Status line ---
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(190, 6, fmt.Sprintf("Status: %s | Created by: %s", titleCaser.String(po.Status), po.CreatedBy))

		// --- Footer ---
		pdf.SetY(-20)
		pdf.SetFont("Arial", "I", 8)
		pdf.Cell(190, 6, "This is a computer-generated purchase order. No signature required.")
		pdf.Ln(5)
		pdf.Cell(190, 6, "Generated on: "+time.Now().Format("2006-01-02 15:04:05"))

		// --- Output PDF ---
		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=po_%s.pdf", po.PONo))
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
			return
		}
	}
}
