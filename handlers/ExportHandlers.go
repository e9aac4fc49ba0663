package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"backend/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportComparisonXLSX godoc
// @Summary      Export comparison as Excel
// @Description  One sheet of PR lines plus one vendor column block per quote.
// @Tags         export
// @Param        pcl_id  path  int  true  "PCL id"
// @Success      200  {file}  file  "XLSX file"
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/purchase/pc/export/{pcl_id} [get]
func ExportComparisonXLSX(db *sql.DB) gin.HandlerFunc {
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

		pclID, err := strconv.Atoi(c.Param("pcl_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "pcl_id must be an integer"})
			return
		}

		var pclNo, partNo, status string
		err = db.QueryRow(`SELECT COALESCE(pcl_no, ''), part_no, COALESCE(status, '') FROM pcl WHERE pcl_id = $1`, pclID).
			Scan(&pclNo, &partNo, &status)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comparison list not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		items, err := loadInventoryLines(db, pclID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch PR lines", "details": err.Error()})
			return
		}
		quotes, err := loadVendorQuotes(db, pclID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vendor quotes", "details": err.Error()})
			return
		}

		f := excelize.NewFile()
		defer func() {
			if err := f.Close(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error closing Excel file"})
			}
		}()

		sheet := "Comparison"
		index, err := f.NewSheet(sheet)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating sheet"})
			return
		}
		f.SetActiveSheet(index)
		f.DeleteSheet("Sheet1")

		// Header block
		f.SetCellValue(sheet, "A1", "Purchase Comparison")
		f.SetCellValue(sheet, "A2", "PCL No")
		f.SetCellValue(sheet, "B2", pclNo)
		f.SetCellValue(sheet, "A3", "Part No")
		f.SetCellValue(sheet, "B3", partNo)
		f.SetCellValue(sheet, "A4", "Status")
		f.SetCellValue(sheet, "B4", status)

		// PR lines table
		prHeader := []string{"PR No", "Product Code", "Description", "Qty", "Unit", "PO No", "Status"}
		for i, h := range prHeader {
			cell, _ := excelize.CoordinatesToCellName(i+1, 6)
			f.SetCellValue(sheet, cell, h)
		}
		row := 7
		for _, item := range items {
			values := []interface{}{item.PRNo, item.ProductCode, item.ProductDetail, item.Qty, item.Unit, item.PONo, item.Status}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			row++
		}

		// Vendor comparison table, cheapest first
		row += 2
		vendorHeader := []string{"Vendor Code", "Vendor Name", "Credit Term", "Price", "Discounts", "Net Price", "Ship Date", "Due Date"}
		for i, h := range vendorHeader {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, h)
		}
		row++
		for _, q := range quotes {
			discounts := make([]string, 0, len(q.Discount))
			for _, d := range q.Discount {
				discounts = append(discounts, fmt.Sprintf("%.2f%%", d))
			}
			values := []interface{}{
				q.VendorCode, q.VendorName, q.CreditTerm, q.Price,
				strings.Join(discounts, " + "),
				effectivePrice(q.Price, q.Discount),
				q.DateShip, q.DateDue,
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			row++
		}

		var history models.FlexHistory
		if len(items) > 0 {
			history = items[len(items)-1].RecentPurchase
		}
		if len(history) > 0 {
			row += 2
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Recent Purchases")
			row++
			histHeader := []string{"Vendor Code", "Vendor Name", "Price", "Approved Price", "Purchase Date", "Due Date"}
			for i, h := range histHeader {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, h)
			}
			row++
			for _, entry := range history {
				values := []interface{}{entry.VendorCode, entry.VendorName, entry.Price, entry.PriceApproval, entry.PurchaseDate, entry.DueDate}
				for i, v := range values {
					cell, _ := excelize.CoordinatesToCellName(i+1, row)
					f.SetCellValue(sheet, cell, v)
				}
				row++
			}
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment;filename=comparison_%s.xlsx", pclNo))
		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing Excel file"})
			return
		}
	}
}
