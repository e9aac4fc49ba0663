package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"backend/models"
	"backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

// effectivePrice applies the sequential discount chain to a base price.
// Each percentage applies to the running result, not the original price.
func effectivePrice(price float64, discounts []float64) float64 {
	result := price
	for _, d := range discounts {
		result = result * (1 - d/100)
	}
	return result
}

// loadVendorQuotes returns a PCL's vendor quote rows sorted ascending by
// price after discounts.
func loadVendorQuotes(db *sql.DB, pclID int) ([]models.VendorQuote, error) {
	rows, err := db.Query(`
		SELECT c.clv_id, c.vendor_code, v.vendor_name, v.tax_id, v.credit_term,
		       v.email, v.phone, v.fax, c.price, c.discount,
		       COALESCE(TO_CHAR(c.date_ship, 'YYYY-MM-DD'), ''),
		       COALESCE(TO_CHAR(c.date_due, 'YYYY-MM-DD'), '')
		FROM clv c
		JOIN vendors v ON c.vendor_code = v.vendor_code
		WHERE c.pcl_id = $1`, pclID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []models.VendorQuote
	for rows.Next() {
		var q models.VendorQuote
		var discounts pq.Float64Array
		if err := rows.Scan(&q.ClvID, &q.VendorCode, &q.VendorName, &q.TaxID, &q.CreditTerm,
			&q.Email, &q.Phone, &q.Fax, &q.Price, &discounts, &q.DateShip, &q.DateDue); err != nil {
			return nil, err
		}
		q.Discount = []float64(discounts)
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return effectivePrice(quotes[i].Price, quotes[i].Discount) < effectivePrice(quotes[j].Price, quotes[j].Discount)
	})
	return quotes, nil
}

// loadInventoryLines returns the PR lines of a PCL, oldest first, each with
// its purchase history for the product code.
func loadInventoryLines(db *sql.DB, pclID int) ([]models.InventoryItem, error) {
	rows, err := db.Query(`
		SELECT pr_list_id, pr_no, product_code, product_detail, qty, unit,
		       COALESCE(po_no, ''), COALESCE(status, '')
		FROM pr_item
		WHERE pcl_id = $1
		ORDER BY pr_list_id ASC`, pclID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.InventoryItem
	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(&item.PRListID, &item.PRNo, &item.ProductCode, &item.ProductDetail,
			&item.Qty, &item.Unit, &item.PONo, &item.Status); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		history, err := loadPurchaseHistory(db, items[i].ProductCode, items[i].PRListID)
		if err != nil {
			return nil, err
		}
		items[i].RecentPurchase = history
	}
	return items, nil
}

func loadPurchaseHistory(db *sql.DB, productCode string, beforePRListID int) (models.FlexHistory, error) {
	rows, err := db.Query(`
		SELECT h.vendor_code, v.vendor_name, h.price, h.price_approval, h.discount,
		       COALESCE(TO_CHAR(h.purchase_date, 'YYYY-MM-DD'), ''),
		       COALESCE(TO_CHAR(h.due_date, 'YYYY-MM-DD'), '')
		FROM purchase_history h
		JOIN vendors v ON h.vendor_code = v.vendor_code
		WHERE h.product_code = $1 AND h.pr_list_id < $2
		ORDER BY h.purchase_date DESC
		LIMIT 5`, productCode, beforePRListID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history models.FlexHistory
	for rows.Next() {
		var entry models.PurchaseHistoryEntry
		var discounts pq.Float64Array
		if err := rows.Scan(&entry.VendorCode, &entry.VendorName, &entry.Price, &entry.PriceApproval,
			&discounts, &entry.PurchaseDate, &entry.DueDate); err != nil {
			return nil, err
		}
		entry.Discount = []float64(discounts)
		history = append(history, entry)
	}
	return history, rows.Err()
}

// GetCompareList returns the full comparison record for a part number.
// @Summary Get comparison record
// @Description Returns PR lines, purchase history and vendor quotes for a part.
// @Tags Compare
// @Produce json
// @Param part_no query string true "Part number"
// @Param pr_list_id query int false "PR line id"
// @Success 200 {object} models.ComparisonRecord
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/purchase/pc/compare/list [get]
func GetCompareList(db *sql.DB) gin.HandlerFunc {
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

		partNo := c.Query("part_no")
		if partNo == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "part_no is required"})
			return
		}

		var record models.ComparisonRecord
		var err error
		if prListID := c.Query("pr_list_id"); prListID != "" {
			// Resolve the PCL through one of its PR lines
			err = db.QueryRow(`
				SELECT p.pcl_id, p.part_no, CONCAT(u.first_name, ' ', u.last_name), COALESCE(u.department, ''),
				       COALESCE(p.status, ''), COALESCE(p.vendor_selected, 0), COALESCE(p.reason_choose, '')
				FROM pcl p
				JOIN pr_item pi ON pi.pcl_id = p.pcl_id
				JOIN users u ON p.requester_id = u.id
				WHERE p.part_no = $1 AND pi.pr_list_id = $2`, partNo, prListID).Scan(
				&record.PclID, &record.PartNo, &record.Requester, &record.Department,
				&record.Status, &record.VendorSelected, &record.ReasonChoose)
		} else {
			err = db.QueryRow(`
				SELECT p.pcl_id, p.part_no, CONCAT(u.first_name, ' ', u.last_name), COALESCE(u.department, ''),
				       COALESCE(p.status, ''), COALESCE(p.vendor_selected, 0), COALESCE(p.reason_choose, '')
				FROM pcl p
				JOIN users u ON p.requester_id = u.id
				WHERE p.part_no = $1
				ORDER BY p.pcl_id DESC
				LIMIT 1`, partNo).Scan(
				&record.PclID, &record.PartNo, &record.Requester, &record.Department,
				&record.Status, &record.VendorSelected, &record.ReasonChoose)
		}
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "No comparison list found for part"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comparison list", "details": err.Error()})
			return
		}

		record.PartInventoryAndPR, err = loadInventoryLines(db, record.PclID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch PR lines", "details": err.Error()})
			return
		}
		record.Vendors, err = loadVendorQuotes(db, record.PclID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vendor quotes", "details": err.Error()})
			return
		}
		if record.PartInventoryAndPR == nil {
			record.PartInventoryAndPR = []models.InventoryItem{}
		}
		if record.Vendors == nil {
			record.Vendors = []models.VendorQuote{}
		}

		c.JSON(http.StatusOK, record)
	}
}

// GetApprovedList returns PR lines whose comparison was approved and is
// waiting for PO creation.
// @Summary List approved lines
// @Tags Compare
// @Produce json
// @Param prId query int false "Filter by PR line id"
// @Success 200 {array} models.ApprovedLine
// @Failure 401 {object} models.ErrorResponse
// @Router /api/purchase/pc/approved-list [get]
func GetApprovedList(db *sql.DB) gin.HandlerFunc {
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

		query := `
			SELECT p.pcl_id, p.part_no, pi.pr_no, pi.product_detail, pi.qty, pi.unit,
			       COALESCE(v.vendor_name, ''), p.status
			FROM pcl p
			JOIN pr_item pi ON pi.pcl_id = p.pcl_id
			LEFT JOIN clv c ON c.clv_id = p.vendor_selected
			LEFT JOIN vendors v ON v.vendor_code = c.vendor_code
			WHERE p.status = $1`
		args := []interface{}{models.StatusApproved}
		if prID := c.Query("prId"); prID != "" {
			query += " AND pi.pr_list_id = $2"
			args = append(args, prID)
		}
		query += " ORDER BY p.pcl_id DESC"

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch approved list", "details": err.Error()})
			return
		}
		defer rows.Close()

		var lines []models.ApprovedLine
		for rows.Next() {
			var line models.ApprovedLine
			if err := rows.Scan(&line.PclID, &line.PartNo, &line.PRNo, &line.ProductDetail,
				&line.Qty, &line.Unit, &line.VendorName, &line.Status); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan approved line", "details": err.Error()})
				return
			}
			lines = append(lines, line)
		}
		if lines == nil {
			lines = []models.ApprovedLine{}
		}

		c.JSON(http.StatusOK, lines)
	}
}

// InsertVendorForCompare adds a vendor quote row to a comparison list.
// The price starts at zero and gets filled in through edit-price-in-clv.
// @Summary Add vendor to comparison
// @Tags Compare
// @Accept json
// @Produce json
// @Param body body models.InsertVendorRequest true "PCL and vendor"
// @Success 201 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/purchase/insert-vendor-for-compare [post]
func InsertVendorForCompare(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := bearerToken(c)
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization header is required"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var req models.InsertVendorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		var vendorName string
		err = db.QueryRow(`SELECT vendor_name FROM vendors WHERE vendor_code = $1`, req.VendorCode).Scan(&vendorName)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var exists int
		if err := db.QueryRow(`SELECT COUNT(*) FROM clv WHERE pcl_id = $1 AND vendor_code = $2`,
			req.PclID, req.VendorCode).Scan(&exists); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if exists > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Vendor is already in this comparison"})
			return
		}

		_, err = db.Exec(`
			INSERT INTO clv (pcl_id, vendor_code, price, discount)
			VALUES ($1, $2, 0, $3)`, req.PclID, req.VendorCode, pq.Array([]float64{}))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert vendor", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Vendor added to comparison"})

		logEntry := models.ActivityLog{
			EventContext:     "Compare",
			EventName:        "InsertVendor",
			Description:      fmt.Sprintf("Add vendor %s to comparison %d", req.VendorCode, req.PclID),
			UserName:         userName,
			HostName:         session.HostName,
			IPAddress:        session.IPAddress,
			CreatedAt:        time.Now(),
			AffectedUserName: vendorName,
			PclID:            req.PclID,
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log vendor insert: %v", logErr)
		}
	}
}

// RemoveVendorFromCLV deletes one vendor quote row.
// @Summary Remove vendor from comparison
// @Tags Compare
// @Produce json
// @Param clvId query int true "Quote row id"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/purchase/remove-vendor-from-clv [delete]
func RemoveVendorFromCLV(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := bearerToken(c)
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization header is required"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		clvID, err := strconv.Atoi(c.Query("clvId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "clvId must be an integer"})
			return
		}

		var pclID int
		var vendorCode string
		err = db.QueryRow(`SELECT pcl_id, vendor_code FROM clv WHERE clv_id = $1`, clvID).Scan(&pclID, &vendorCode)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote row not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if _, err := db.Exec(`DELETE FROM clv WHERE clv_id = $1`, clvID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove vendor", "details": err.Error()})
			return
		}
		// Clear a dangling selection pointing at the removed row
		_, _ = db.Exec(`UPDATE pcl SET vendor_selected = 0 WHERE pcl_id = $1 AND vendor_selected = $2`, pclID, clvID)

		c.JSON(http.StatusOK, gin.H{"message": "Vendor removed from comparison"})

		logEntry := models.ActivityLog{
			EventContext: "Compare",
			EventName:    "RemoveVendor",
			Description:  fmt.Sprintf("Remove vendor %s from comparison %d", vendorCode, pclID),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			PclID:        pclID,
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log vendor removal: %v", logErr)
		}
	}
}

// EditPriceInCLV saves all edited price tuples of a comparison in one
// transaction. Either every row updates or none do.
// @Summary Edit quote prices
// @Tags Compare
// @Accept json
// @Produce json
// @Param body body models.EditPriceRequest true "Edited prices"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/purchase/edit-price-in-clv [put]
func EditPriceInCLV(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := bearerToken(c)
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization header is required"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var req models.EditPriceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if len(req.EditedPrices) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "edited_prices must not be empty"})
			return
		}
		for _, ep := range req.EditedPrices {
			if len(ep.Discount) > models.MaxDiscounts {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("at most %d discounts per vendor", models.MaxDiscounts)})
				return
			}
			for _, d := range ep.Discount {
				if d < 0 || d > 100 {
					c.JSON(http.StatusBadRequest, gin.H{"error": "discounts must be between 0 and 100"})
					return
				}
			}
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction", "details": err.Error()})
			return
		}

		var pclID int
		for _, ep := range req.EditedPrices {
			discount := ep.Discount
			if discount == nil {
				discount = []float64{}
			}
			var dateShip interface{}
			if ep.DateShip != "" {
				dateShip = ep.DateShip
			}
			var rowPcl int
			err = tx.QueryRow(`
				UPDATE clv SET price = $1, discount = $2, date_ship = $3, updated_at = NOW()
				WHERE clv_id = $4
				RETURNING pcl_id`,
				ep.Price, pq.Array(discount), dateShip, ep.ClvID).Scan(&rowPcl)
			if err == sql.ErrNoRows {
				tx.Rollback()
				c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Quote row %d not found", ep.ClvID)})
				return
			}
			if err != nil {
				tx.Rollback()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quote", "details": err.Error()})
				return
			}
			pclID = rowPcl
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Prices updated"})

		logEntry := models.ActivityLog{
			EventContext: "Compare",
			EventName:    "EditPrice",
			Description:  fmt.Sprintf("Edit %d quote prices on comparison %d", len(req.EditedPrices), pclID),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			PclID:        pclID,
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log price edit: %v", logErr)
		}
	}
}

// SendPCLToApprove marks a comparison as waiting for approval with the
// selected vendor and reason, then notifies the approver group.
// @Summary Send comparison to approval
// @Tags Compare
// @Accept json
// @Produce json
// @Param body body models.SendToApproveRequest true "Selection and reason"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/purchase/send-pcl-to-approve [put]
func SendPCLToApprove(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := bearerToken(c)
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization header is required"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var req models.SendToApproveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		var pclNo, partNo, status string
		err = db.QueryRow(`SELECT COALESCE(pcl_no, ''), part_no, COALESCE(status, '') FROM pcl WHERE pcl_id = $1`, req.PclID).
			Scan(&pclNo, &partNo, &status)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comparison list not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		switch status {
		case "", models.StatusCompared, models.StatusPoRejected, models.StatusRejected:
			// editable states may be sent
		default:
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Comparison is %s and cannot be sent to approval", status)})
			return
		}

		var selectedVendor string
		err = db.QueryRow(`
			SELECT v.vendor_name FROM clv c
			JOIN vendors v ON v.vendor_code = c.vendor_code
			WHERE c.clv_id = $1 AND c.pcl_id = $2`, req.VendorSelected, req.PclID).Scan(&selectedVendor)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"error": "vendor_selected does not belong to this comparison"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var zeroPriced int
		if err := db.QueryRow(`SELECT COUNT(*) FROM clv WHERE pcl_id = $1 AND price <= 0`, req.PclID).Scan(&zeroPriced); err == nil && zeroPriced > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "All vendors must have a price before sending to approval"})
			return
		}

		// The document number is issued on first submission
		if pclNo == "" {
			pclNo, err = repository.GeneratePCLNumber(db)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PCL number", "details": err.Error()})
				return
			}
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		_, err = tx.Exec(`
			UPDATE pcl SET status = $1, vendor_selected = $2, reason_choose = $3, pcl_no = $4, reject_reason = NULL, updated_at = NOW()
			WHERE pcl_id = $5`,
			models.StatusPendingApproval, req.VendorSelected, req.ReasonChoose, pclNo, req.PclID)
		if err == nil {
			_, err = tx.Exec(`UPDATE pr_item SET status = $1 WHERE pcl_id = $2`, models.StatusPendingApproval, req.PclID)
		}
		if err == nil && req.NewQty > 0 {
			_, err = tx.Exec(`
				UPDATE pr_item SET qty = $1
				WHERE pr_list_id = (SELECT MAX(pr_list_id) FROM pr_item WHERE pcl_id = $2)`,
				req.NewQty, req.PclID)
		}
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send to approval", "details": err.Error()})
			return
		}
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Comparison sent to approval"})

		notifyApprovalRequested(pclNo, partNo, userName, selectedVendor, req.ReasonChoose)

		logEntry := models.ActivityLog{
			EventContext: "Compare",
			EventName:    "SendToApprove",
			Description:  fmt.Sprintf("Send %s to approval, vendor %s", pclNo, selectedVendor),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			PclID:        req.PclID,
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log send-to-approve: %v", logErr)
		}
	}
}

// ApprovePCL moves a pending comparison to Approved.
// @Summary Approve comparison
// @Tags Compare
// @Produce json
// @Param id query int true "PCL id"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/purchase/approve-pcl [put]
func ApprovePCL(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := bearerToken(c)
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization header is required"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		pclID, err := strconv.Atoi(c.Query("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
			return
		}

		var pclNo, status string
		err = db.QueryRow(`SELECT COALESCE(pcl_no, ''), COALESCE(status, '') FROM pcl WHERE pcl_id = $1`, pclID).Scan(&pclNo, &status)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comparison list not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if status != models.StatusPendingApproval {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Comparison is %s, only pending comparisons can be approved", status)})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		_, err = tx.Exec(`UPDATE pcl SET status = $1, updated_at = NOW() WHERE pcl_id = $2`, models.StatusApproved, pclID)
		if err == nil {
			_, err = tx.Exec(`UPDATE pr_item SET status = $1 WHERE pcl_id = $2`, models.StatusApproved, pclID)
		}
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve", "details": err.Error()})
			return
		}
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Comparison approved"})

		logEntry := models.ActivityLog{
			EventContext: "Compare",
			EventName:    "Approve",
			Description:  "Approve " + pclNo,
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			PclID:        pclID,
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log approval: %v", logErr)
		}
	}
}

// RejectPCL rejects a pending comparison with a reason and notifies the
// requester.
// @Summary Reject comparison
// @Tags Compare
// @Produce json
// @Param pclId query int true "PCL id"
// @Param reason query string true "Rejection reason"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/purchase/reject-pcl [put]
func RejectPCL(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := bearerToken(c)
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization header is required"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		pclID, err := strconv.Atoi(c.Query("pclId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "pclId must be an integer"})
			return
		}
		reason := c.Query("reason")
		if reason == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
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
		if status != models.StatusPendingApproval {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Comparison is %s, only pending comparisons can be rejected", status)})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		_, err = tx.Exec(`UPDATE pcl SET status = $1, reject_reason = $2, updated_at = NOW() WHERE pcl_id = $3`,
			models.StatusRejected, reason, pclID)
		if err == nil {
			_, err = tx.Exec(`UPDATE pr_item SET status = $1 WHERE pcl_id = $2`, models.StatusRejected, pclID)
		}
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject", "details": err.Error()})
			return
		}
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Comparison rejected"})

		notifyRejected(pclID, pclNo, partNo, reason)

		logEntry := models.ActivityLog{
			EventContext: "Compare",
			EventName:    "Reject",
			Description:  fmt.Sprintf("Reject %s: %s", pclNo, reason),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			PclID:        pclID,
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log rejection: %v", logErr)
		}
	}
}
