package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"backend/models"
	"backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

// CreatePO rolls one or more approved comparison lists into a purchase
// order. All listed PCLs must be approved and share the selected vendor.
// @Summary Create purchase order
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Param body body models.CreatePORequest true "PO data"
// @Success 201 {object} models.PurchaseOrder
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/purchase/po/create [post]
func CreatePO(db *sql.DB) gin.HandlerFunc {
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

		var req models.CreatePORequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if req.MaterialType != models.MaterialTypeDirect && req.MaterialType != models.MaterialTypeIndirect {
			c.JSON(http.StatusBadRequest, gin.H{"error": "material_type must be 'D' or 'I'"})
			return
		}
		if len(req.POList) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "po_list must not be empty"})
			return
		}

		// Every PCL must be approved, and all must point at the same vendor
		var vendorCode, vendorName string
		for _, item := range req.POList {
			var status, vc, vn string
			err := db.QueryRow(`
				SELECT COALESCE(p.status, ''), c.vendor_code, v.vendor_name
				FROM pcl p
				JOIN clv c ON c.clv_id = p.vendor_selected
				JOIN vendors v ON v.vendor_code = c.vendor_code
				WHERE p.pcl_id = $1`, item.PclID).Scan(&status, &vc, &vn)
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Comparison %d not found or has no selected vendor", item.PclID)})
				return
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if status != models.StatusApproved {
				c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Comparison %d is %s, only approved comparisons can be ordered", item.PclID, status)})
				return
			}
			if vendorCode == "" {
				vendorCode, vendorName = vc, vn
			} else if vendorCode != vc {
				c.JSON(http.StatusBadRequest, gin.H{"error": "All comparisons on one PO must share the same vendor"})
				return
			}
		}

		poNo, err := repository.GeneratePONumber(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PO number", "details": err.Error()})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var poID int
		err = tx.QueryRow(`
			INSERT INTO po (po_no, material_type, remark, ext_discount, vendor_code, status, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			RETURNING po_id`,
			poNo, req.MaterialType, req.Remark, req.ExtDiscount, vendorCode, models.StatusPoCreated, userName).Scan(&poID)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create PO", "details": err.Error()})
			return
		}

		var total float64
		var lines []models.POLine
		for _, item := range req.POList {
			var line models.POLine
			var price float64
			var discounts pq.Float64Array
			err = tx.QueryRow(`
				SELECT p.part_no, pi.product_detail, pi.qty, pi.unit, c.price, c.discount
				FROM pcl p
				JOIN clv c ON c.clv_id = p.vendor_selected
				JOIN pr_item pi ON pi.pr_list_id = (SELECT MAX(pr_list_id) FROM pr_item WHERE pcl_id = p.pcl_id)
				WHERE p.pcl_id = $1`, item.PclID).Scan(
				&line.PartNo, &line.ProductDetail, &line.Qty, &line.Unit, &price, &discounts)
			if err != nil {
				tx.Rollback()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read PO line", "details": err.Error()})
				return
			}
			line.PclID = item.PclID
			line.Price = effectivePrice(price, []float64(discounts))
			line.Amount = line.Price * line.Qty
			total += line.Amount

			_, err = tx.Exec(`INSERT INTO po_pcl (po_id, pcl_id, price, amount) VALUES ($1, $2, $3, $4)`,
				poID, item.PclID, line.Price, line.Amount)
			if err == nil {
				_, err = tx.Exec(`UPDATE pcl SET status = $1, updated_at = NOW() WHERE pcl_id = $2`,
					models.StatusPoCreated, item.PclID)
			}
			if err == nil {
				_, err = tx.Exec(`UPDATE pr_item SET status = $1, po_no = $2 WHERE pcl_id = $3`,
					models.StatusPoCreated, poNo, item.PclID)
			}
			if err != nil {
				tx.Rollback()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach PCL to PO", "details": err.Error()})
				return
			}
			lines = append(lines, line)
		}

		if _, err := tx.Exec(`UPDATE po SET total_amount = $1 WHERE po_id = $2`, total, poID); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to total PO", "details": err.Error()})
			return
		}
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, models.PurchaseOrder{
			POID:         poID,
			PONo:         poNo,
			MaterialType: req.MaterialType,
			Remark:       req.Remark,
			ExtDiscount:  req.ExtDiscount,
			VendorCode:   vendorCode,
			VendorName:   vendorName,
			Status:       models.StatusPoCreated,
			TotalAmount:  total,
			CreatedBy:    userName,
			CreatedAt:    time.Now(),
			Lines:        lines,
		})

		pclIDs := make([]string, 0, len(req.POList))
		for _, item := range req.POList {
			pclIDs = append(pclIDs, strconv.Itoa(item.PclID))
		}
		logEntry := models.ActivityLog{
			EventContext: "PurchaseOrder",
			EventName:    "Create",
			Description:  fmt.Sprintf("Create %s for pcl [%s]", poNo, strings.Join(pclIDs, ",")),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log PO creation: %v", logErr)
		}
	}
}

// GetPOByID returns a purchase order with its lines.
// @Summary Get purchase order
// @Tags PurchaseOrders
// @Produce json
// @Param po_id path int true "PO id"
// @Success 200 {object} models.PurchaseOrder
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/purchase/po/detail/{po_id} [get]
func GetPOByID(db *sql.DB) gin.HandlerFunc {
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

		po, err := fetchPO(db, poID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch PO", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, po)
	}
}

// fetchPO loads a purchase order and its lines; shared with the PDF and
// QR code handlers.
func fetchPO(db *sql.DB, poID int) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := db.QueryRow(`
		SELECT p.po_id, p.po_no, p.material_type, COALESCE(p.remark, ''), p.ext_discount,
		       p.vendor_code, v.vendor_name, p.status, p.total_amount, p.created_by, p.created_at
		FROM po p
		JOIN vendors v ON v.vendor_code = p.vendor_code
		WHERE p.po_id = $1`, poID).Scan(
		&po.POID, &po.PONo, &po.MaterialType, &po.Remark, &po.ExtDiscount,
		&po.VendorCode, &po.VendorName, &po.Status, &po.TotalAmount, &po.CreatedBy, &po.CreatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT pp.pcl_id, pc.part_no, pi.product_detail, pi.qty, pi.unit, pp.price, pp.amount
		FROM po_pcl pp
		JOIN pcl pc ON pc.pcl_id = pp.pcl_id
		JOIN pr_item pi ON pi.pr_list_id = (SELECT MAX(pr_list_id) FROM pr_item WHERE pcl_id = pp.pcl_id)
		WHERE pp.po_id = $1
		ORDER BY pp.pcl_id`, poID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line models.POLine
		if err := rows.Scan(&line.PclID, &line.PartNo, &line.ProductDetail, &line.Qty,
			&line.Unit, &line.Price, &line.Amount); err != nil {
			return nil, err
		}
		po.Lines = append(po.Lines, line)
	}
	return &po, rows.Err()
}
