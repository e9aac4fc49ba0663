package handlers

import (
	"backend/models"
	"backend/repository"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateNewVendor creates a new vendor in the directory.
// @Summary Create vendor
// @Description Creates a new vendor. Requires Authorization header.
// @Tags Vendors
// @Accept json
// @Produce json
// @Param body body models.Vendor true "Vendor data"
// @Success 201 {object} models.Vendor
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/purchase/create-new-vendor [post]
func CreateNewVendor(db *sql.DB) gin.HandlerFunc {
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

		var vendor models.Vendor
		if err = c.ShouldBindJSON(&vendor); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if vendor.VendorCode == "" {
			vendor.VendorCode = repository.GenerateRandomCode()
		}

		var exists int
		if err := db.QueryRow(`SELECT COUNT(*) FROM vendors WHERE vendor_code = $1`, vendor.VendorCode).Scan(&exists); err == nil && exists > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Vendor already exists"})
			return
		}

		vendor.CreatedAt = time.Now()
		vendor.UpdatedAt = time.Now()
		vendor.CreatedBy = userName
		vendor.UpdatedBy = userName
		if vendor.Status == "" {
			vendor.Status = "active"
		}

		query := `
			INSERT INTO vendors (vendor_code, vendor_name, tax_id, credit_term, email, phone, fax, address, status, created_at, updated_at, created_by, updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`
		_, err = db.Exec(query,
			vendor.VendorCode, vendor.VendorName, vendor.TaxID, vendor.CreditTerm,
			vendor.Email, vendor.Phone, vendor.Fax, vendor.Address, vendor.Status,
			vendor.CreatedAt, vendor.UpdatedAt, vendor.CreatedBy, vendor.UpdatedBy,
		)
		if err != nil {
			log.Printf("Error inserting vendor: %v\n", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert vendor", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, vendor)

		logEntry := models.ActivityLog{
			EventContext:      "Vendor",
			EventName:         "Create",
			Description:       "Create Vendor " + vendor.VendorCode,
			UserName:          userName,
			HostName:          session.HostName,
			IPAddress:         session.IPAddress,
			CreatedAt:         time.Now(),
			AffectedUserName:  vendor.VendorName,
			AffectedUserEmail: vendor.Email,
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log vendor creation: %v", logErr)
		}
	}
}

// UpdateVendor updates vendor contact fields by vendor code.
// @Summary Update vendor
// @Tags Vendors
// @Accept json
// @Produce json
// @Param body body models.Vendor true "Vendor data"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/purchase/update-vendor [put]
func UpdateVendor(db *sql.DB) gin.HandlerFunc {
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

		var vendor models.Vendor
		if err := c.ShouldBindJSON(&vendor); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if vendor.VendorCode == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "vendor_code is required"})
			return
		}

		var existing string
		err = db.QueryRow("SELECT vendor_code FROM vendors WHERE vendor_code = $1", vendor.VendorCode).Scan(&existing)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var updates []string
		var fields []interface{}
		placeholderIndex := 1

		if vendor.VendorName != "" {
			updates = append(updates, fmt.Sprintf("vendor_name = $%d", placeholderIndex))
			fields = append(fields, vendor.VendorName)
			placeholderIndex++
		}
		if vendor.TaxID != "" {
			updates = append(updates, fmt.Sprintf("tax_id = $%d", placeholderIndex))
			fields = append(fields, vendor.TaxID)
			placeholderIndex++
		}
		if vendor.CreditTerm != "" {
			updates = append(updates, fmt.Sprintf("credit_term = $%d", placeholderIndex))
			fields = append(fields, vendor.CreditTerm)
			placeholderIndex++
		}
		if vendor.Email != "" {
			updates = append(updates, fmt.Sprintf("email = $%d", placeholderIndex))
			fields = append(fields, vendor.Email)
			placeholderIndex++
		}
		if vendor.Phone != "" {
			updates = append(updates, fmt.Sprintf("phone = $%d", placeholderIndex))
			fields = append(fields, vendor.Phone)
			placeholderIndex++
		}
		if vendor.Fax != "" {
			updates = append(updates, fmt.Sprintf("fax = $%d", placeholderIndex))
			fields = append(fields, vendor.Fax)
			placeholderIndex++
		}
		if vendor.Address != "" {
			updates = append(updates, fmt.Sprintf("address = $%d", placeholderIndex))
			fields = append(fields, vendor.Address)
			placeholderIndex++
		}
		if vendor.Status != "" {
			updates = append(updates, fmt.Sprintf("status = $%d", placeholderIndex))
			fields = append(fields, vendor.Status)
			placeholderIndex++
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
			return
		}

		updates = append(updates, fmt.Sprintf("updated_at = $%d", placeholderIndex))
		fields = append(fields, time.Now())
		placeholderIndex++
		updates = append(updates, fmt.Sprintf("updated_by = $%d", placeholderIndex))
		fields = append(fields, userName)
		placeholderIndex++

		sqlStatement := fmt.Sprintf("UPDATE vendors SET %s WHERE vendor_code = $%d", strings.Join(updates, ", "), placeholderIndex)
		fields = append(fields, vendor.VendorCode)

		_, err = db.Exec(sqlStatement, fields...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Vendor updated successfully"})

		logEntry := models.ActivityLog{
			EventContext:      "Vendor",
			EventName:         "UPDATE",
			Description:       "Update Vendor " + vendor.VendorCode,
			UserName:          userName,
			HostName:          session.HostName,
			IPAddress:         session.IPAddress,
			CreatedAt:         time.Now(),
			AffectedUserName:  vendor.VendorName,
			AffectedUserEmail: vendor.Email,
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log vendor update: %v", logErr)
		}
	}
}

// SearchVendor searches the vendor directory by free-text keyword and returns
// display strings "CODE : NAME" for the picker.
// @Summary Search vendors
// @Tags Vendors
// @Produce json
// @Param keyword query string true "Search keyword"
// @Success 200 {array} string
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/purchase/search-vendor [get]
func SearchVendor(db *sql.DB) gin.HandlerFunc {
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

		keyword := strings.TrimSpace(c.Query("keyword"))
		if keyword == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "keyword is required"})
			return
		}

		rows, err := db.Query(`
			SELECT vendor_code, vendor_name FROM vendors
			WHERE (vendor_code ILIKE '%' || $1 || '%' OR vendor_name ILIKE '%' || $1 || '%')
			  AND status = 'active'
			ORDER BY vendor_code
			LIMIT 20`, keyword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search vendors", "details": err.Error()})
			return
		}
		defer rows.Close()

		var results []string
		for rows.Next() {
			var code, name string
			if err := rows.Scan(&code, &name); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan vendor", "details": err.Error()})
				return
			}
			results = append(results, code+" : "+name)
		}
		if results == nil {
			results = []string{}
		}

		c.JSON(http.StatusOK, results)
	}
}

// GetVendorByCode returns a single vendor's detail.
// @Summary Get vendor by code
// @Tags Vendors
// @Produce json
// @Param vendorCode query string true "Vendor code"
// @Success 200 {object} models.Vendor
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/purchase/vendors [get]
func GetVendorByCode(db *sql.DB) gin.HandlerFunc {
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

		code := c.Query("vendorCode")
		if code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "vendorCode is required"})
			return
		}

		query := `
			SELECT vendor_code, vendor_name, tax_id, credit_term, email, phone, fax, address, status, created_at, updated_at, created_by, updated_by
			FROM vendors WHERE vendor_code = $1
		`
		row := db.QueryRow(query, code)
		var vendor models.Vendor
		if err := row.Scan(&vendor.VendorCode, &vendor.VendorName, &vendor.TaxID, &vendor.CreditTerm,
			&vendor.Email, &vendor.Phone, &vendor.Fax, &vendor.Address, &vendor.Status,
			&vendor.CreatedAt, &vendor.UpdatedAt, &vendor.CreatedBy, &vendor.UpdatedBy); err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vendor", "details": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, vendor)
	}
}
