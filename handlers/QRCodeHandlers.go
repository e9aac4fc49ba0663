package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

// addLabel draws a text value onto the image at the given position.
func addLabel(img *image.RGBA, x, y int, label string) {
	col := color.RGBA{0, 0, 0, 255}
	face := inconsolata.Regular8x16

	point := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  point,
	}
	d.DrawString(label)
}

// addLabelBold draws a bold field label.
func addLabelBold(img *image.RGBA, x, y int, label string) {
	col := color.RGBA{30, 30, 30, 255}
	face := inconsolata.Bold8x16

	point := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  point,
	}
	d.DrawString(label)
}

// GeneratePOQRCode godoc
// @Summary      Generate PO QR code as JPEG
// @Description  Encodes the PO number and id so the warehouse app can scan incoming deliveries.
// @Tags         qr
// @Param        po_id  path  int  true  "PO id"
// @Success      200  {file}  file  "JPEG image"
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/purchase/po/qrcode/{po_id} [get]
func GeneratePOQRCode(db *sql.DB) gin.HandlerFunc {
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

		qrData := struct {
			POID    int    `json:"po_id"`
			PONo    string `json:"po_no"`
			Vendor  string `json:"vendor_code"`
			IsValid bool   `json:"is_valid"`
		}{
			POID:    po.POID,
			PONo:    po.PONo,
			Vendor:  po.VendorCode,
			IsValid: po.Status != "Cancelled",
		}

		jsonData, err := json.Marshal(qrData)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to marshal PO data"})
			return
		}

		qr, err := qrcode.New(string(jsonData), qrcode.Medium)
		if err != nil {
			c.String(http.StatusInternalServerError, "QR code generation failed")
			return
		}

		qrImg := qr.Image(512)

		qrSize := qrImg.Bounds().Dy()
		padding := 30
		lineHeight := 28
		textAreaHeight := 4*lineHeight + padding
		totalHeight := qrSize + padding + textAreaHeight

		combinedImg := image.NewRGBA(image.Rect(0, 0, qrSize, totalHeight))
		draw.Draw(combinedImg, combinedImg.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

		qrRect := image.Rect(0, 0, qrSize, qrSize)
		draw.Draw(combinedImg, qrRect, qrImg, image.Point{}, draw.Src)

		separatorY := qrSize + padding/2
		for x := 0; x < qrSize; x++ {
			combinedImg.Set(x, separatorY, color.RGBA{200, 200, 200, 255})
		}

		startY := qrSize + padding + lineHeight
		xPos := 20

		addLabelBold(combinedImg, xPos, startY, "PO No:")
		addLabel(combinedImg, xPos+120, startY, po.PONo)

		addLabelBold(combinedImg, xPos, startY+lineHeight, "Vendor:")
		vendorDisplay := po.VendorName
		if len(vendorDisplay) > 30 {
			vendorDisplay = vendorDisplay[:27] + "..."
		}
		addLabel(combinedImg, xPos+120, startY+lineHeight, vendorDisplay)

		addLabelBold(combinedImg, xPos, startY+2*lineHeight, "Created:")
		addLabel(combinedImg, xPos+120, startY+2*lineHeight, po.CreatedAt.Format("2006-01-02"))

		addLabelBold(combinedImg, xPos, startY+3*lineHeight, "Lines:")
		addLabel(combinedImg, xPos+120, startY+3*lineHeight, strconv.Itoa(len(po.Lines)))

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, combinedImg, nil); err != nil {
			c.String(http.StatusInternalServerError, "JPEG encoding failed")
			return
		}

		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
	}
}
