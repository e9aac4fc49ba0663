package handlers

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"backend/services"

	"github.com/gin-gonic/gin"
)

var (
	emailService *services.EmailService
	fcmService   *services.FCMService
)

// SetEmailService wires the mail sender used after approval-flow mutations.
func SetEmailService(es *services.EmailService) {
	emailService = es
}

// SetFCMService wires the push sender used after approval-flow mutations.
func SetFCMService(fs *services.FCMService) {
	fcmService = fs
}

// notifyApprovalRequested fans out mail and push to the approver group. Runs
// after the HTTP response is written; failures are logged, never surfaced.
func notifyApprovalRequested(pclNo, partNo, requester, vendorName, reason string) {
	if emailService != nil {
		emails, err := emailService.ApproverEmails()
		if err != nil {
			log.Printf("Failed to list approver emails: %v", err)
		}
		for _, to := range emails {
			if err := emailService.SendApprovalRequestEmail(to, pclNo, partNo, requester, vendorName, reason); err != nil {
				log.Printf("Failed to send approval email to %s: %v", to, err)
			}
		}
	}
	if fcmService != nil {
		if err := fcmService.NotifyApprovers(context.Background(), pclNo, partNo); err != nil {
			log.Printf("Failed to push approval notification: %v", err)
		}
	}
}

// RegisterFCMToken stores the caller's device token for push delivery.
// @Summary Register FCM token
// @Tags Notifications
// @Accept json
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/fcm/register [post]
func RegisterFCMToken(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := bearerToken(c)
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization header is required"})
			return
		}
		session, _, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var body struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
			return
		}
		if fcmService == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Push notifications are not configured"})
			return
		}
		if err := fcmService.SaveFCMToken(session.UserID, body.Token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save token", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Token registered"})
	}
}

// UnregisterFCMToken drops all device tokens of the caller, used on logout.
// @Summary Unregister FCM tokens
// @Tags Notifications
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/fcm/unregister [delete]
func UnregisterFCMToken(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := bearerToken(c)
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization header is required"})
			return
		}
		session, _, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}
		if fcmService == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Push notifications are not configured"})
			return
		}
		if err := fcmService.RemoveFCMToken(session.UserID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove tokens", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Tokens removed"})
	}
}

// notifyRejected mails the requester that their comparison was rejected.
func notifyRejected(pclID int, pclNo, partNo, reason string) {
	if emailService == nil {
		return
	}
	to, err := emailService.RequesterEmail(pclID)
	if err != nil {
		log.Printf("Failed to resolve requester email for pcl %d: %v", pclID, err)
		return
	}
	if err := emailService.SendRejectionEmail(to, pclNo, partNo, reason); err != nil {
		log.Printf("Failed to send rejection email to %s: %v", to, err)
	}
}
