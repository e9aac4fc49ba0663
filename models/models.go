package models

import (
	"time"

	_ "github.com/lib/pq"
)

type User struct {
	ID          int       `json:"id" example:"1"`
	EmployeeId  string    `json:"employee_id" example:"EMP001"`
	Email       string    `json:"email" example:"user@example.com"`
	Password    string    `json:"password" example:""`
	FirstName   string    `json:"first_name" example:"John"`
	LastName    string    `json:"last_name" example:"Doe"`
	Department  string    `json:"department" example:"Purchasing"`
	CreatedAt   time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt   time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
	FirstAccess time.Time `json:"first_access,omitempty" example:"2024-01-15T10:30:00Z"`
	LastAccess  time.Time `json:"last_access,omitempty" example:"2024-01-15T10:30:00Z"`
	IsAdmin     bool      `json:"is_admin" example:"false"`
	PhoneNo     string    `json:"phone_no" example:"9876543210"`
	RoleID      int       `json:"role_id" example:"1"`
	RoleName    string    `json:"role_name" example:"Purchaser"`
	Suspended   bool      `json:"suspended" example:"false"`
}

type Session struct {
	UserID                int       `json:"user_id" example:"1"`
	SessionID             string    `json:"session_id" example:""`
	HostName              string    `json:"host_name" example:"user@example.com"`
	IPAddress             string    `json:"ip_address" example:"192.168.1.10"`
	Timestamp             time.Time `json:"timestp" example:"2024-01-15T10:30:00Z"`
	ExpiresAt             time.Time `json:"expires_at" example:"2024-01-15T10:45:00Z"`
	RefreshToken          string    `json:"refresh_token,omitempty" example:""`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at,omitempty" example:"2024-01-30T10:30:00Z"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:""`
	IP       string `json:"ip" binding:"required" example:"192.168.1.10"`
}

type LoginResponse struct {
	Message      string `json:"message" example:"Login successful"`
	AccessToken  string `json:"access_token" example:""`
	RefreshToken string `json:"refresh_token" example:""`
	Role         string `json:"role" example:"Purchaser"`
}

type ActivityLog struct {
	ID                int       `json:"id" gorm:"primaryKey;column:id" example:"1"`
	CreatedAt         time.Time `json:"created_at" gorm:"column:created_at" example:"2024-01-15T10:30:00Z"`
	UserName          string    `json:"user_name" gorm:"column:user_name" example:"John Doe"`
	HostName          string    `json:"host_name" gorm:"column:host_name" example:"user@example.com"`
	EventContext      string    `json:"event_context" gorm:"column:event_context" example:"Comparison"`
	IPAddress         string    `json:"ip_address" gorm:"column:ip_address" example:"192.168.1.10"`
	Description       string    `json:"description" gorm:"column:description" example:"Send PCL to approve"`
	EventName         string    `json:"event_name" gorm:"column:event_name" example:"UPDATE"`
	AffectedUserName  string    `json:"affected_user_name,omitempty" gorm:"column:affected_user_name" example:""`
	AffectedUserEmail string    `json:"affected_user_email,omitempty" gorm:"column:affected_user_email" example:""`
	PclID             int       `json:"pcl_id,omitempty" gorm:"column:pcl_id" example:"0"`
}

// TableName keeps GORM on the same table the raw-SQL writers use.
func (ActivityLog) TableName() string {
	return "activity_logs"
}
