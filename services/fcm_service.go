package services

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/x509"
	"database/sql"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"
)

// FCMService pushes approval notifications to the mobile app via the
// Firebase Cloud Messaging HTTP v1 API.
type FCMService struct {
	projectID   string
	credentials *jwt.Config
	db          *sql.DB
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
}

// ServiceAccountCredentials mirrors the Firebase service account JSON file.
type ServiceAccountCredentials struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`
	TokenURI     string `json:"token_uri"`
}

// NewFCMService initializes the FCM service from a service account JSON file.
func NewFCMService(credentialsPath string, db *sql.DB) (*FCMService, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("credentials path is required")
	}

	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("error reading credentials file: %v", err)
	}

	var creds ServiceAccountCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("error parsing credentials: %v", err)
	}

	if _, err := parsePrivateKey(creds.PrivateKey); err != nil {
		return nil, fmt.Errorf("error parsing private key: %v", err)
	}

	privateKeyStr := strings.ReplaceAll(creds.PrivateKey, "\\n", "\n")

	config := &jwt.Config{
		Email:      creds.ClientEmail,
		PrivateKey: []byte(privateKeyStr),
		Scopes:     []string{"https://www.googleapis.com/auth/firebase.messaging"},
		TokenURL:   creds.TokenURI,
	}

	return &FCMService{
		projectID:   creds.ProjectID,
		credentials: config,
		db:          db,
		httpClient:  &http.Client{},
		tokenSource: config.TokenSource(context.Background()),
	}, nil
}

// parsePrivateKey parses a PEM-encoded RSA private key.
func parsePrivateKey(keyData string) (*rsa.PrivateKey, error) {
	keyData = strings.ReplaceAll(keyData, "\\n", "\n")
	keyData = strings.TrimSpace(keyData)

	block, _ := pem.Decode([]byte(keyData))
	if block == nil {
		return nil, fmt.Errorf("failed to parse PEM block")
	}

	privateKey, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %v", err)
		}
		return rsaKey, nil
	}

	rsaKey, ok := privateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA private key")
	}

	return rsaKey, nil
}

// SendNotification sends a push notification to a single FCM token.
func (f *FCMService) SendNotification(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return fmt.Errorf("FCM token cannot be empty")
	}

	oauthToken, err := f.tokenSource.Token()
	if err != nil {
		return fmt.Errorf("error getting OAuth token: %v", err)
	}

	message := map[string]interface{}{
		"message": map[string]interface{}{
			"token": token,
			"notification": map[string]string{
				"title": title,
				"body":  body,
			},
			"data": data,
			"android": map[string]interface{}{
				"priority": "high",
			},
			"apns": map[string]interface{}{
				"headers": map[string]string{
					"apns-priority": "10",
				},
			},
		},
	}

	endpoint := fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", f.projectID)
	return f.sendHTTPv1Request(ctx, endpoint, oauthToken.AccessToken, message)
}

// SendNotificationToUser looks up the user's registered FCM tokens and pushes
// to each device.
func (f *FCMService) SendNotificationToUser(ctx context.Context, userID int, title, body string, data map[string]string) error {
	rows, err := f.db.Query(`SELECT fcm_token FROM fcm_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch FCM tokens: %v", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			continue
		}
		tokens = append(tokens, t)
	}
	if len(tokens) == 0 {
		return nil
	}

	var lastErr error
	for _, t := range tokens {
		if err := f.SendNotification(ctx, t, title, body, data); err != nil {
			log.Printf("FCM send failed for user %d: %v", userID, err)
			lastErr = err
		}
	}
	return lastErr
}

// NotifyApprovers pushes a pending-approval notification to every approver.
func (f *FCMService) NotifyApprovers(ctx context.Context, pclNo, partNo string) error {
	rows, err := f.db.Query(`
		SELECT u.id FROM users u
		JOIN roles r ON u.role_id = r.role_id
		WHERE r.role_name = 'Approver' AND u.suspended = FALSE`)
	if err != nil {
		return fmt.Errorf("failed to fetch approvers: %v", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err == nil {
			ids = append(ids, id)
		}
	}

	title := "Comparison waiting for approval"
	body := fmt.Sprintf("%s (%s) needs your approval", pclNo, partNo)
	for _, id := range ids {
		if err := f.SendNotificationToUser(ctx, id, title, body, map[string]string{"pcl_no": pclNo}); err != nil {
			log.Printf("FCM notify approver %d failed: %v", id, err)
		}
	}
	return nil
}

// SaveFCMToken registers a device token for a user.
func (f *FCMService) SaveFCMToken(userID int, token string) error {
	_, err := f.db.Exec(`
		INSERT INTO fcm_tokens (user_id, fcm_token) VALUES ($1, $2)
		ON CONFLICT (user_id, fcm_token) DO NOTHING`, userID, token)
	return err
}

// RemoveFCMToken removes all device tokens for a user (logout).
func (f *FCMService) RemoveFCMToken(userID int) error {
	_, err := f.db.Exec(`DELETE FROM fcm_tokens WHERE user_id = $1`, userID)
	return err
}

func (f *FCMService) sendHTTPv1Request(ctx context.Context, endpoint, accessToken string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending FCM request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("FCM request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
