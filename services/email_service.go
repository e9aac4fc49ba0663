package services

import (
	"database/sql"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// convertHTMLToText converts an HTML body to plain text for SMTP sending.
func convertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		// If parsing fails, fall back to the original content
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "table", "tr":
				text.WriteString("\n")
			case "li":
				text.WriteString("- ")
			case "td", "th":
				text.WriteString(" | ")
			}
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extractText(child)
		}
	}

	extractText(doc)

	result := text.String()
	result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	result = strings.TrimSpace(result)

	return result
}

type EmailService struct {
	db *sql.DB
}

func NewEmailService(db *sql.DB) *EmailService {
	return &EmailService{db: db}
}

const approvalRequestTemplate = `
<div>
  <h3>Comparison {{pcl_no}} waiting for approval</h3>
  <p>Part <b>{{part_no}}</b> was sent to approval by {{requester}}.</p>
  <p>Selected vendor: {{vendor_name}}</p>
  <p>Reason: {{reason}}</p>
</div>`

const rejectionTemplate = `
<div>
  <h3>Comparison {{pcl_no}} rejected</h3>
  <p>The comparison for part <b>{{part_no}}</b> was rejected.</p>
  <p>Reason: {{reason}}</p>
</div>`

// SendApprovalRequestEmail notifies the approver group that a comparison list
// was sent to approval.
func (es *EmailService) SendApprovalRequestEmail(to, pclNo, partNo, requester, vendorName, reason string) error {
	body := processTemplate(approvalRequestTemplate, map[string]string{
		"pcl_no":      pclNo,
		"part_no":     partNo,
		"requester":   requester,
		"vendor_name": vendorName,
		"reason":      reason,
	})
	subject := fmt.Sprintf("[Purchasing] %s waiting for approval", pclNo)
	return es.sendEmail(to, subject, convertHTMLToText(body), nil, nil)
}

// SendRejectionEmail notifies the requester that their comparison was rejected.
func (es *EmailService) SendRejectionEmail(to, pclNo, partNo, reason string) error {
	body := processTemplate(rejectionTemplate, map[string]string{
		"pcl_no":  pclNo,
		"part_no": partNo,
		"reason":  reason,
	})
	subject := fmt.Sprintf("[Purchasing] %s rejected", pclNo)
	return es.sendEmail(to, subject, convertHTMLToText(body), nil, nil)
}

// ApproverEmails returns the mail recipients holding the Approver role.
func (es *EmailService) ApproverEmails() ([]string, error) {
	rows, err := es.db.Query(`
		SELECT u.email FROM users u
		JOIN roles r ON u.role_id = r.role_id
		WHERE r.role_name = 'Approver' AND u.suspended = FALSE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// RequesterEmail resolves the e-mail of the user who raised a PCL.
func (es *EmailService) RequesterEmail(pclID int) (string, error) {
	var email string
	err := es.db.QueryRow(`
		SELECT u.email FROM pcl p
		JOIN users u ON p.requester_id = u.id
		WHERE p.pcl_id = $1`, pclID).Scan(&email)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no requester found for pcl %d", pclID)
	}
	return email, err
}

func processTemplate(templateStr string, variables map[string]string) string {
	result := templateStr
	for key, value := range variables {
		placeholder := fmt.Sprintf("{{%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// sendEmail sends an email over SMTP with optional CC and BCC.
func (es *EmailService) sendEmail(to, subject, body string, cc, bcc []string) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	from := os.Getenv("SMTP_FROM")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASSWORD")
	if host == "" || from == "" {
		return fmt.Errorf("SMTP is not configured")
	}
	if port == "" {
		port = "587"
	}

	auth := smtp.PlainAuth("", user, pass, host)

	toList := []string{to}
	if len(cc) > 0 {
		toList = append(toList, cc...)
	}
	if len(bcc) > 0 {
		toList = append(toList, bcc...)
	}

	headers := []string{
		"From: " + from,
		"To: " + to,
	}
	if len(cc) > 0 {
		headers = append(headers, "Cc: "+strings.Join(cc, ", "))
	}
	headers = append(headers,
		"Subject: "+subject,
		"",
		body,
	)

	msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

	return smtp.SendMail(host+":"+port, auth, from, toList, msg)
}
