package ses

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/shopspring/decimal"

	"cadesk/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	portalURL   string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName, portalURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		fromName:    fromName,
		portalURL:   portalURL,
	}, nil
}

func (s *sesSender) SendInvoiceIssuedEmail(ctx context.Context, toEmail, toName, invoiceNumber string, total decimal.Decimal, dueDate time.Time) error {
	subject := fmt.Sprintf("Invoice %s from your CA office", invoiceNumber)
	due := dueDate.Format("2 January 2006")
	textBody := fmt.Sprintf(
		"Dear %s,\n\nInvoice %s for ₹%s has been issued to your account. Payment is due by %s.\n\nYou can view the invoice and pay from the portal:\n%s/invoices\n\nRegards,\n%s",
		toName, invoiceNumber, total.StringFixed(2), due, s.portalURL, s.fromName)
	htmlBody := buildInvoiceHTML(toName, invoiceNumber, total.StringFixed(2), due, s.portalURL)
	return s.send(ctx, toEmail, subject, textBody, htmlBody)
}

func (s *sesSender) SendPaymentReceiptEmail(ctx context.Context, toEmail, toName, invoiceNumber string, amount, balance decimal.Decimal) error {
	subject := fmt.Sprintf("Payment received against invoice %s", invoiceNumber)
	textBody := fmt.Sprintf(
		"Dear %s,\n\nWe have received your payment of ₹%s against invoice %s. The remaining balance is ₹%s.\n\nRegards,\n%s",
		toName, amount.StringFixed(2), invoiceNumber, balance.StringFixed(2), s.fromName)
	htmlBody := buildReceiptHTML(toName, invoiceNumber, amount.StringFixed(2), balance.StringFixed(2))
	return s.send(ctx, toEmail, subject, textBody, htmlBody)
}

func (s *sesSender) send(ctx context.Context, toEmail, subject, textBody, htmlBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildInvoiceHTML(name, number, total, due, portalURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Invoice %s issued</h2>
  <p>Dear %s,</p>
  <p>An invoice of <strong>&#8377;%s</strong> has been issued to your account. Payment is due by <strong>%s</strong>.</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s/invoices" style="background-color: #1D4ED8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Invoice</a>
  </p>
  <p style="color: #999; font-size: 12px;">Please note: access to your documents may be suspended while invoices remain unpaid past their due date.</p>
</body>
</html>`, number, name, total, due, portalURL)
}

func buildReceiptHTML(name, number, amount, balance string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Payment received</h2>
  <p>Dear %s,</p>
  <p>We have received your payment of <strong>&#8377;%s</strong> against invoice %s.</p>
  <p>Remaining balance: <strong>&#8377;%s</strong></p>
  <p style="color: #999; font-size: 12px;">Thank you for your prompt payment.</p>
</body>
</html>`, name, amount, number, balance)
}
