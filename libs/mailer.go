package libs

import (
	"context"
	"fmt"
	"html"
	"strings"

	"mini-shop/models"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.User != "" && c.Password != ""
}

// Sender delivers one message; *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends order confirmation emails over SMTP.
type Mailer struct {
	from   string
	sender Sender
}

func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("SMTP configuration missing")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return NewMailerWithSender(from, gomail.NewDialer(cfg.Host, port, cfg.User, cfg.Password)), nil
}

func NewMailerWithSender(from string, sender Sender) *Mailer {
	return &Mailer{from: from, sender: sender}
}

func (m *Mailer) SendOrderConfirmation(ctx context.Context, to string, order *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Order Confirmation #%d", order.ID))
	msg.SetBody("text/html", orderConfirmationBody(order))

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func orderConfirmationBody(order *models.Order) string {
	var rows strings.Builder
	for _, item := range order.Items {
		name := fmt.Sprintf("Product #%d", item.ProductID)
		if item.Product != nil {
			name = item.Product.Name
		}
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(name), item.Quantity, item.Price.StringFixed(2), item.LineTotal().StringFixed(2))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
    <h2>Order Confirmation</h2>
    <p>Thank you for your order!</p>
    <p><strong>Order Number:</strong> %d</p>
    <table cellpadding="6">
        <tr><th>Product</th><th>Qty</th><th>Price</th><th>Subtotal</th></tr>
        %s
    </table>
    <p><strong>Total:</strong> %s</p>
    <p>Your order has been received and is being processed.</p>
</body>
</html>
`, order.ID, rows.String(), order.Total.StringFixed(2))
}
