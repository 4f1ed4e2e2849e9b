package libs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mini-shop/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (s *captureSender) DialAndSend(m ...*gomail.Message) error {
	s.sent = append(s.sent, m...)
	return s.err
}

func testOrder(name string) *models.Order {
	price := decimal.RequireFromString("2.50")
	return &models.Order{
		ID:    9,
		Total: decimal.RequireFromString("5.00"),
		Items: []models.OrderItem{{
			ProductID: 3,
			Quantity:  2,
			Price:     price,
			Product:   &models.ProductSummary{ID: 3, Name: name, Price: price},
		}},
	}
}

func TestOrderConfirmationBodyEscapesProductNames(t *testing.T) {
	body := orderConfirmationBody(testOrder(`<script>alert("x")</script> & Co`))

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt; &amp; Co")
	assert.Contains(t, body, "<td>2.50</td><td>5.00</td>")
	assert.Contains(t, body, "<strong>Total:</strong> 5.00")
}

func TestOrderConfirmationBodyFallsBackToProductID(t *testing.T) {
	order := testOrder("")
	order.Items[0].Product = nil

	assert.Contains(t, orderConfirmationBody(order), "<td>Product #3</td>")
}

func TestSendOrderConfirmation(t *testing.T) {
	sender := &captureSender{}
	mailer := NewMailerWithSender("shop@example.com", sender)

	require.NoError(t, mailer.SendOrderConfirmation(context.Background(), "buyer@example.com", testOrder("Mug")))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"buyer@example.com"}, sender.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Order Confirmation #9"}, sender.sent[0].GetHeader("Subject"))

	sender.err = errors.New("connection refused")
	err := mailer.SendOrderConfirmation(context.Background(), "buyer@example.com", testOrder("Mug"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to send email"))
}

func TestNewMailerRequiresSMTP(t *testing.T) {
	_, err := NewMailer(SMTPConfig{Host: "smtp.example.com"})
	assert.Error(t, err)
}
