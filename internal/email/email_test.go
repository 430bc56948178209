package email

import (
	"net/smtp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"5", "5.00"},
		{"999.5", "999.50"},
		{"1000", "1,000.00"},
		{"1234567.891", "1,234,567.89"},
		{"-1500.25", "-1,500.25"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAmount(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestBuildOrderConfirmationBody(t *testing.T) {
	body := BuildOrderConfirmationBody("order-123", decimal.RequireFromString("2520"), []OrderItem{
		{ProductID: "p1", Name: "Mug <large>", Quantity: 2, Price: decimal.RequireFromString("1260")},
		{ProductID: "p2", Quantity: 1, Price: decimal.Zero},
	})

	assert.Contains(t, body, "order-123")
	assert.Contains(t, body, "Mug &lt;large&gt;")
	assert.NotContains(t, body, "<large>")
	assert.Contains(t, body, "$1,260.00")
	assert.Contains(t, body, "$2,520.00")
	assert.Contains(t, body, ">p2<")
	assert.Contains(t, body, "100%")
}

func TestBuildVerificationBody(t *testing.T) {
	body := BuildVerificationBody("Alice", "https://shop.example.com/users/verify/tok?a=1&b=2")

	assert.Contains(t, body, "Hello Alice,")
	assert.Contains(t, body, `href="https://shop.example.com/users/verify/tok?a=1&amp;b=2"`)
}

func TestService_SendPasswordReset(t *testing.T) {
	svc := NewService("mail.local", "2525", "shop@example.com")
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	svc.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotTo = to
		gotMsg = string(msg)
		assert.Equal(t, "shop@example.com", from)
		return nil
	}

	err := svc.SendPasswordReset("alice@example.com", "Alice", "https://shop.example.com/password/reset/tok")

	require.NoError(t, err)
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, []string{"alice@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: shop@example.com\r\nTo: alice@example.com\r\nSubject: Reset your password\r\n"))
	assert.Contains(t, gotMsg, "https://shop.example.com/password/reset/tok")
}

func TestService_SendOrderConfirmation_ShortSubject(t *testing.T) {
	svc := NewService("mail.local", "2525", "shop@example.com")
	var gotMsg string
	svc.sendMail = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotMsg = string(msg)
		return nil
	}

	require.NoError(t, svc.SendOrderConfirmation("a@b.co", "0123456789abcdef", decimal.NewFromInt(1), nil))

	assert.Contains(t, gotMsg, "Subject: Thank you for your order (order 01234567)\r\n")
}
