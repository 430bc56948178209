package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderItem represents an item in an order for email purposes
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	Price     decimal.Decimal
	Subtotal  decimal.Decimal
}

const layout = `<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">%s</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		%s

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			This is an automated message. If you have any questions, please contact support.
		</p>
	</div>
</body>
</html>`

const button = `<p style="text-align: center; margin: 30px 0;">
			<a href="%s" style="background: #667eea; color: white; padding: 12px 24px; border-radius: 5px; text-decoration: none;">%s</a>
		</p>
		<p style="font-size: 13px; color: #666;">Or paste this link into your browser:<br>%s</p>`

func page(title, content string) string {
	return fmt.Sprintf(layout, html.EscapeString(title), content)
}

func greeting(firstName string) string {
	if firstName == "" {
		return `<p style="margin-top: 0;">Hello,</p>`
	}
	return fmt.Sprintf(`<p style="margin-top: 0;">Hello %s,</p>`, html.EscapeString(firstName))
}

func linkButton(link, label string) string {
	escaped := html.EscapeString(link)
	return fmt.Sprintf(button, escaped, label, escaped)
}

// BuildVerificationBody builds the HTML body for the email verification message
func BuildVerificationBody(firstName, link string) string {
	return page("Welcome!", greeting(firstName)+`
		<p>Thanks for signing up. Please confirm your email address to activate your account.</p>
		`+linkButton(link, "Verify email")+`
		<p style="font-size: 13px; color: #666;">The link expires in one hour. If you did not create an account, you can ignore this email.</p>`)
}

// BuildPasswordResetBody builds the HTML body for the password reset message
func BuildPasswordResetBody(firstName, link string) string {
	return page("Password reset", greeting(firstName)+`
		<p>We received a request to reset your password.</p>
		`+linkButton(link, "Choose a new password")+`
		<p style="font-size: 13px; color: #666;">The link expires in one hour and can be used once. If you did not ask for a reset, no action is needed.</p>`)
}

// BuildOrderConfirmationBody builds the HTML body for order confirmation email
func BuildOrderConfirmationBody(orderID string, total decimal.Decimal, items []OrderItem) string {
	var itemsHTML strings.Builder
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		subtotal := item.Subtotal
		if subtotal.IsZero() {
			subtotal = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		itemsHTML.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">$%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">$%s</td>
			</tr>`,
			html.EscapeString(name),
			item.Quantity,
			formatAmount(item.Price),
			formatAmount(subtotal),
		))
	}

	return page("Thank you for your order", fmt.Sprintf(`<p style="margin-top: 0;">Your payment was received and your order is complete.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
		</div>

		<h2 style="font-size: 18px; border-bottom: 2px solid #667eea; padding-bottom: 10px;">Order details</h2>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left; font-weight: 600;">Product</th>
					<th style="padding: 12px; text-align: center; font-weight: 600;">Qty</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Price</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Subtotal</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;">
			<span style="font-size: 14px; color: #666;">Total</span>
			<span style="font-size: 24px; font-weight: bold; color: #667eea; margin-left: 10px;">$%s</span>
		</div>`, html.EscapeString(orderID), itemsHTML.String(), formatAmount(total)))
}

// formatAmount formats a money amount with two decimals and comma separators
func formatAmount(d decimal.Decimal) string {
	str := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(str, ".")

	var result strings.Builder
	if d.IsNegative() {
		result.WriteString("-")
	}
	remainder := len(whole) % 3
	if remainder > 0 {
		result.WriteString(whole[:remainder])
		if len(whole) > remainder {
			result.WriteString(",")
		}
	}

	for i := remainder; i < len(whole); i += 3 {
		result.WriteString(whole[i : i+3])
		if i+3 < len(whole) {
			result.WriteString(",")
		}
	}

	result.WriteString(".")
	result.WriteString(frac)
	return result.String()
}
