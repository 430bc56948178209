package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/url"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/email"
	"github.com/example/ec-storefront/internal/event"
	"github.com/shopspring/decimal"
)

// Mailer sends the storefront's transactional emails.
type Mailer interface {
	SendVerification(to, firstName, link string) error
	SendPasswordReset(to, firstName, link string) error
	SendOrderConfirmation(to, orderID string, total decimal.Decimal, items []email.OrderItem) error
}

// UserLookup resolves the recipient of an order confirmation.
type UserLookup interface {
	FindByID(ctx context.Context, userID string) (*user.User, error)
}

// Handler processes events for sending notifications
type Handler struct {
	mailer  Mailer
	users   UserLookup
	baseURL string
}

// NewHandler creates a new notification handler. Links in emails are built on baseURL.
func NewHandler(mailer Mailer, users UserLookup, baseURL string) *Handler {
	return &Handler{
		mailer:  mailer,
		users:   users,
		baseURL: baseURL,
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var e event.Event
	if err := json.Unmarshal(value, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	switch e.EventType {
	case user.EventUserRegistered, user.EventVerificationRequested:
		return h.handleToken(e, "/users/verify/", h.mailer.SendVerification)
	case user.EventPasswordResetRequested:
		return h.handleToken(e, "/password/reset/", h.mailer.SendPasswordReset)
	case order.EventOrdersCompleted:
		return h.handleOrdersCompleted(ctx, e)
	}
	return nil
}

func (h *Handler) handleToken(e event.Event, path string, send func(to, firstName, link string) error) error {
	var t user.TokenIssued
	if err := json.Unmarshal(e.Data, &t); err != nil {
		log.Printf("[Notifier] Failed to unmarshal %s event: %v", e.EventType, err)
		return err
	}

	link := h.baseURL + path + url.PathEscape(t.Token)
	if err := send(t.Email, t.FirstName, link); err != nil {
		log.Printf("[Notifier] Failed to send %s email to %s: %v", e.EventType, t.Email, err)
		return err
	}

	log.Printf("[Notifier] %s email sent to %s", e.EventType, t.Email)
	return nil
}

func (h *Handler) handleOrdersCompleted(ctx context.Context, e event.Event) error {
	var c order.OrdersCompleted
	if err := json.Unmarshal(e.Data, &c); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrdersCompleted event: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing OrdersCompleted event for user %s (%d orders)", c.UserID, len(c.Orders))

	u, err := h.users.FindByID(ctx, c.UserID)
	if err != nil {
		log.Printf("[Notifier] Error getting user %s: %v", c.UserID, err)
		return nil
	}
	if u == nil {
		log.Printf("[Notifier] User not found: %s", c.UserID)
		return nil
	}

	for _, o := range c.Orders {
		// Names and prices come from the order snapshot, not the live catalog.
		items := make([]email.OrderItem, len(o.Items))
		for i, item := range o.Items {
			items[i] = email.OrderItem{
				ProductID: item.ProductID,
				Name:      item.Name,
				Quantity:  item.Quantity,
				Price:     item.Price,
				Subtotal:  item.Subtotal,
			}
		}

		if err := h.mailer.SendOrderConfirmation(u.Email, o.OrderID, o.TotalAmount, items); err != nil {
			log.Printf("[Notifier] Failed to send email to %s: %v", u.Email, err)
			return err
		}
		log.Printf("[Notifier] Order confirmation email sent to %s for order %s", u.Email, o.OrderID)
	}
	return nil
}
