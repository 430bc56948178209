package product

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventProductCreated     = "ProductCreated"
	EventProductUpdated     = "ProductUpdated"
	EventProductDeactivated = "ProductDeactivated"
	EventProductDeleted     = "ProductDeleted"
)

type ProductCreated struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	CreatedAt time.Time       `json:"created_at"`
}

type ProductUpdated struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	IsActive  bool            `json:"is_active"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ProductDeactivated struct {
	ProductID     string    `json:"product_id"`
	DeactivatedAt time.Time `json:"deactivated_at"`
}

type ProductDeleted struct {
	ProductID string    `json:"product_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
