package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/shopspring/decimal"
)

const AggregateType = "Product"

var (
	ErrProductNotFound = fmt.Errorf("%w: product not found", apperror.ErrNotFound)
	ErrProductInUse    = fmt.Errorf("%w: product is referenced by existing orders", apperror.ErrConflict)
	ErrInvalidName     = fmt.Errorf("%w: name is required", apperror.ErrValidation)
	ErrInvalidPrice    = fmt.Errorf("%w: price must not be negative", apperror.ErrValidation)
	ErrInvalidStock    = fmt.Errorf("%w: stock must not be negative", apperror.ErrValidation)
)

// Product is a catalog entry. ProductID is assigned at creation and never changes.
type Product struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Product) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if p.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

// ListOptions narrows a catalog listing.
type ListOptions struct {
	ActiveOnly bool
	// Query matches name or description, case-insensitively.
	Query string
}

// Repository persists products. FindByID returns (nil, nil) when absent.
type Repository interface {
	Insert(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, productID string) (*Product, error)
	FindByIDs(ctx context.Context, productIDs []string) ([]*Product, error)
	List(ctx context.Context, opts ListOptions) ([]*Product, error)
	Delete(ctx context.Context, productID string) (bool, error)
}

// ReferenceChecker reports whether any order references a product.
type ReferenceChecker interface {
	IsProductInOrders(ctx context.Context, productID string) (bool, error)
}
