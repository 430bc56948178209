package product

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/event"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Input carries the fields of a new product.
type Input struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Stock       int
	ImageURL    string
	// nil means active
	IsActive *bool
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	Stock       *int
	ImageURL    *string
	IsActive    *bool
}

// DeleteResult describes what Delete did.
type DeleteResult struct {
	Product *Product
	// SoftDeleted is set when the product was deactivated instead of removed;
	// its image must be kept.
	SoftDeleted bool
}

type Option func(*Service)

// WithSoftDelete makes Delete deactivate products instead of removing them.
func WithSoftDelete(enabled bool) Option {
	return func(s *Service) { s.softDelete = enabled }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type Service struct {
	repo       Repository
	refs       ReferenceChecker
	publisher  event.Publisher
	softDelete bool
	now        func() time.Time
}

func NewService(repo Repository, refs ReferenceChecker, publisher event.Publisher, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		refs:      refs,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, in Input) (*Product, error) {
	now := s.now().UTC()
	p := &Product{
		ProductID:   uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Category:    strings.TrimSpace(in.Category),
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		IsActive:    in.IsActive == nil || *in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}

	event.Emit(ctx, s.publisher, p.ProductID, AggregateType, EventProductCreated, ProductCreated{
		ProductID: p.ProductID,
		Name:      p.Name,
		Price:     p.Price,
		Category:  p.Category,
		CreatedAt: now,
	})
	return p, nil
}

// Update applies patch and returns the updated product together with the
// image URL it replaced, if any, so the caller can remove the old file.
func (s *Service) Update(ctx context.Context, productID string, patch Patch) (*Product, string, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return nil, "", err
	}

	var replacedImage string
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	if patch.ImageURL != nil && *patch.ImageURL != p.ImageURL {
		replacedImage = p.ImageURL
		p.ImageURL = *patch.ImageURL
	}
	if err := p.validate(); err != nil {
		return nil, "", err
	}

	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, "", err
	}

	event.Emit(ctx, s.publisher, p.ProductID, AggregateType, EventProductUpdated, ProductUpdated{
		ProductID: p.ProductID,
		Name:      p.Name,
		Price:     p.Price,
		IsActive:  p.IsActive,
		UpdatedAt: p.UpdatedAt,
	})
	return p, replacedImage, nil
}

func (s *Service) Get(ctx context.Context, productID string) (*Product, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// GetActive hides inactive products from public lookups.
func (s *Service) GetActive(ctx context.Context, productID string) (*Product, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// ListActive returns the public catalog.
func (s *Service) ListActive(ctx context.Context) ([]*Product, error) {
	return s.repo.List(ctx, ListOptions{ActiveOnly: true})
}

// ListAll includes inactive products, for the back-office.
func (s *Service) ListAll(ctx context.Context) ([]*Product, error) {
	return s.repo.List(ctx, ListOptions{})
}

func (s *Service) Search(ctx context.Context, query string) ([]*Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListActive(ctx)
	}
	return s.repo.List(ctx, ListOptions{ActiveOnly: true, Query: query})
}

// Delete removes a product, or deactivates it when soft delete is enabled.
// A hard delete is refused with ErrProductInUse while any order references
// the product; in that case no delete reaches the repository.
func (s *Service) Delete(ctx context.Context, productID string) (*DeleteResult, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	if s.softDelete {
		p.IsActive = false
		p.UpdatedAt = s.now().UTC()
		if err := s.repo.Update(ctx, p); err != nil {
			return nil, err
		}
		event.Emit(ctx, s.publisher, p.ProductID, AggregateType, EventProductDeactivated, ProductDeactivated{
			ProductID:     p.ProductID,
			DeactivatedAt: p.UpdatedAt,
		})
		return &DeleteResult{Product: p, SoftDeleted: true}, nil
	}

	inUse, err := s.refs.IsProductInOrders(ctx, productID)
	if err != nil {
		return nil, err
	}
	if inUse {
		log.Printf("[Product] Refusing to delete %s: referenced by orders", productID)
		return nil, ErrProductInUse
	}

	deleted, err := s.repo.Delete(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrProductNotFound
	}

	event.Emit(ctx, s.publisher, p.ProductID, AggregateType, EventProductDeleted, ProductDeleted{
		ProductID: p.ProductID,
		DeletedAt: s.now().UTC(),
	})
	return &DeleteResult{Product: p}, nil
}
