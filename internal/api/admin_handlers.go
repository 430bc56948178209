package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/shopspring/decimal"
)

// AdminHandlers serves the back-office product and user management.
type AdminHandlers struct {
	products *product.Service
	users    *user.Service
	images   *ImageStore
}

func NewAdminHandlers(products *product.Service, users *user.Service, images *ImageStore) *AdminHandlers {
	return &AdminHandlers{
		products: products,
		users:    users,
		images:   images,
	}
}

// productForm is a product create or edit request. Absent fields are nil.
type productForm struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Stock       *int             `json:"stock"`
	IsActive    *bool            `json:"is_active"`

	image       multipart.File
	imageHeader *multipart.FileHeader
}

// parseProductForm reads a JSON body or a (multipart) form with an optional
// "image" file.
func (h *AdminHandlers) parseProductForm(w http.ResponseWriter, r *http.Request) (*productForm, error) {
	var form productForm
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeJSON(r, &form); err != nil {
			return nil, err
		}
		return &form, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.images.MaxBytes()+1<<20)
	if err := r.ParseMultipartForm(h.images.MaxBytes()); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			return nil, apperror.Validation("invalid form: " + err.Error())
		}
		if err := r.ParseForm(); err != nil {
			return nil, apperror.Validation("invalid form")
		}
	}

	if v, ok := formValue(r, "name"); ok {
		form.Name = &v
	}
	if v, ok := formValue(r, "description"); ok {
		form.Description = &v
	}
	if v, ok := formValue(r, "category"); ok {
		form.Category = &v
	}
	if v, ok := formValue(r, "price"); ok {
		price, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, product.ErrInvalidPrice
		}
		form.Price = &price
	}
	if v, ok := formValue(r, "stock"); ok {
		stock, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, product.ErrInvalidStock
		}
		form.Stock = &stock
	}
	if v, ok := formValue(r, "is_active"); ok {
		active := v == "on" || v == "true" || v == "1"
		form.IsActive = &active
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		form.image = file
		form.imageHeader = header
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return nil, apperror.Validation("invalid image upload")
	}
	return &form, nil
}

func formValue(r *http.Request, key string) (string, bool) {
	values, ok := r.Form[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// saveImage stores the uploaded file, if any, and returns its URL.
func (h *AdminHandlers) saveImage(form *productForm) (string, error) {
	if form.image == nil {
		return "", nil
	}
	defer form.image.Close()
	return h.images.Save(form.image, form.imageHeader)
}

func (h *AdminHandlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListAll(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *AdminHandlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseProductForm(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	imageURL, err := h.saveImage(form)
	if err != nil {
		respondError(w, r, err)
		return
	}

	in := product.Input{ImageURL: imageURL, IsActive: form.IsActive}
	if form.Name != nil {
		in.Name = *form.Name
	}
	if form.Description != nil {
		in.Description = *form.Description
	}
	if form.Price != nil {
		in.Price = *form.Price
	}
	if form.Category != nil {
		in.Category = *form.Category
	}
	if form.Stock != nil {
		in.Stock = *form.Stock
	}

	p, err := h.products.Create(r.Context(), in)
	if err != nil {
		h.images.Remove(imageURL)
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *AdminHandlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseProductForm(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	imageURL, err := h.saveImage(form)
	if err != nil {
		respondError(w, r, err)
		return
	}

	patch := product.Patch{
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		Category:    form.Category,
		Stock:       form.Stock,
		IsActive:    form.IsActive,
	}
	if imageURL != "" {
		patch.ImageURL = &imageURL
	}

	p, replaced, err := h.products.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.images.Remove(imageURL)
		respondError(w, r, err)
		return
	}
	h.images.Remove(replaced)
	respondJSON(w, http.StatusOK, p)
}

// DeleteProduct removes a product and its image. A deactivated product keeps
// its image.
func (h *AdminHandlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	result, err := h.products.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !result.SoftDeleted {
		h.images.Remove(result.Product.ImageURL)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":      "Product deleted",
		"product_id":   result.Product.ProductID,
		"soft_deleted": result.SoftDeleted,
	})
}

// User management

type adminUserRequest struct {
	FirstName     *string             `json:"first_name"`
	LastName      *string             `json:"last_name"`
	Email         *string             `json:"email"`
	Password      *string             `json:"password"`
	Role          *user.Role          `json:"role"`
	AccountStatus *user.AccountStatus `json:"account_status"`
	Verified      bool                `json:"verified"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (h *AdminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *AdminHandlers) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *AdminHandlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req adminUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	u, err := h.users.CreateByAdmin(r.Context(), user.AdminCreate{
		Registration: user.Registration{
			FirstName: deref(req.FirstName),
			LastName:  deref(req.LastName),
			Email:     deref(req.Email),
			Password:  deref(req.Password),
		},
		Role:     deref(req.Role),
		Verified: req.Verified,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

func (h *AdminHandlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req adminUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	u, err := h.users.Update(r.Context(), r.PathValue("id"), user.AdminUpdate{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Role:          req.Role,
		AccountStatus: req.AccountStatus,
		Password:      req.Password,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *AdminHandlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == getUserID(r) {
		respondError(w, r, apperror.Validation("administrators cannot delete their own account"))
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("User %s deleted", id)})
}
