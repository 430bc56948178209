package api

import (
	"net/http"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
)

// Handlers serves the public catalog and the customer's cart and orders.
type Handlers struct {
	products *product.Service
	orders   *order.Service
}

func NewHandlers(products *product.Service, orders *order.Service) *Handlers {
	return &Handlers{
		products: products,
		orders:   orders,
	}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListActive(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) SearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetActive(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Cart Handlers

type checkoutRequest struct {
	Items []order.RequestedItem `json:"items"`
}

// Checkout turns the submitted cart into a new pending order.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	o, err := h.orders.CreateForUser(r.Context(), getUserID(r), req.Items)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.Cart(r.Context(), getUserID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	result, err := h.orders.RemoveItem(r.Context(), r.PathValue("orderId"), r.PathValue("productId"), getUserID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handlers) RemoveProductFromCart(w http.ResponseWriter, r *http.Request) {
	n, err := h.orders.RemoveProductFromUserCart(r.Context(), getUserID(r), r.PathValue("productId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"orders_updated": n})
}

// CartProductStatus reports whether the product is in the user's cart and
// whether the user has bought it before.
func (h *Handlers) CartProductStatus(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	productID := r.PathValue("productId")

	inCart, err := h.orders.IsProductInUserCart(r.Context(), userID, productID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	purchased, err := h.orders.HasUserPurchasedProduct(r.Context(), userID, productID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"in_cart": inCart, "purchased": purchased})
}

// Order Handlers

type completeRequest struct {
	OrderIDs []string `json:"order_ids"`
}

func (h *Handlers) CompleteOrders(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	n, err := h.orders.Complete(r.Context(), req.OrderIDs, getUserID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"completed": n})
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	status := order.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respondJSONError(w, "status must be to_pay or completed", http.StatusBadRequest)
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), getUserID(r), status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"), getUserID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}
