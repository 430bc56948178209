package api

import (
	"net/http"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/klauspost/compress/gzhttp"
)

// RouterConfig collects what NewRouter wires together.
type RouterConfig struct {
	Handlers       *Handlers
	AuthHandlers   *AuthHandlers
	AdminHandlers  *AdminHandlers
	ReportHandlers *ReportHandlers
	JWT            *auth.JWTService
	// LiveFeed serves the admin websocket. Optional.
	LiveFeed http.Handler
	// StaticDir and UploadDir are served under /static/ and /uploads/ when set.
	StaticDir string
	UploadDir string
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	h, a, admin, reports := cfg.Handlers, cfg.AuthHandlers, cfg.AdminHandlers, cfg.ReportHandlers

	requireAuth := middleware.AuthMiddleware(cfg.JWT)
	optionalAuth := middleware.OptionalAuthMiddleware(cfg.JWT)
	requireAdmin := func(next http.HandlerFunc) http.Handler {
		return requireAuth(middleware.RequireRole("admin")(next))
	}
	user := func(next http.HandlerFunc) http.Handler { return requireAuth(next) }
	maybeUser := func(next http.HandlerFunc) http.Handler { return optionalAuth(next) }

	// Static files
	if cfg.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	}
	if cfg.UploadDir != "" {
		mux.Handle("GET "+UploadURLPrefix, http.StripPrefix(UploadURLPrefix, http.FileServer(http.Dir(cfg.UploadDir))))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Products
	mux.HandleFunc("GET /products", h.GetProducts)
	mux.HandleFunc("GET /products/search", h.SearchProducts)
	mux.HandleFunc("GET /products/{id}", h.GetProduct)

	// Accounts
	mux.HandleFunc("POST /users/register", a.Register)
	mux.HandleFunc("GET /users/verify/{token}", a.VerifyEmail)
	mux.HandleFunc("POST /users/verify/resend", a.ResendVerification)
	mux.HandleFunc("POST /users/login", a.Login)
	mux.HandleFunc("POST /users/logout", a.Logout)
	mux.Handle("GET /users/me", user(a.Me))
	mux.Handle("PUT /users/me", user(a.UpdateMe))
	mux.HandleFunc("POST /password/forgot", a.ForgotPassword)
	mux.HandleFunc("POST /password/reset/{token}", a.ResetPassword)
	mux.Handle("GET /api/check-session", maybeUser(a.CheckSession))

	// Cart and orders. Checkout resolves the user itself so anonymous
	// checkout can be switched on.
	mux.Handle("POST /checkout", maybeUser(h.Checkout))
	mux.Handle("GET /cart", user(h.GetCart))
	mux.Handle("DELETE /cart/{orderId}/items/{productId}", user(h.RemoveCartItem))
	mux.Handle("DELETE /cart/products/{productId}", user(h.RemoveProductFromCart))
	mux.Handle("GET /cart/products/{productId}", user(h.CartProductStatus))
	mux.Handle("POST /orders/complete", user(h.CompleteOrders))
	mux.Handle("GET /orders", user(h.GetOrders))
	mux.Handle("GET /orders/{id}", user(h.GetOrder))

	// Admin
	mux.Handle("GET /admin/products", requireAdmin(admin.ListProducts))
	mux.Handle("POST /admin/products", requireAdmin(admin.CreateProduct))
	mux.Handle("PUT /admin/products/{id}", requireAdmin(admin.UpdateProduct))
	mux.Handle("DELETE /admin/products/{id}", requireAdmin(admin.DeleteProduct))

	mux.Handle("GET /admin/users", requireAdmin(admin.ListUsers))
	mux.Handle("POST /admin/users", requireAdmin(admin.CreateUser))
	mux.Handle("GET /admin/users/{id}", requireAdmin(admin.GetUser))
	mux.Handle("PUT /admin/users/{id}", requireAdmin(admin.UpdateUser))
	mux.Handle("DELETE /admin/users/{id}", requireAdmin(admin.DeleteUser))

	mux.Handle("GET /admin/orders", requireAdmin(reports.ListOrders))
	mux.Handle("GET /admin/reports/sales", requireAdmin(reports.Sales))
	mux.Handle("GET /admin/reports/sales/export/daily", requireAdmin(reports.ExportDaily))
	mux.Handle("GET /admin/reports/sales/export/orders", requireAdmin(reports.ExportOrders))

	// The websocket needs the raw connection, so it skips compression.
	root := http.NewServeMux()
	root.Handle("/", gzhttp.GzipHandler(mux))
	if cfg.LiveFeed != nil {
		root.Handle("GET /admin/orders/live", requireAuth(middleware.RequireRole("admin")(cfg.LiveFeed)))
	}

	return middleware.Logging(middleware.SecurityHeaders(root))
}
