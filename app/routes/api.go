package routes

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kirana/app/controllers"
	"github.com/shashiranjanraj/kirana/app/graph"
	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/pkg/metrics"
	"github.com/shashiranjanraj/kirana/pkg/middleware"
	"github.com/shashiranjanraj/kirana/pkg/rbac"
	"github.com/shashiranjanraj/kirana/pkg/response"
	"github.com/shashiranjanraj/kirana/pkg/router"
	"github.com/shashiranjanraj/kirana/pkg/ws"
)

// RegisterAPI mounts every HTTP endpoint on the router.
//
// Public reads (catalogue, search, GraphQL) need no token. Everything that
// touches an order requires authentication; catalogue writes require the
// admin role and order status changes the staff or admin role.
func RegisterAPI(r *router.Router, db *gorm.DB, orderHub *ws.Hub) error {
	authController := controllers.NewAuthController(db)
	userController := controllers.NewUserController(db)
	categoryController := controllers.NewCategoryController(db)
	productController := controllers.NewProductController(db)
	orderController := controllers.NewOrderController(db)

	graphHandler, err := graph.New(db)
	if err != nil {
		return err
	}

	staffOnly := rbac.HasRole(models.RoleStaff, models.RoleAdmin)
	adminOnly := rbac.HasRole(models.RoleAdmin)

	r.Get("/healthz", "healthz", healthz(db))
	r.Get("/metrics", "metrics", metrics.Handler())

	api := r.Group("/api")

	// Auth
	api.Post("/auth/register", "auth.register", authController.Register)
	api.Post("/auth/login", "auth.login", authController.Login)

	// Catalogue reads are public.
	api.Get("/categories", "categories.index", categoryController.Index)
	api.Get("/categories/{id}", "categories.show", categoryController.Show)
	api.Get("/categories/{id}/products", "categories.products", categoryController.Products)

	api.Get("/products", "products.index", productController.Index)
	api.Get("/products/featured", "products.featured", productController.Featured)
	api.Get("/products/search", "products.search", productController.Search)
	api.Get("/products/{id}", "products.show", productController.Show)

	api.Post("/graphql", "graphql", graphHandler.ServeHTTP)

	// Catalogue writes are admin-only.
	admin := api.Group("", middleware.Auth, adminOnly)
	admin.Post("/categories", "categories.store", categoryController.Store)
	admin.Put("/categories/{id}", "categories.update", categoryController.Update)
	admin.Delete("/categories/{id}", "categories.destroy", categoryController.Destroy)

	admin.Post("/products", "products.store", productController.Store)
	admin.Put("/products/{id}", "products.update", productController.Update)
	admin.Delete("/products/{id}", "products.destroy", productController.Destroy)
	admin.Post("/products/{id}/image", "products.image", productController.UploadImage)

	// Everything below requires a valid token.
	protected := api.Group("", middleware.Auth)
	protected.Get("/users/me", "users.me", userController.Me)

	protected.Post("/orders", "orders.store", orderController.Store)
	protected.Get("/orders", "orders.index", orderController.Index)
	protected.Get("/orders/my_orders", "orders.mine", orderController.Mine)
	protected.Get("/orders/{id}", "orders.show", orderController.Show)
	protected.Patch("/orders/{id}/cancel", "orders.cancel", orderController.Cancel)

	staff := api.Group("", middleware.Auth, staffOnly)
	staff.Patch("/orders/{id}/status", "orders.status", orderController.UpdateStatus)

	// Live order event feed for back-office dashboards.
	staff.Get("/ws/orders", "ws.orders", func(w http.ResponseWriter, r *http.Request) {
		ws.Upgrade(w, r, orderHub)
	})

	return nil
}

// healthz reports liveness plus database reachability.
func healthz(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(r.Context()) != nil {
			response.Error(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		response.Success(w, map[string]string{"status": "ok"})
	}
}
