// routes/routes.go
package routes

import (
	"github.com/gorilla/mux"

	"go-marketplace/controllers"
	"go-marketplace/middleware"
)

// Controllers bundles everything RegisterRoutes wires up.
type Controllers struct {
	Auth        *controllers.AuthController
	Address     *controllers.AddressController
	Category    *controllers.CategoryController
	Product     *controllers.ProductController
	Order       *controllers.OrderController
	SellerOrder *controllers.SellerOrderController
	Transaction *controllers.TransactionController
	Admin       *controllers.AdminController
	Upload      *controllers.UploadController
}

// RegisterRoutes sets up all the routes for the application under /api
func RegisterRoutes(router *mux.Router, c Controllers) {
	api := router.PathPrefix("/api").Subrouter()

	// Public auth routes
	api.HandleFunc("/auth/register", c.Auth.Register).Methods("POST")
	api.HandleFunc("/auth/login", c.Auth.Login).Methods("POST")
	api.HandleFunc("/auth/logout", c.Auth.Logout).Methods("POST")
	api.HandleFunc("/auth/verify-email", c.Auth.VerifyEmail).Methods("GET")
	api.HandleFunc("/auth/forgot-password", c.Auth.ForgotPassword).Methods("POST")
	api.HandleFunc("/auth/reset-password", c.Auth.ResetPassword).Methods("POST")
	api.HandleFunc("/contact", c.Auth.Contact).Methods("POST")

	// Profile routes
	users := api.PathPrefix("/users").Subrouter()
	users.Use(middleware.AuthMiddleware)
	users.HandleFunc("/profile", c.Auth.GetProfile).Methods("GET")
	users.HandleFunc("/profile", c.Auth.UpdateProfile).Methods("PUT")
	users.HandleFunc("/change-password", c.Auth.ChangePassword).Methods("PUT")

	// Address routes
	addresses := api.PathPrefix("/addresses").Subrouter()
	addresses.Use(middleware.AuthMiddleware)
	addresses.HandleFunc("", c.Address.ListAddresses).Methods("GET")
	addresses.HandleFunc("", c.Address.CreateAddress).Methods("POST")
	addresses.HandleFunc("/{id}", c.Address.UpdateAddress).Methods("PUT")
	addresses.HandleFunc("/{id}", c.Address.DeleteAddress).Methods("DELETE")

	// Category routes: reads public, writes admin-only
	api.HandleFunc("/category", c.Category.ListCategories).Methods("GET")
	api.HandleFunc("/category/{idOrSlug}", c.Category.GetCategory).Methods("GET")

	categoryAdmin := api.PathPrefix("/category").Subrouter()
	categoryAdmin.Use(middleware.AuthMiddleware)
	categoryAdmin.Use(middleware.AdminMiddleware)
	categoryAdmin.HandleFunc("", c.Category.CreateCategory).Methods("POST")
	categoryAdmin.HandleFunc("/{id}", c.Category.UpdateCategory).Methods("PUT")
	categoryAdmin.HandleFunc("/{id}", c.Category.DeleteCategory).Methods("DELETE")

	// Product routes: reads public, writes seller-only
	api.HandleFunc("/product", c.Product.GetProducts).Methods("GET")
	api.HandleFunc("/product/{idOrSlug}", c.Product.GetProduct).Methods("GET")

	productSeller := api.PathPrefix("/product").Subrouter()
	productSeller.Use(middleware.AuthMiddleware)
	productSeller.Use(middleware.SellerMiddleware)
	productSeller.HandleFunc("", c.Product.CreateProduct).Methods("POST")
	productSeller.HandleFunc("/{id}", c.Product.UpdateProduct).Methods("PUT")
	productSeller.HandleFunc("/{id}", c.Product.DeleteProduct).Methods("DELETE")

	// Order routes
	orders := api.PathPrefix("/orders").Subrouter()
	orders.Use(middleware.AuthMiddleware)
	orders.HandleFunc("", c.Order.CreateOrder).Methods("POST")
	orders.HandleFunc("", c.Order.GetOrders).Methods("GET")
	orders.HandleFunc("/{id}", c.Order.GetOrder).Methods("GET")
	orders.HandleFunc("/{id}/pay", c.Order.PayOrder).Methods("POST")
	orders.HandleFunc("/{id}/verify", c.Order.VerifyPayment).Methods("POST")

	// Seller order routes
	sellerOrders := api.PathPrefix("/seller-orders").Subrouter()
	sellerOrders.Use(middleware.AuthMiddleware)
	sellerOrders.Use(middleware.SellerMiddleware)
	sellerOrders.HandleFunc("", c.SellerOrder.ListSellerOrders).Methods("GET")
	sellerOrders.HandleFunc("/{id}", c.SellerOrder.GetSellerOrder).Methods("GET")
	sellerOrders.HandleFunc("/{id}/item-status", c.SellerOrder.UpdateItemStatus).Methods("PUT")
	sellerOrders.HandleFunc("/{id}/cancel-item", c.SellerOrder.CancelItem).Methods("PUT")

	// Transaction routes
	transactions := api.PathPrefix("/transactions").Subrouter()
	transactions.Use(middleware.AuthMiddleware)
	transactions.HandleFunc("", c.Transaction.ListMyTransactions).Methods("GET")

	// Upload routes
	upload := api.PathPrefix("/upload").Subrouter()
	upload.Use(middleware.AuthMiddleware)
	upload.Use(middleware.SellerMiddleware)
	upload.HandleFunc("", c.Upload.UploadImage).Methods("POST")
	upload.HandleFunc("/{publicId}", c.Upload.DeleteImage).Methods("DELETE")

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/users", c.Admin.ListUsers).Methods("GET")
	admin.HandleFunc("/users/{id}", c.Admin.GetUser).Methods("GET")
	admin.HandleFunc("/users/{id}/role", c.Admin.UpdateUserRole).Methods("PUT")
	admin.HandleFunc("/users/{id}/active", c.Admin.SetUserActive).Methods("PUT")
	admin.HandleFunc("/orders", c.Admin.ListOrders).Methods("GET")
	admin.HandleFunc("/transactions", c.Transaction.ListAllTransactions).Methods("GET")
	admin.HandleFunc("/dashboard", c.Admin.Dashboard).Methods("GET")
}
