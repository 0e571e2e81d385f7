// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-marketplace/controllers"
	"go-marketplace/middleware"
	"go-marketplace/routes"
	"go-marketplace/utils"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	logger := utils.NewLogger()
	defer logger.Sync()

	// Set the JWT secret key
	if err := utils.SetJwtSecret(os.Getenv("JWT_SECRET")); err != nil {
		logger.Fatal("JWT_SECRET is not set", zap.Error(err))
	}

	// Initialize collaborators
	emailService := utils.NewEmailService()
	gateway := utils.NewPaymentGateway()

	// Connect to MongoDB
	client := utils.ConnectDB()
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			logger.Fatal("failed to disconnect from MongoDB", zap.Error(err))
		}
	}()

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	// Initialize controllers
	c := routes.Controllers{
		Auth:        controllers.NewAuthController(client, emailService, logger),
		Address:     controllers.NewAddressController(client, logger),
		Category:    controllers.NewCategoryController(client, logger),
		Product:     controllers.NewProductController(client, logger),
		Order:       controllers.NewOrderController(client, emailService, gateway, logger),
		SellerOrder: controllers.NewSellerOrderController(client, logger),
		Transaction: controllers.NewTransactionController(client, logger),
		Admin:       controllers.NewAdminController(client, logger),
		Upload:      controllers.NewUploadController("uploads", baseURL, logger),
	}

	// Set up the router
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(logger))
	routes.RegisterRoutes(router, c)

	// Serve stored images
	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir("uploads"))))

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	logger.Info("server is running", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, router); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
