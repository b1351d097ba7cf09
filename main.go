package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/fixadd/stok/cmd"
	auditstore "github.com/fixadd/stok/internal/activitylog"
	"github.com/fixadd/stok/internal/catalog"
	"github.com/fixadd/stok/internal/database"
	"github.com/fixadd/stok/internal/inventory"
	"github.com/fixadd/stok/internal/repository"
	"github.com/fixadd/stok/internal/requests"
	"github.com/fixadd/stok/internal/stocks"
	"github.com/fixadd/stok/internal/users"
	"github.com/fixadd/stok/pkg/activitylog"
	"github.com/fixadd/stok/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load .env file, but don't overwrite system environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, falling back to system environment variables.")
	}

	// Execute migration CMD
	cmd.Execute(ctx)
}

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := database.NewPostgresConnection(dbURL)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer db.Close()

	log.Println("Connected to the database successfully!")

	repo := repository.NewRepository(db)

	auditRepository := auditstore.NewRepository(repo)
	audit := activitylog.NewActivityLog(auditRepository)

	userRepository := users.NewRepository(repo)
	catalogRepository := catalog.NewRepository(repo)
	inventoryRepository := inventory.NewRepository(repo)
	stockRepository := stocks.NewRepository(repo)
	requestRepository := requests.NewRepository(repo)

	stockService := stocks.NewService(repo, stockRepository, inventoryRepository, userRepository, audit)
	inventoryService := inventory.NewService(repo, inventoryRepository, stockService, audit)
	requestService := requests.NewService(repo, requestRepository, stockService, userRepository, audit)

	router := gin.Default()
	security.NewLoginHandler(repo).RegisterRoutes(router)
	users.NewHandler(repo, userRepository, audit).RegisterRoutes(router)
	catalog.NewCatalogHandler(repo, catalogRepository, audit).RegisterRoutes(router)
	inventory.NewHandler(inventoryService).RegisterRoutes(router)
	stocks.NewHandler(stockService).RegisterRoutes(router)
	requests.NewHandler(requestService).RegisterRoutes(router)
	auditstore.NewHandler(auditRepository).RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if err := router.Run(os.Getenv("APP_HOST")); err != nil {
		panic(err)
	}
}
