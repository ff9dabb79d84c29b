package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/nahidhasan/mealbox-app/config"
	"github.com/nahidhasan/mealbox-app/models"
	"github.com/nahidhasan/mealbox-app/router"
	"github.com/nahidhasan/mealbox-app/services"
	"github.com/nahidhasan/mealbox-app/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	utils.InitDB(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	gateway := services.GetShurjoPayService()
	if err := gateway.ValidateConfig(); err != nil {
		utils.ErrorLogger.Fatalf("Invalid shurjoPay configuration: %v", err)
	}

	// Background sweep for payments settled while the customer never came back
	// through the return URL.
	orderService := services.NewOrderService(db, gateway)
	orderService.StartPendingPaymentChecker()

	r := router.SetupRouter(db, gateway)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Meal{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.TrackingUpdate{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
