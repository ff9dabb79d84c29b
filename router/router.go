package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/nahidhasan/mealbox-app/controllers"
	"github.com/nahidhasan/mealbox-app/middlewares"
	"github.com/nahidhasan/mealbox-app/models"
	"github.com/nahidhasan/mealbox-app/services"
)

func SetupRouter(db *gorm.DB, gateway services.PaymentGateway) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.PrometheusMiddleware())
	// Registered before any route: gin snapshots each route's handler chain at
	// registration time, so a Use after SetupRouter would never run.
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	userCtrl := controllers.NewUserController(db)
	mealCtrl := controllers.NewMealController(db)
	cartCtrl := controllers.NewCartController(db)
	orderCtrl := controllers.NewOrderController(db, gateway)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Catalog browsing needs no login.
	r.GET("/meals", mealCtrl.GetAllMeals)
	r.GET("/meals/:meal_id", mealCtrl.GetMealByID)

	// Public tracking page and the gateway return URL.
	r.GET("/orders/tracking/:tracking_number", orderCtrl.TrackByNumber)
	r.GET("/orders/verify", orderCtrl.VerifyPayment)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/profile", userCtrl.GetProfile)

		// CART (customer)
		auth.POST("/cart", cartCtrl.AddItem)
		auth.GET("/cart", cartCtrl.GetCart)
		auth.DELETE("/cart", cartCtrl.Clear)
		auth.PATCH("/cart/item/:meal_id", cartCtrl.UpdateItem)
		auth.DELETE("/cart/item/:meal_id", cartCtrl.RemoveItem)

		// ORDERS (customer)
		auth.POST("/orders/from-cart", orderCtrl.CreateFromCart)
		auth.GET("/orders/my-orders", orderCtrl.GetMyOrders)
		auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)

		// TRACKING (provider/admin)
		auth.PATCH("/orders/:order_id/tracking",
			middlewares.RequireRole(models.RoleProvider), orderCtrl.UpdateTracking)

		// PROVIDER
		provider := auth.Group("/provider")
		provider.Use(middlewares.RequireRole(models.RoleProvider))
		{
			provider.GET("/orders", orderCtrl.GetProviderOrders)
			provider.POST("/meals", mealCtrl.CreateMeal)
			provider.PATCH("/meals/:meal_id", mealCtrl.UpdateMeal)
			provider.DELETE("/meals/:meal_id", mealCtrl.DeleteMeal)
		}

		// ADMIN
		admin := auth.Group("/admin")
		admin.Use(middlewares.RequireRole(models.RoleAdmin))
		{
			admin.GET("/orders", orderCtrl.GetAllOrders)
			admin.DELETE("/orders/:order_id", orderCtrl.DeleteOrder)
		}
	}

	return r
}
