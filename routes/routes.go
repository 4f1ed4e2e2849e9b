package routes

import (
	"mini-shop/controllers"
	"mini-shop/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Auth    *controllers.AuthController
	Product *controllers.ProductController
	Cart    *controllers.CartController
	Order   *controllers.OrderController
	System  *controllers.SystemController
}

func SetupRoutes(router *gin.Engine, h Handlers, auth middleware.Authenticator) {
	router.GET("/", h.System.Index)
	router.GET("/health", h.System.Health)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireAuth := middleware.AuthMiddleware(auth)
	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.GET("/profile", requireAuth, h.Auth.GetProfile)
	}

	products := api.Group("/products")
	{
		products.GET("", h.Product.GetAllProducts)
		products.GET("/:id", h.Product.GetProductByID)

		admin := products.Group("", requireAuth, middleware.AdminMiddleware())
		admin.POST("", h.Product.CreateProduct)
		admin.PUT("/:id", h.Product.UpdateProduct)
		admin.DELETE("/:id", h.Product.DeleteProduct)
	}

	cart := api.Group("/cart", requireAuth)
	{
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:id", h.Cart.UpdateItem)
		cart.DELETE("/items/:id", h.Cart.RemoveItem)
	}

	orders := api.Group("/orders", requireAuth)
	{
		orders.POST("", h.Order.CreateOrder)
		orders.GET("", h.Order.GetOrders)
		orders.GET("/:id", h.Order.GetOrderByID)
	}
}
