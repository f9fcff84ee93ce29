package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hoteldesk-backend/controllers"
	"hoteldesk-backend/middleware"
	"hoteldesk-backend/services"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Auth      *controllers.AuthController
	Bookings  *controllers.BookingController
	Invoices  *controllers.InvoiceController
	Payments  *controllers.PaymentController
	Accounts  *controllers.AccountController
	Expenses  *controllers.ExpenseController
	Inventory *controllers.InventoryController
	Rooms     *controllers.RoomController
	Settings  *controllers.SettingsController
}

// NewControllers wires every controller from the shared services.
func NewControllers(db *gorm.DB, log *zap.SugaredLogger,
	taxes *services.TaxService,
	accounts *services.AccountService,
	bookings *services.BookingService,
	invoices *services.InvoiceService,
	payments *services.PaymentService,
	expenses *services.ExpenseService,
	inventory *services.InventoryService,
) Controllers {
	return Controllers{
		Auth:      controllers.NewAuthController(db, log),
		Bookings:  controllers.NewBookingController(bookings, log),
		Invoices:  controllers.NewInvoiceController(invoices, log),
		Payments:  controllers.NewPaymentController(payments, log),
		Accounts:  controllers.NewAccountController(db, accounts, log),
		Expenses:  controllers.NewExpenseController(db, expenses, log),
		Inventory: controllers.NewInventoryController(inventory, log),
		Rooms:     controllers.NewRoomController(db, log),
		Settings:  controllers.NewSettingsController(taxes, log),
	}
}

// SetupRouter builds the gin engine with CORS, request logging, a public health
// check and login route, and the authenticated API surface.
func SetupRouter(ctrls Controllers, log *zap.SugaredLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/auth/login", ctrls.Auth.Login)

	protected := api.Group("")
	protected.Use(middleware.RequireAuth())
	{
		protected.GET("/bookings", ctrls.Bookings.List)
		protected.POST("/bookings", ctrls.Bookings.Create)
		protected.GET("/bookings/:id", ctrls.Bookings.Get)
		protected.PUT("/bookings/:id", ctrls.Bookings.Update)
		protected.DELETE("/bookings/:id", ctrls.Bookings.Delete)

		protected.GET("/invoices", ctrls.Invoices.List)
		protected.POST("/invoices", ctrls.Invoices.Create)
		protected.GET("/invoices/:id", ctrls.Invoices.Get)
		protected.DELETE("/invoices/:id", ctrls.Invoices.Delete)

		protected.GET("/payments", ctrls.Payments.List)
		protected.PUT("/payments/:id", ctrls.Payments.Update)
		protected.DELETE("/payments/:id", ctrls.Payments.Delete)

		protected.GET("/accounts", ctrls.Accounts.Get)
		protected.GET("/dead-letters", ctrls.Accounts.ListDeadLetters)

		protected.GET("/expense-types", ctrls.Expenses.ListTypes)
		protected.POST("/expense-types", ctrls.Expenses.CreateType)
		protected.PUT("/expense-types/:id", ctrls.Expenses.UpdateType)
		protected.DELETE("/expense-types/:id", ctrls.Expenses.DeleteType)

		protected.GET("/expenses", ctrls.Expenses.List)
		protected.POST("/expenses", ctrls.Expenses.Create)
		protected.POST("/expenses/:id/approve", ctrls.Expenses.Approve)

		protected.GET("/inventory/categories", ctrls.Inventory.ListCategories)
		protected.POST("/inventory/categories", ctrls.Inventory.CreateCategory)
		protected.PUT("/inventory/categories/:id", ctrls.Inventory.UpdateCategory)
		protected.DELETE("/inventory/categories/:id", ctrls.Inventory.DeleteCategory)

		protected.GET("/inventory/items", ctrls.Inventory.ListItems)
		protected.POST("/inventory/items", ctrls.Inventory.CreateItem)
		protected.PUT("/inventory/items/:id", ctrls.Inventory.UpdateItem)
		protected.DELETE("/inventory/items/:id", ctrls.Inventory.DeleteItem)

		protected.GET("/inventory/transactions", ctrls.Inventory.ListTransactions)
		protected.POST("/inventory/transactions", ctrls.Inventory.CreateTransaction)
		protected.GET("/inventory/alerts", ctrls.Inventory.ListAlerts)

		protected.GET("/room-types", ctrls.Rooms.ListRoomTypes)
		protected.POST("/room-types", ctrls.Rooms.CreateRoomType)
		protected.PUT("/room-types/:id", ctrls.Rooms.UpdateRoomType)
		protected.DELETE("/room-types/:id", ctrls.Rooms.DeleteRoomType)

		protected.GET("/rooms", ctrls.Rooms.ListRooms)
		protected.POST("/rooms", ctrls.Rooms.CreateRoom)
		protected.PUT("/rooms/:id", ctrls.Rooms.UpdateRoom)
		protected.DELETE("/rooms/:id", ctrls.Rooms.DeleteRoom)

		protected.GET("/settings/taxes", ctrls.Settings.GetTaxes)
		protected.PUT("/settings/taxes", ctrls.Settings.UpdateTaxes)
	}

	return r
}
