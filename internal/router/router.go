// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shopbook/shopbook-backend/internal/config"
	"github.com/shopbook/shopbook-backend/internal/handlers"
	"github.com/shopbook/shopbook-backend/internal/metrics"
	"github.com/shopbook/shopbook-backend/internal/middleware"
	"github.com/shopbook/shopbook-backend/internal/services"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

const version = "1.0.0"

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	storageService, err := services.NewStorageService(cfg.AWS)
	if err != nil {
		return nil, err
	}

	var gateway services.PaymentGateway
	if cfg.Subscription.StripeSecretKey != "" {
		gateway = services.NewStripeGateway(cfg.Subscription.StripeSecretKey)
	} else {
		logrus.Warn("STRIPE_SECRET_KEY not set, subscription purchases are disabled")
	}

	catalogService := services.NewCatalogService(db)
	saleService := services.NewSaleService(db)
	receiptService := services.NewReceiptService(db)
	expenseService := services.NewExpenseService(db)
	personService := services.NewPersonService(db)
	invoiceService := services.NewInvoiceService(db, storageService, cfg.Books)
	dashboardService := services.NewDashboardService(db, cfg.Books.LowStockThreshold)
	exportService := services.NewExportService(db, cfg.Books)
	subscriptionService := services.NewSubscriptionService(db, gateway, cfg.Subscription)

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	saleHandler := handlers.NewSaleHandler(saleService)
	receiptHandler := handlers.NewReceiptHandler(receiptService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	personHandler := handlers.NewPersonHandler(personService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	reportHandler := handlers.NewReportHandler(dashboardService, exportService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	utils.SetJWTIssuer(cfg.JWT.Issuer)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		status := "healthy"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  status,
			"version": version,
		})
	})

	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(middleware.AuthRequired())
	v1.Use(middleware.GeneralRateLimit())
	v1.Use(middleware.AuditLogMiddleware(db))

	// Subscription routes stay reachable once the days run out
	subscription := v1.Group("/subscription")
	{
		subscription.GET("", subscriptionHandler.GetStatus)
		subscription.POST("/intent", middleware.PaymentRateLimit(), subscriptionHandler.CreateIntent)
		subscription.POST("/confirm", middleware.PaymentRateLimit(), subscriptionHandler.Confirm)
	}

	books := v1.Group("")
	books.Use(middleware.SubscriptionRequired(subscriptionService))
	{
		books.GET("/catalog", catalogHandler.GetCatalog)

		products := books.Group("/products")
		{
			products.GET("", catalogHandler.GetProducts)
			products.POST("", catalogHandler.CreateProduct)
			products.GET("/:id", catalogHandler.GetProduct)
			products.PUT("/:id", catalogHandler.UpdateProduct)
			products.DELETE("/:id", catalogHandler.DeleteProduct)
		}

		categories := books.Group("/categories")
		{
			categories.GET("", catalogHandler.GetCategories)
			categories.POST("", catalogHandler.CreateCategory)
			categories.DELETE("/:id", catalogHandler.DeleteCategory)
		}

		sales := books.Group("/sales")
		{
			sales.GET("", saleHandler.GetSales)
			sales.POST("", saleHandler.RecordSales)
			sales.GET("/:id", saleHandler.GetSale)
			sales.PUT("/:id", saleHandler.UpdateSale)
			sales.DELETE("/:id", saleHandler.DeleteSale)
		}
		books.DELETE("/sale-batches/:id", saleHandler.VoidSaleBatch)

		receipts := books.Group("/receipts")
		{
			receipts.GET("", receiptHandler.GetReceipts)
			receipts.POST("", receiptHandler.RecordReceipts)
			receipts.GET("/:id", receiptHandler.GetReceipt)
			receipts.PUT("/:id", receiptHandler.UpdateReceipt)
			receipts.DELETE("/:id", receiptHandler.DeleteReceipt)
		}
		books.DELETE("/receipt-batches/:id", receiptHandler.VoidReceiptBatch)

		expenses := books.Group("/expenses")
		{
			expenses.GET("", expenseHandler.GetExpenses)
			expenses.POST("", expenseHandler.CreateExpense)
			expenses.GET("/:id", expenseHandler.GetExpense)
			expenses.PUT("/:id", expenseHandler.UpdateExpense)
			expenses.DELETE("/:id", expenseHandler.DeleteExpense)
		}

		people := books.Group("/people")
		{
			people.GET("", personHandler.GetPeople)
			people.POST("", personHandler.CreatePerson)
			people.GET("/:id", personHandler.GetPerson)
			people.PUT("/:id", personHandler.UpdatePerson)
			people.DELETE("/:id", personHandler.DeletePerson)
		}

		invoices := books.Group("/invoices")
		{
			invoices.GET("", invoiceHandler.GetInvoices)
			invoices.POST("", invoiceHandler.CreateInvoice)
			invoices.GET("/:id", invoiceHandler.GetInvoice)
			invoices.GET("/:id/html", invoiceHandler.RenderInvoice)
			invoices.DELETE("/:id", invoiceHandler.DeleteInvoice)
		}

		books.GET("/dashboard", reportHandler.GetDashboard)

		export := books.Group("/export")
		{
			export.GET("/products.xlsx", reportHandler.ExportProducts)
			export.GET("/sales.xlsx", reportHandler.ExportSales)
		}
	}

	return r, nil
}
