package api

import (
	"errors"
	"time"

	"pocket-ledger/docs"
	"pocket-ledger/internal/api/handlers"
	"pocket-ledger/pkg/auth"
	"pocket-ledger/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Transaction *handlers.TransactionHandler
	Recurring   *handlers.RecurringHandler
	Budget      *handlers.BudgetHandler
	Catalog     *handlers.CatalogHandler
	Receipt     *handlers.ReceiptHandler
	Savings     *handlers.SavingsHandler
	Debt        *handlers.DebtHandler
}

type RouterConfig struct {
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ScanLimiter  *middleware.RateLimiter
}

func SetupRouter(
	h Handlers,
	cfg RouterConfig,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			} else {
				appLogger.Error("Unhandled error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// importing docs registers the swagger document through its init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	transactions := protected.Group("/transactions")
	transactions.Get("", h.Transaction.ListTransactions)
	transactions.Post("", h.Transaction.CreateTransaction)
	transactions.Get("/:id", h.Transaction.GetTransaction)
	transactions.Put("/:id", h.Transaction.UpdateTransaction)
	transactions.Delete("/:id", h.Transaction.DeleteTransaction)

	recurring := protected.Group("/recurring")
	recurring.Get("", h.Recurring.ListRules)
	recurring.Post("", h.Recurring.CreateRule)
	recurring.Post("/run", h.Recurring.Run)
	recurring.Put("/:id", h.Recurring.UpdateRule)
	recurring.Delete("/:id", h.Recurring.DeleteRule)

	budgets := protected.Group("/budgets")
	budgets.Get("", h.Budget.ListBudgets)
	budgets.Post("", h.Budget.CreateBudget)
	budgets.Put("/:id", h.Budget.UpdateBudget)
	budgets.Delete("/:id", h.Budget.DeleteBudget)

	goals := protected.Group("/savings-goals")
	goals.Get("", h.Savings.ListGoals)
	goals.Post("", h.Savings.CreateGoal)
	goals.Post("/:id/contribute", h.Savings.Contribute)
	goals.Delete("/:id", h.Savings.DeleteGoal)

	debts := protected.Group("/debts")
	debts.Get("", h.Debt.ListDebts)
	debts.Post("", h.Debt.CreateDebt)
	debts.Put("/:id", h.Debt.UpdateDebt)
	debts.Delete("/:id", h.Debt.DeleteDebt)
	debts.Post("/:id/settle", h.Debt.SettleDebt)
	debts.Post("/:id/reopen", h.Debt.ReopenDebt)

	categories := protected.Group("/categories")
	categories.Get("", h.Catalog.ListCategories)
	categories.Post("", h.Catalog.CreateCategory)
	categories.Delete("/:id", h.Catalog.DeleteCategory)

	methods := protected.Group("/payment-methods")
	methods.Get("", h.Catalog.ListPaymentMethods)
	methods.Post("", h.Catalog.CreatePaymentMethod)
	methods.Delete("/:id", h.Catalog.DeletePaymentMethod)

	receipts := protected.Group("/receipts")
	receipts.Get("", h.Receipt.ListScans)
	scanHandlers := []fiber.Handler{h.Receipt.ScanReceipt}
	if cfg.ScanLimiter != nil {
		scanHandlers = append([]fiber.Handler{middleware.RateLimitMiddleware(cfg.ScanLimiter, appLogger)}, scanHandlers...)
	}
	receipts.Post("/scan", scanHandlers...)
	receipts.Post("/parse", h.Receipt.ParseReceipt)
	receipts.Post("/split", h.Receipt.SplitBill)
	receipts.Post("/:id/book", h.Receipt.BookReceipt)

	ledger := protected.Group("/ledger")
	ledger.Get("/balance", h.Transaction.GetBalance)
	ledger.Get("/export", h.Transaction.ExportLedger)
	ledger.Post("/import", h.Transaction.ImportLedger)

	return app
}
