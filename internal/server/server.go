package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"washitek/internal/auth"
	"washitek/internal/booking"
	"washitek/internal/catalog"
	"washitek/internal/config"
	"washitek/internal/credit"
	"washitek/internal/email"
	"washitek/internal/notification"
	"washitek/internal/payment"
	"washitek/internal/plan"
	"washitek/internal/user"
)

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	db         *sqlx.DB
	config     *config.Config
	email      *email.Service
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())
	router.Use(RateLimitMiddleware(50, 100))

	ledger := credit.NewLedger(db, cfg.CreditLimitPaise)
	notifier := notification.NewRepository(db)
	userRepo := user.NewRepository(db)

	bookingRepo := booking.NewRepository(db, ledger)
	bookingService := booking.NewService(bookingRepo, userRepo, ledger, notifier, emailService, cfg.RatePerKgPaise)
	planService := plan.NewService(plan.NewRepository(db), userRepo, notifier, emailService)
	gateway := payment.NewClient(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpaySecret)

	userHandler := user.NewHandler(db, cfg.JWTSecret)
	catalogHandler := catalog.NewHandler(db)
	bookingHandler := booking.NewHandler(bookingService)
	planHandler := plan.NewHandler(planService)
	paymentHandler := payment.NewHandler(gateway, cfg.RazorpaySecret, bookingService)
	notificationHandler := notification.NewHandler(notifier)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/services", catalogHandler.ListServices)
		protected.GET("/plans", planHandler.ListPlans)
		protected.POST("/plans/request", planHandler.RequestPlan)

		protected.POST("/bookings", bookingHandler.CreateBooking)
		protected.GET("/bookings", bookingHandler.ListMyBookings)
		protected.GET("/bookings/:id", bookingHandler.GetBooking)
		protected.POST("/bookings/:id/pay/cash", bookingHandler.InitiateCashPayment)
		protected.POST("/bookings/:id/pay/credit", bookingHandler.PayWithCredit)

		protected.GET("/payments", bookingHandler.ListMyPayments)
		protected.POST("/payments/create-order", paymentHandler.CreateOrder)
		protected.POST("/payments/verify", paymentHandler.VerifyPayment)

		protected.GET("/notifications", notificationHandler.ListMine)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkRead)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/services", catalogHandler.CreateService)

		admin.GET("/bookings", bookingHandler.ListBookings)
		admin.PUT("/bookings/:id/accept", bookingHandler.AcceptBooking)
		admin.PUT("/bookings/:id/reject", bookingHandler.RejectBooking)
		admin.PUT("/bookings/:id/finalize-usage", bookingHandler.FinalizeUsage)
		admin.PUT("/bookings/:id/finalize-direct", bookingHandler.FinalizeDirect)
		admin.PUT("/bookings/:id/confirm-payment", bookingHandler.ConfirmPayment)
		admin.PUT("/bookings/:id/confirm-cash", bookingHandler.ConfirmCashPayment)
		admin.PUT("/bookings/:id/confirm-credit", bookingHandler.ConfirmCreditRepayment)

		admin.GET("/plan-requests", planHandler.ListPendingRequests)
		admin.PUT("/plan-requests/:id/approve", planHandler.ApproveRequest)
		admin.PUT("/plan-requests/:id/reject", planHandler.RejectRequest)

		admin.GET("/notifications", notificationHandler.ListAdmin)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(emailService))
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
	}
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
