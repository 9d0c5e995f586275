package server

import (
	"context"
	"time"

	"prepkit-store/internal/handler"
	adminauth "prepkit-store/internal/middleware"
	"prepkit-store/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

type Server struct {
	echo           *echo.Echo
	paymentHandler *handler.PaymentHandler
	adminHandler   *handler.AdminHandler
	adminKey       string
}

func NewServer(paymentService service.PaymentService, adminService service.AdminService, adminKey string) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:           e,
		paymentHandler: handler.NewPaymentHandler(paymentService),
		adminHandler:   handler.NewAdminHandler(adminService),
		adminKey:       adminKey,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- checkout --------
	payment := api.Group("/payment")
	payment.POST("/create-order", s.paymentHandler.CreateOrder)
	payment.POST("/verify", s.paymentHandler.VerifyPayment)

	// -------- gateway callbacks --------
	payment.POST("/webhook", s.paymentHandler.Webhook)

	// -------- admin dashboard --------
	admin := api.Group("/admin", adminauth.AdminAuth(s.adminKey))
	admin.GET("/users", s.adminHandler.ListOrders)
	admin.DELETE("/users/:id", s.adminHandler.DeleteOrder)
	admin.GET("/analytics", s.adminHandler.Analytics)
	admin.POST("/send-email", s.adminHandler.SendEmail)
	admin.POST("/grant-access", s.adminHandler.GrantAccess)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}
