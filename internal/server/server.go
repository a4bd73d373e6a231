package server

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"furnistore/internal/handler"
	"furnistore/internal/middleware"
)

type Server struct {
	echo            *echo.Echo
	checkoutHandler *handler.CheckoutHandler
	catalogHandler  *handler.CatalogHandler
	orderHandler    *handler.OrderHandler
	couponHandler   *handler.CouponHandler
	adminToken      string
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewServer(
	checkoutHandler *handler.CheckoutHandler,
	catalogHandler *handler.CatalogHandler,
	orderHandler *handler.OrderHandler,
	couponHandler *handler.CouponHandler,
	adminToken string,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.Metrics())

	s := &Server{
		echo:            e,
		checkoutHandler: checkoutHandler,
		catalogHandler:  catalogHandler,
		orderHandler:    orderHandler,
		couponHandler:   couponHandler,
		adminToken:      adminToken,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- storefront --------
	api.GET("/products", s.catalogHandler.ListProducts)
	api.GET("/products/:id", s.catalogHandler.GetProduct)
	api.POST("/coupons/apply", s.couponHandler.Apply)
	api.GET("/orders/track", s.orderHandler.Track)

	// -------- checkout --------
	checkout := api.Group("/checkout")
	checkout.POST("/order", s.checkoutHandler.CreateOrder)
	checkout.POST("/verify", s.checkoutHandler.VerifyPayment)

	// -------- gateway webhooks --------
	api.POST("/webhooks/razorpay", s.checkoutHandler.Webhook)

	// -------- admin console --------
	admin := api.Group("/admin", middleware.AdminAuth(s.adminToken))
	admin.GET("/products", s.catalogHandler.AdminListProducts)
	admin.POST("/products", s.catalogHandler.CreateProduct)
	admin.PUT("/products/:id", s.catalogHandler.UpdateProduct)
	admin.DELETE("/products/:id", s.catalogHandler.DeleteProduct)

	admin.GET("/orders", s.orderHandler.ListOrders)
	admin.PATCH("/orders/:id/status", s.orderHandler.UpdateStatus)

	admin.GET("/coupons", s.couponHandler.ListCoupons)
	admin.POST("/coupons", s.couponHandler.CreateCoupon)
	admin.PUT("/coupons/:id", s.couponHandler.UpdateCoupon)
	admin.DELETE("/coupons/:id", s.couponHandler.DeleteCoupon)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
