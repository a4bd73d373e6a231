package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"furnistore/internal/dto"
	"furnistore/internal/service"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
	logger          *zap.Logger
}

func NewCheckoutHandler(checkoutService service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

func (h *CheckoutHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.checkoutService.CreateOrder(ctx, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponInvalid), errors.Is(err, service.ErrAdvanceInvalid):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrGateway):
			return echo.NewHTTPError(http.StatusBadGateway, "payment gateway unavailable")
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.checkoutService.VerifyPayment(ctx, &req); err != nil {
		if errors.Is(err, service.ErrSignatureMismatch) {
			return echo.NewHTTPError(http.StatusBadRequest, "payment verification failed")
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// Webhook acknowledges everything except an unauthentic signature: a non-2xx
// answer would put the gateway's retry loop against us for our own internal
// failures.
func (h *CheckoutHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	signature := c.Request().Header.Get("X-Razorpay-Signature")
	eventID := c.Request().Header.Get("X-Razorpay-Event-Id")

	if err := h.checkoutService.HandleWebhook(ctx, body, signature, eventID); err != nil {
		if errors.Is(err, service.ErrSignatureMismatch) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook signature")
		}
		h.logger.Error("webhook processing error", zap.Error(err))
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
