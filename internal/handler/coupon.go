package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"furnistore/internal/dto"
	"furnistore/internal/model"
	"furnistore/internal/service"
)

type CouponHandler struct {
	couponService service.CouponService
}

func NewCouponHandler(couponService service.CouponService) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
	}
}

func (h *CouponHandler) Apply(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CouponApplyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	quote, err := h.couponService.Quote(ctx, req.Code, req.Subtotal)
	if err != nil {
		if errors.Is(err, service.ErrCouponInvalid) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, quote)
}

// ---- admin ----

func (h *CouponHandler) ListCoupons(c echo.Context) error {
	ctx := c.Request().Context()

	coupons, err := h.couponService.ListCoupons(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, coupons)
}

func (h *CouponHandler) CreateCoupon(c echo.Context) error {
	ctx := c.Request().Context()

	var coupon model.Coupon
	if err := c.Bind(&coupon); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if coupon.Code == "" || coupon.Value <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "code and a positive value are required")
	}

	if err := h.couponService.CreateCoupon(ctx, &coupon); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, coupon)
}

func (h *CouponHandler) UpdateCoupon(c echo.Context) error {
	ctx := c.Request().Context()

	couponID, err := paramID(c)
	if err != nil {
		return err
	}

	var coupon model.Coupon
	if err := c.Bind(&coupon); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	coupon.ID = couponID

	if err := h.couponService.UpdateCoupon(ctx, &coupon); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "coupon not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, coupon)
}

func (h *CouponHandler) DeleteCoupon(c echo.Context) error {
	ctx := c.Request().Context()

	couponID, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.couponService.DeleteCoupon(ctx, couponID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "coupon not found")
		}
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
