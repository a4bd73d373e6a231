package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"furnistore/internal/dto"
	"furnistore/internal/model"
	"furnistore/internal/repository"
)

// ErrCouponInvalid covers unknown, inactive, expired and not-yet-eligible
// coupon codes. The reason is wrapped for logs; clients only see a 400.
var ErrCouponInvalid = errors.New("coupon invalid")

type CouponService interface {
	Quote(ctx context.Context, code string, subtotal float64) (*dto.CouponQuote, error)
	CreateCoupon(ctx context.Context, coupon *model.Coupon) error
	UpdateCoupon(ctx context.Context, coupon *model.Coupon) error
	DeleteCoupon(ctx context.Context, couponID uint) error
	ListCoupons(ctx context.Context) ([]*model.Coupon, error)
}

type couponServiceImpl struct {
	couponRepo repository.CouponRepository
}

func NewCouponService(couponRepo repository.CouponRepository) CouponService {
	return &couponServiceImpl{
		couponRepo: couponRepo,
	}
}

func (s *couponServiceImpl) Quote(ctx context.Context, code string, subtotal float64) (*dto.CouponQuote, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	coupon, err := s.couponRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown code %s", ErrCouponInvalid, code)
		}
		return nil, fmt.Errorf("find coupon: %w", err)
	}

	if !coupon.IsActive {
		return nil, fmt.Errorf("%w: code %s is inactive", ErrCouponInvalid, code)
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: code %s expired", ErrCouponInvalid, code)
	}
	if subtotal < coupon.MinSubtotal {
		return nil, fmt.Errorf("%w: subtotal below minimum %.2f", ErrCouponInvalid, coupon.MinSubtotal)
	}

	var discount float64
	switch coupon.Type {
	case model.CouponTypeFlat:
		discount = coupon.Value
	case model.CouponTypePercent:
		discount = subtotal * coupon.Value / 100
		if coupon.MaxDiscount > 0 && discount > coupon.MaxDiscount {
			discount = coupon.MaxDiscount
		}
	default:
		return nil, fmt.Errorf("%w: unknown coupon type %s", ErrCouponInvalid, coupon.Type)
	}

	if discount > subtotal {
		discount = subtotal
	}

	return &dto.CouponQuote{
		Code:     coupon.Code,
		Discount: discount,
		Payable:  subtotal - discount,
	}, nil
}

func (s *couponServiceImpl) CreateCoupon(ctx context.Context, coupon *model.Coupon) error {
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	return s.couponRepo.Create(ctx, coupon)
}

func (s *couponServiceImpl) UpdateCoupon(ctx context.Context, coupon *model.Coupon) error {
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	return s.couponRepo.Update(ctx, coupon)
}

func (s *couponServiceImpl) DeleteCoupon(ctx context.Context, couponID uint) error {
	return s.couponRepo.Delete(ctx, couponID)
}

func (s *couponServiceImpl) ListCoupons(ctx context.Context) ([]*model.Coupon, error) {
	return s.couponRepo.List(ctx)
}
