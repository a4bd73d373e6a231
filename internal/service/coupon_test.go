package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"furnistore/internal/model"
	"furnistore/internal/repository"
)

func newCouponFixture(t *testing.T) (CouponService, func(*model.Coupon)) {
	t.Helper()

	db := newTestDB(t)
	svc := NewCouponService(repository.NewCouponRepository(db))

	seed := func(coupon *model.Coupon) {
		if err := db.Create(coupon).Error; err != nil {
			t.Fatalf("seed coupon: %v", err)
		}
	}

	return svc, seed
}

func TestCouponQuoteFlat(t *testing.T) {
	svc, seed := newCouponFixture(t)
	seed(&model.Coupon{Code: "FLAT200", Type: model.CouponTypeFlat, Value: 200, IsActive: true})

	quote, err := svc.Quote(context.Background(), "flat200", 1500)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.Discount != 200 || quote.Payable != 1300 {
		t.Errorf("quote = %+v, want discount 200 payable 1300", quote)
	}
}

func TestCouponQuotePercentCapped(t *testing.T) {
	svc, seed := newCouponFixture(t)
	seed(&model.Coupon{Code: "PCT10", Type: model.CouponTypePercent, Value: 10, MaxDiscount: 500, IsActive: true})

	quote, err := svc.Quote(context.Background(), "PCT10", 20000)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.Discount != 500 {
		t.Errorf("discount = %.2f, want capped at 500", quote.Discount)
	}
}

func TestCouponQuoteBelowMinSubtotal(t *testing.T) {
	svc, seed := newCouponFixture(t)
	seed(&model.Coupon{Code: "BIG", Type: model.CouponTypeFlat, Value: 100, MinSubtotal: 2000, IsActive: true})

	_, err := svc.Quote(context.Background(), "BIG", 1500)
	if !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("err = %v, want ErrCouponInvalid", err)
	}
}

func TestCouponQuoteExpired(t *testing.T) {
	svc, seed := newCouponFixture(t)
	past := time.Now().Add(-time.Hour)
	seed(&model.Coupon{Code: "OLD", Type: model.CouponTypeFlat, Value: 100, IsActive: true, ExpiresAt: &past})

	_, err := svc.Quote(context.Background(), "OLD", 5000)
	if !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("err = %v, want ErrCouponInvalid", err)
	}
}

func TestCouponQuoteInactiveAndUnknown(t *testing.T) {
	svc, seed := newCouponFixture(t)
	seed(&model.Coupon{Code: "OFF", Type: model.CouponTypeFlat, Value: 100, IsActive: false})

	if _, err := svc.Quote(context.Background(), "OFF", 5000); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("inactive: err = %v, want ErrCouponInvalid", err)
	}
	if _, err := svc.Quote(context.Background(), "NOPE", 5000); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("unknown: err = %v, want ErrCouponInvalid", err)
	}
}

func TestCouponDiscountNeverExceedsSubtotal(t *testing.T) {
	svc, seed := newCouponFixture(t)
	seed(&model.Coupon{Code: "HUGE", Type: model.CouponTypeFlat, Value: 10000, IsActive: true})

	quote, err := svc.Quote(context.Background(), "HUGE", 800)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.Discount != 800 || quote.Payable != 0 {
		t.Errorf("quote = %+v, want discount clamped to subtotal", quote)
	}
}
