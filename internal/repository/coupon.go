package repository

import (
	"context"

	"gorm.io/gorm"

	"furnistore/internal/model"
)

type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	Update(ctx context.Context, coupon *model.Coupon) error
	Delete(ctx context.Context, couponID uint) error
	FindByCode(ctx context.Context, code string) (*model.Coupon, error)
	List(ctx context.Context) ([]*model.Coupon, error)
}

type couponRepoImpl struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepoImpl{
		db: db,
	}
}

func (r *couponRepoImpl) Create(ctx context.Context, coupon *model.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *couponRepoImpl) Update(ctx context.Context, coupon *model.Coupon) error {
	result := r.db.WithContext(ctx).Model(&model.Coupon{}).
		Where("id = ?", coupon.ID).
		Updates(map[string]interface{}{
			"code":         coupon.Code,
			"type":         coupon.Type,
			"value":        coupon.Value,
			"min_subtotal": coupon.MinSubtotal,
			"max_discount": coupon.MaxDiscount,
			"is_active":    coupon.IsActive,
			"expires_at":   coupon.ExpiresAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *couponRepoImpl) Delete(ctx context.Context, couponID uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Coupon{}, couponID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *couponRepoImpl) FindByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&coupon).Error

	if err != nil {
		return nil, err
	}

	return &coupon, nil
}

func (r *couponRepoImpl) List(ctx context.Context) ([]*model.Coupon, error) {
	var coupons []*model.Coupon
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&coupons).Error

	if err != nil {
		return nil, err
	}

	return coupons, nil
}
