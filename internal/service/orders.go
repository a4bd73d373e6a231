package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"furnistore/internal/dto"
	"furnistore/internal/model"
	"furnistore/internal/repository"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidTransition rejects fulfillment updates that skip a stage or
	// move backwards.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// fulfillmentRank orders the fulfillment stages; an update is accepted only
// for the immediate successor of the current stage.
var fulfillmentRank = map[model.OrderStatus]int{
	model.OrderStatusProcessing:     0,
	model.OrderStatusConfirmed:      1,
	model.OrderStatusPacked:         2,
	model.OrderStatusShipped:        3,
	model.OrderStatusOutForDelivery: 4,
	model.OrderStatusDelivered:      5,
}

type OrderService interface {
	Track(ctx context.Context, orderNumber, phone string) (*dto.TrackResponse, error)
	ListOrders(ctx context.Context, limit, offset int) ([]*model.Order, error)
	AdvanceStatus(ctx context.Context, orderID uint, next model.OrderStatus) error
}

type orderServiceImpl struct {
	db        *gorm.DB
	orderRepo repository.OrderRepository
	logger    *zap.Logger
}

func NewOrderService(db *gorm.DB, orderRepo repository.OrderRepository, logger *zap.Logger) OrderService {
	return &orderServiceImpl{
		db:        db,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

func (s *orderServiceImpl) Track(ctx context.Context, orderNumber, phone string) (*dto.TrackResponse, error) {
	var (
		order *model.Order
		err   error
	)

	switch {
	case orderNumber != "":
		order, err = s.orderRepo.FindByNumber(ctx, orderNumber)
	case phone != "":
		order, err = s.orderRepo.FindLatestByPhone(ctx, phone)
	default:
		return nil, fmt.Errorf("%w: order number or phone required", ErrOrderNotFound)
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("look up order: %w", err)
	}

	resp := &dto.TrackResponse{
		OrderNumber:     order.OrderNumber,
		PaymentMethod:   string(order.PaymentMethod),
		PaymentStatus:   string(order.PaymentStatus),
		OrderStatus:     string(order.OrderStatus),
		TotalAmount:     order.TotalAmount,
		AdvancePaid:     order.AdvancePaid,
		RemainingAmount: order.RemainingAmount,
		PlacedAt:        order.CreatedAt,
		Items:           make([]dto.TrackItem, 0, len(order.Items)),
		Timeline:        make([]dto.TrackEvent, 0, len(order.StatusLogs)),
	}

	for _, item := range order.Items {
		resp.Items = append(resp.Items, dto.TrackItem{
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}
	for _, entry := range order.StatusLogs {
		resp.Timeline = append(resp.Timeline, dto.TrackEvent{
			Status: entry.Status,
			At:     entry.CreatedAt,
		})
	}

	return resp, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, limit, offset int) ([]*model.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return s.orderRepo.List(ctx, limit, offset)
}

func (s *orderServiceImpl) AdvanceStatus(ctx context.Context, orderID uint, next model.OrderStatus) error {
	nextRank, ok := fulfillmentRank[next]
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("look up order: %w", err)
	}

	if nextRank != fulfillmentRank[order.OrderStatus]+1 {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.OrderStatus, next)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.UpdateOrderStatus(ctx, tx, orderID, next); err != nil {
			return err
		}
		return s.orderRepo.AppendStatusLog(ctx, tx, orderID, string(next))
	})
	if err != nil {
		return fmt.Errorf("advance order status: %w", err)
	}

	s.logger.Info("order status advanced",
		zap.Uint("order_id", orderID),
		zap.String("status", string(next)),
	)

	return nil
}
