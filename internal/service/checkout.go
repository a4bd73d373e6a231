package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"furnistore/internal/client"
	"furnistore/internal/dto"
	"furnistore/internal/events"
	"furnistore/internal/model"
	"furnistore/internal/repository"
)

var (
	// ErrSignatureMismatch rejects unauthentic verification calls and
	// webhook deliveries. No state is mutated when it is returned.
	ErrSignatureMismatch = errors.New("signature mismatch")

	// ErrGateway wraps failures talking to the payment gateway during order
	// creation. Nothing has been persisted when it is returned.
	ErrGateway = errors.New("payment gateway error")

	// ErrAdvanceInvalid rejects a caller-supplied COD advance larger than the
	// payable total, which would leave a negative remaining amount.
	ErrAdvanceInvalid = errors.New("invalid cod advance")
)

const checkoutCurrency = "INR"

var ordersFinalizedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "orders_finalized_total",
		Help: "Orders reaching a terminal payment state",
	},
	[]string{"outcome", "path"},
)

func init() {
	prometheus.MustRegister(ordersFinalizedTotal)
}

// Gateway webhook event names this service reacts to.
const (
	eventPaymentCaptured = "payment.captured"
	eventOrderPaid       = "order.paid"
	eventPaymentFailed   = "payment.failed"
)

type CheckoutConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string

	CODThreshold float64
	CODFeeBelow  float64
	CODFeeAbove  float64
}

type CheckoutService interface {
	CreateOrder(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	VerifyPayment(ctx context.Context, req *dto.VerifyRequest) error
	HandleWebhook(ctx context.Context, body []byte, signature, eventID string) error
}

type checkoutServiceImpl struct {
	db               *gorm.DB
	gateway          client.RazorpayClient
	orderRepo        repository.OrderRepository
	productRepo      repository.ProductRepository
	webhookEventRepo repository.WebhookEventRepository
	couponService    CouponService
	publisher        events.Publisher
	cfg              CheckoutConfig
	logger           *zap.Logger
}

func NewCheckoutService(
	db *gorm.DB,
	gateway client.RazorpayClient,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	webhookEventRepo repository.WebhookEventRepository,
	couponService CouponService,
	publisher events.Publisher,
	cfg CheckoutConfig,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		db:               db,
		gateway:          gateway,
		orderRepo:        orderRepo,
		productRepo:      productRepo,
		webhookEventRepo: webhookEventRepo,
		couponService:    couponService,
		publisher:        publisher,
		cfg:              cfg,
		logger:           logger,
	}
}

func (s *checkoutServiceImpl) CreateOrder(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	method := model.PaymentMethod(req.PaymentMethod)

	subtotal := 0.0
	for _, item := range req.Items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}

	var discount float64
	var couponCode string
	if req.CouponCode != "" {
		quote, err := s.couponService.Quote(ctx, req.CouponCode, subtotal)
		if err != nil {
			return nil, err
		}
		discount = quote.Discount
		couponCode = quote.Code
	}

	totalPayable := subtotal - discount
	advance, err := s.advanceFor(method, subtotal, totalPayable, req.CodAdvance)
	if err != nil {
		return nil, err
	}
	remaining := totalPayable - advance

	orderNumber := generateOrderNumber(time.Now())
	amountPaise := toPaise(advance)

	gatewayOrder, err := s.gateway.CreateOrder(ctx, &client.CreateOrderRequest{
		AmountPaise: amountPaise,
		Currency:    checkoutCurrency,
		Receipt:     orderNumber,
		Notes: map[string]string{
			"customer":       req.Shipping.Name,
			"payment_method": string(method),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	address := req.Shipping.Address1
	if req.Shipping.Address2 != "" {
		address += ", " + req.Shipping.Address2
	}

	order := &model.Order{
		OrderNumber:     orderNumber,
		PaymentMethod:   method,
		TotalAmount:     totalPayable,
		AdvancePaid:     advance,
		RemainingAmount: remaining,
		CouponCode:      couponCode,
		Discount:        discount,
		PaymentStatus:   model.PaymentStatusPending,
		OrderStatus:     model.OrderStatusProcessing,
		GatewayOrderID:  gatewayOrder.ID,
		ShippingName:    req.Shipping.Name,
		ShippingEmail:   req.Shipping.Email,
		ShippingPhone:   req.Shipping.Phone,
		ShippingAddress: address,
		ShippingCity:    req.Shipping.City,
		ShippingState:   req.Shipping.State,
		ShippingPincode: req.Shipping.Pincode,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}

		items := make([]*model.OrderItem, len(req.Items))
		for i, line := range req.Items {
			items[i] = &model.OrderItem{
				OrderID:    order.ID,
				ProductID:  line.ProductID,
				Title:      line.Title,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				TotalPrice: line.UnitPrice * float64(line.Quantity),
			}
		}
		if err := s.orderRepo.CreateItems(ctx, tx, items); err != nil {
			return fmt.Errorf("store order items: %w", err)
		}

		return nil
	})
	if err != nil {
		// The gateway order already exists and is never compensated; it is
		// harmless unless charged, and a charge without a matching order
		// only reaches us through the webhook, which will not find it.
		s.logger.Error("order persist failed after gateway order creation",
			zap.String("gateway_order_id", gatewayOrder.ID),
			zap.String("order_number", orderNumber),
			zap.Error(err),
		)
		return nil, err
	}

	return &dto.CheckoutResponse{
		RzpOrderID:  gatewayOrder.ID,
		DBOrderID:   order.ID,
		OrderNumber: orderNumber,
		Amount:      amountPaise,
		Currency:    checkoutCurrency,
		KeyID:       s.cfg.KeyID,
	}, nil
}

// advanceFor computes what is charged through the gateway at checkout.
// Prepaid orders pay in full; COD orders pay a fixed advance, tiered on the
// subtotal, unless the caller supplied one explicitly. The advance never
// exceeds the payable total, so remaining_amount stays non-negative: a
// caller-supplied excess is rejected, a tier fee above a small payable is
// clamped.
func (s *checkoutServiceImpl) advanceFor(method model.PaymentMethod, subtotal, totalPayable, callerAdvance float64) (float64, error) {
	if method != model.PaymentMethodCOD {
		return totalPayable, nil
	}
	if callerAdvance > 0 {
		if callerAdvance > totalPayable {
			return 0, fmt.Errorf("%w: advance %.2f exceeds payable %.2f", ErrAdvanceInvalid, callerAdvance, totalPayable)
		}
		return callerAdvance, nil
	}
	fee := s.cfg.CODFeeAbove
	if subtotal < s.cfg.CODThreshold {
		fee = s.cfg.CODFeeBelow
	}
	return math.Min(fee, totalPayable), nil
}

func (s *checkoutServiceImpl) VerifyPayment(ctx context.Context, req *dto.VerifyRequest) error {
	if !client.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, s.cfg.KeySecret) {
		s.logger.Warn("payment signature mismatch",
			zap.String("gateway_order_id", req.RazorpayOrderID),
			zap.Uint("order_id", req.DBOrderID),
		)
		return ErrSignatureMismatch
	}

	return s.finalizePaid(ctx, req.DBOrderID, req.RazorpayPaymentID, "verify")
}

// finalizePaid performs the one idempotent paid transition shared by the
// verification and webhook paths: conditional status flip, one status-log
// row, and one stock decrement per stored item, all in a single transaction.
// Arriving second is a no-op.
func (s *checkoutServiceImpl) finalizePaid(ctx context.Context, orderID uint, gatewayPaymentID, path string) error {
	finalized := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.orderRepo.MarkPaid(ctx, tx, orderID, gatewayPaymentID)
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		if !ok {
			return nil
		}
		finalized = true

		if err := s.orderRepo.AppendStatusLog(ctx, tx, orderID, string(model.OrderStatusProcessing)); err != nil {
			return fmt.Errorf("append status log: %w", err)
		}

		items, err := s.orderRepo.GetItems(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("get order items: %w", err)
		}
		for _, item := range items {
			ok, err := s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock for product %d: %w", item.ProductID, err)
			}
			if !ok {
				// The customer is already charged; oversell is resolved by
				// the fulfillment team, not by failing the transition.
				s.logger.Warn("stock short on paid order",
					zap.Uint("order_id", orderID),
					zap.Uint("product_id", item.ProductID),
					zap.Int("quantity", item.Quantity),
				)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	if finalized {
		ordersFinalizedTotal.WithLabelValues(string(model.PaymentStatusPaid), path).Inc()

		order, err := s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			s.logger.Error("load order for event publish", zap.Uint("order_id", orderID), zap.Error(err))
			return nil
		}
		if err := s.publisher.Publish(ctx, events.OrderEvent{
			Type:             events.TypeOrderPaid,
			OrderID:          order.ID,
			OrderNumber:      order.OrderNumber,
			GatewayPaymentID: gatewayPaymentID,
			AmountPaid:       order.AdvancePaid,
			OccurredAt:       time.Now().UTC(),
		}); err != nil {
			s.logger.Error("publish order paid event", zap.Uint("order_id", orderID), zap.Error(err))
		}
	}

	return nil
}

// HandleWebhook is the asynchronous reconciliation backstop. Only signature
// mismatches surface as errors; everything else is logged and acknowledged so
// the gateway's retry loop is never triggered by our internal failures.
func (s *checkoutServiceImpl) HandleWebhook(ctx context.Context, body []byte, signature, eventID string) error {
	if !client.VerifyWebhookSignature(body, signature, s.cfg.WebhookSecret) {
		s.logger.Warn("webhook signature mismatch", zap.String("event_id", eventID))
		return ErrSignatureMismatch
	}

	if eventID != "" {
		seen, err := s.webhookEventRepo.Exists(ctx, eventID)
		if err != nil {
			s.logger.Error("webhook dedupe lookup failed", zap.String("event_id", eventID), zap.Error(err))
			return nil
		}
		if seen {
			s.logger.Info("duplicate webhook delivery skipped", zap.String("event_id", eventID))
			return nil
		}
	}

	var event model.RazorpayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.logger.Error("malformed webhook payload", zap.String("event_id", eventID), zap.Error(err))
		return nil
	}

	switch event.Event {
	case eventPaymentCaptured, eventOrderPaid:
		s.handlePaymentCaptured(ctx, &event)
	case eventPaymentFailed:
		s.handlePaymentFailed(ctx, &event)
	default:
		s.logger.Info("unhandled webhook event", zap.String("event", event.Event))
	}

	if eventID != "" {
		if err := s.webhookEventRepo.MarkProcessed(ctx, s.db, eventID, event.Event); err != nil {
			s.logger.Error("record webhook event", zap.String("event_id", eventID), zap.Error(err))
		}
	}

	return nil
}

func (s *checkoutServiceImpl) handlePaymentCaptured(ctx context.Context, event *model.RazorpayWebhookEvent) {
	entity := event.Payload.Payment.Entity
	gatewayOrderID := entity.OrderID
	if gatewayOrderID == "" {
		gatewayOrderID = event.Payload.Order.Entity.ID
	}
	if gatewayOrderID == "" {
		s.logger.Error("webhook event carries no gateway order id", zap.String("event", event.Event))
		return
	}

	order, err := s.orderRepo.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Not an error: the event may belong to an order outside this
			// system's visibility.
			s.logger.Info("webhook for unknown gateway order", zap.String("gateway_order_id", gatewayOrderID))
			return
		}
		s.logger.Error("webhook order lookup failed", zap.String("gateway_order_id", gatewayOrderID), zap.Error(err))
		return
	}

	if order.PaymentStatus == model.PaymentStatusPaid {
		return
	}

	if err := s.finalizePaid(ctx, order.ID, entity.ID, "webhook"); err != nil {
		s.logger.Error("webhook finalize failed", zap.Uint("order_id", order.ID), zap.Error(err))
	}
}

func (s *checkoutServiceImpl) handlePaymentFailed(ctx context.Context, event *model.RazorpayWebhookEvent) {
	entity := event.Payload.Payment.Entity
	if entity.OrderID == "" {
		s.logger.Error("payment.failed event carries no gateway order id")
		return
	}

	order, err := s.orderRepo.FindByGatewayOrderID(ctx, entity.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info("payment.failed for unknown gateway order", zap.String("gateway_order_id", entity.OrderID))
			return
		}
		s.logger.Error("webhook order lookup failed", zap.String("gateway_order_id", entity.OrderID), zap.Error(err))
		return
	}

	failed := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.orderRepo.MarkFailed(ctx, tx, order.ID, entity.ID)
		if err != nil {
			return fmt.Errorf("mark order failed: %w", err)
		}
		if !ok {
			return nil
		}
		failed = true

		return s.orderRepo.AppendStatusLog(ctx, tx, order.ID, model.StatusLogPaymentFailed)
	})
	if err != nil {
		s.logger.Error("record payment failure", zap.Uint("order_id", order.ID), zap.Error(err))
		return
	}

	if failed {
		ordersFinalizedTotal.WithLabelValues(string(model.PaymentStatusFailed), "webhook").Inc()

		if err := s.publisher.Publish(ctx, events.OrderEvent{
			Type:        events.TypeOrderPaymentFailed,
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			OccurredAt:  time.Now().UTC(),
		}); err != nil {
			s.logger.Error("publish payment failed event", zap.Uint("order_id", order.ID), zap.Error(err))
		}
	}
}

func toPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// generateOrderNumber builds a human-readable, collision-resistant order
// number. Uniqueness is also enforced by the store-level unique index.
func generateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("FRN-%s-%s", now.Format("20060102"), suffix)
}
