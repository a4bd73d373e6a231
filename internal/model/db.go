package model

import "time"

type PaymentMethod string

const (
	PaymentMethodCOD     PaymentMethod = "cod"
	PaymentMethodPrepaid PaymentMethod = "prepaid"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type OrderStatus string

const (
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPacked         OrderStatus = "packed"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
)

// StatusLogPaymentFailed is recorded in the status log when the gateway
// reports a failed payment. It is not an order_status value.
const StatusLogPaymentFailed = "payment_failed"

type Product struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:128;not null" json:"name"`
	Slug        string  `gorm:"size:160;uniqueIndex;not null" json:"slug"`
	Description string  `gorm:"type:text" json:"description"`
	Category    string  `gorm:"size:64;index" json:"category"`
	Price       float64 `gorm:"not null" json:"price"`
	Stock       int     `gorm:"not null" json:"stock"`
	ImageURL    string  `gorm:"size:512" json:"image_url"`
	IsActive    bool    `gorm:"index;not null" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CouponType string

const (
	CouponTypeFlat    CouponType = "flat"
	CouponTypePercent CouponType = "percent"
)

type Coupon struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Code        string     `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Type        CouponType `gorm:"size:16;not null" json:"type"`
	Value       float64    `gorm:"not null" json:"value"`
	MinSubtotal float64    `json:"min_subtotal"`
	// MaxDiscount caps percent coupons; zero means uncapped.
	MaxDiscount float64    `json:"max_discount"`
	IsActive    bool       `gorm:"index;not null" json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Order amounts are decimal rupees. AdvancePaid is what was charged through
// the gateway at checkout; for prepaid orders it equals TotalAmount and
// RemainingAmount is zero, for COD orders RemainingAmount is due at delivery.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"size:32;uniqueIndex;not null" json:"order_number"`

	PaymentMethod   PaymentMethod `gorm:"size:16;not null" json:"payment_method"`
	TotalAmount     float64       `gorm:"not null" json:"total_amount"`
	AdvancePaid     float64       `gorm:"not null" json:"advance_paid"`
	RemainingAmount float64       `gorm:"not null" json:"remaining_amount"`
	CouponCode      string        `gorm:"size:32" json:"coupon_code,omitempty"`
	Discount        float64       `json:"discount"`

	PaymentStatus PaymentStatus `gorm:"size:16;index;not null" json:"payment_status"`
	OrderStatus   OrderStatus   `gorm:"size:24;index;not null" json:"order_status"`

	// Two distinct correlation columns: the gateway's order id is assigned at
	// creation and never changes, the payment id is recorded on capture.
	// Webhook lookups key on GatewayOrderID for the order's whole life.
	GatewayOrderID   string `gorm:"size:64;index" json:"gateway_order_id"`
	GatewayPaymentID string `gorm:"size:64;index" json:"gateway_payment_id"`

	// Shipping details, write-once at creation.
	ShippingName    string `gorm:"size:128;not null" json:"shipping_name"`
	ShippingEmail   string `gorm:"size:128" json:"shipping_email"`
	ShippingPhone   string `gorm:"size:20;index;not null" json:"shipping_phone"`
	ShippingAddress string `gorm:"size:512;not null" json:"shipping_address"`
	ShippingCity    string `gorm:"size:64" json:"shipping_city"`
	ShippingState   string `gorm:"size:64" json:"shipping_state"`
	ShippingPincode string `gorm:"size:10" json:"shipping_pincode"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items      []OrderItem      `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	StatusLogs []OrderStatusLog `gorm:"foreignKey:OrderID" json:"status_logs,omitempty"`
}

// OrderItem freezes the catalog title and unit price at purchase time.
type OrderItem struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	OrderID    uint    `gorm:"index;not null" json:"order_id"`
	ProductID  uint    `gorm:"index;not null" json:"product_id"`
	Title      string  `gorm:"size:128;not null" json:"title"`
	Quantity   int     `gorm:"not null" json:"quantity"`
	UnitPrice  float64 `gorm:"not null" json:"unit_price"`
	TotalPrice float64 `gorm:"not null" json:"total_price"`

	CreatedAt time.Time `json:"created_at"`
}

// OrderStatusLog is append-only; rows are never updated or deleted.
type OrderStatusLog struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OrderID uint   `gorm:"index;not null" json:"order_id"`
	Status  string `gorm:"size:24;not null" json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

// WebhookEvent records gateway deliveries already processed, so retried
// deliveries of the same event are skipped.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
