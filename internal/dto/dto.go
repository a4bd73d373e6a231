package dto

import "time"

type CheckoutItem struct {
	ProductID uint    `json:"id" validate:"required"`
	Title     string  `json:"title" validate:"required"`
	Quantity  int     `json:"qty" validate:"required,gt=0"`
	UnitPrice float64 `json:"price" validate:"required,gt=0"`
}

type ShippingDetails struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Address1 string `json:"address1" validate:"required"`
	Address2 string `json:"address2"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	Pincode  string `json:"pincode" validate:"required"`
}

type CheckoutRequest struct {
	Items         []*CheckoutItem `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string          `json:"paymentMethod" validate:"required,oneof=prepaid cod"`
	// CodAdvance overrides the configured tier when the caller supplies it.
	CodAdvance float64         `json:"codAdvance" validate:"gte=0"`
	CouponCode string          `json:"couponCode"`
	Shipping   ShippingDetails `json:"shipping" validate:"required"`
}

type CheckoutResponse struct {
	RzpOrderID  string `json:"rzpOrderId"`
	DBOrderID   uint   `json:"dbOrderId"`
	OrderNumber string `json:"orderNumber"`
	Amount      int64  `json:"amount"` // minor units (paise)
	Currency    string `json:"currency"`
	KeyID       string `json:"keyId"`
}

type VerifyRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId" validate:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId" validate:"required"`
	RazorpaySignature string `json:"razorpaySignature" validate:"required"`
	DBOrderID         uint   `json:"dbOrderId" validate:"required"`
}

type TrackItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"qty"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

type TrackEvent struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

type TrackResponse struct {
	OrderNumber     string       `json:"order_number"`
	PaymentMethod   string       `json:"payment_method"`
	PaymentStatus   string       `json:"payment_status"`
	OrderStatus     string       `json:"order_status"`
	TotalAmount     float64      `json:"total_amount"`
	AdvancePaid     float64      `json:"advance_paid"`
	RemainingAmount float64      `json:"remaining_amount"`
	PlacedAt        time.Time    `json:"placed_at"`
	Items           []TrackItem  `json:"items"`
	Timeline        []TrackEvent `json:"timeline"`
}

type CouponApplyRequest struct {
	Code     string  `json:"code" validate:"required"`
	Subtotal float64 `json:"subtotal" validate:"required,gt=0"`
}

type CouponQuote struct {
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`
	Payable  float64 `json:"payable"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
