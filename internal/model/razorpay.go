package model

// Razorpay webhook envelope. Only the fields this service reads are mapped;
// the gateway sends considerably more.

type RazorpayPaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"` // minor units (paise)
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	Email            string `json:"email"`
	Contact          string `json:"contact"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

type RazorpayOrderEntity struct {
	ID      string `json:"id"`
	Receipt string `json:"receipt"`
	Status  string `json:"status"`
}

type RazorpayWebhookPayload struct {
	Payment struct {
		Entity RazorpayPaymentEntity `json:"entity"`
	} `json:"payment"`
	Order struct {
		Entity RazorpayOrderEntity `json:"entity"`
	} `json:"order"`
}

type RazorpayWebhookEvent struct {
	Event     string                 `json:"event"`
	CreatedAt int64                  `json:"created_at"`
	Payload   RazorpayWebhookPayload `json:"payload"`
}
