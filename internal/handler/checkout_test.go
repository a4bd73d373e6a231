package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"furnistore/internal/dto"
	"furnistore/internal/service"
)

type stubCheckoutService struct {
	createResp *dto.CheckoutResponse
	createErr  error
	verifyErr  error
	webhookErr error

	webhookBodies []string
}

func (s *stubCheckoutService) CreateOrder(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	return s.createResp, s.createErr
}

func (s *stubCheckoutService) VerifyPayment(ctx context.Context, req *dto.VerifyRequest) error {
	return s.verifyErr
}

func (s *stubCheckoutService) HandleWebhook(ctx context.Context, body []byte, signature, eventID string) error {
	s.webhookBodies = append(s.webhookBodies, string(body))
	return s.webhookErr
}

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func newCheckoutTestServer(t *testing.T, svc service.CheckoutService) *echo.Echo {
	t.Helper()

	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}

	h := NewCheckoutHandler(svc, zaptest.NewLogger(t))
	e.POST("/api/checkout/order", h.CreateOrder)
	e.POST("/api/checkout/verify", h.VerifyPayment)
	e.POST("/api/webhooks/razorpay", h.Webhook)
	return e
}

func postJSON(e *echo.Echo, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrderRejectsInvalidBody(t *testing.T) {
	e := newCheckoutTestServer(t, &stubCheckoutService{})

	// no items, no shipping details
	rec := postJSON(e, "/api/checkout/order", `{"paymentMethod":"prepaid"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreateOrderRejectsUnknownPaymentMethod(t *testing.T) {
	e := newCheckoutTestServer(t, &stubCheckoutService{})

	body := checkoutBody("barter")
	rec := postJSON(e, "/api/checkout/order", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func checkoutBody(paymentMethod string) string {
	return `{
		"items":[{"id":1,"title":"Oak Table","qty":1,"price":15000}],
		"paymentMethod":"` + paymentMethod + `",
		"shipping":{
			"name":"Asha Verma",
			"email":"asha@example.com",
			"phone":"9876543210",
			"address1":"14 Lake View Road",
			"city":"Pune",
			"state":"MH",
			"pincode":"411001"
		}
	}`
}

func TestCreateOrderGatewayDown(t *testing.T) {
	e := newCheckoutTestServer(t, &stubCheckoutService{createErr: service.ErrGateway})

	rec := postJSON(e, "/api/checkout/order", checkoutBody("prepaid"), nil)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestVerifyPaymentMismatch(t *testing.T) {
	e := newCheckoutTestServer(t, &stubCheckoutService{verifyErr: service.ErrSignatureMismatch})

	body := `{
		"razorpayOrderId":"order_1",
		"razorpayPaymentId":"pay_1",
		"razorpaySignature":"deadbeef",
		"dbOrderId":1
	}`
	rec := postJSON(e, "/api/checkout/verify", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestVerifyPaymentSuccess(t *testing.T) {
	e := newCheckoutTestServer(t, &stubCheckoutService{})

	body := `{
		"razorpayOrderId":"order_1",
		"razorpayPaymentId":"pay_1",
		"razorpaySignature":"cafe",
		"dbOrderId":1
	}`
	rec := postJSON(e, "/api/checkout/verify", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp["success"] {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestWebhookBadSignature(t *testing.T) {
	e := newCheckoutTestServer(t, &stubCheckoutService{webhookErr: service.ErrSignatureMismatch})

	rec := postJSON(e, "/api/webhooks/razorpay", `{"event":"payment.captured"}`, map[string]string{
		"X-Razorpay-Signature": "deadbeef",
		"X-Razorpay-Event-Id":  "evt_1",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestWebhookAcknowledgesInternalErrors(t *testing.T) {
	// Processing failures must not surface as non-2xx or the gateway retries
	// forever; they are logged and acknowledged.
	svc := &stubCheckoutService{webhookErr: context.DeadlineExceeded}
	e := newCheckoutTestServer(t, svc)

	rec := postJSON(e, "/api/webhooks/razorpay", `{"event":"payment.captured"}`, map[string]string{
		"X-Razorpay-Signature": "cafe",
		"X-Razorpay-Event-Id":  "evt_1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp["received"] {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestWebhookPassesRawBody(t *testing.T) {
	svc := &stubCheckoutService{}
	e := newCheckoutTestServer(t, svc)

	raw := `{"event":"payment.captured","payload":{}}`
	rec := postJSON(e, "/api/webhooks/razorpay", raw, map[string]string{
		"X-Razorpay-Signature": "cafe",
		"X-Razorpay-Event-Id":  "evt_1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(svc.webhookBodies) != 1 || svc.webhookBodies[0] != raw {
		t.Errorf("service saw body %q, want exact raw bytes", svc.webhookBodies)
	}
}
