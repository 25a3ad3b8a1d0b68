package http_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/technova/internal/checkout"
	handler "github.com/vasiliy-maslov/technova/internal/handler/http"
	"github.com/vasiliy-maslov/technova/internal/order"
)

func TestCheckoutHandler_Shipping_ValidationKeepsSession(t *testing.T) {
	mockService := new(MockCheckoutService)
	h := handler.NewCheckoutHandler(mockService)

	form := checkout.ShippingForm{Name: "Ana", Email: "not-an-email", Phone: "555", Address: "Main St 1", Terms: true}
	failed := &checkout.Session{
		Step: checkout.StepShipping,
		Form: form,
		Errors: map[string]string{
			"email":   "Please enter a valid email address",
			"privacy": "You must accept the privacy policy",
		},
	}
	mockService.On("SubmitShipping", mock.Anything, anonymous, form).Return(failed, checkout.ErrValidation).Once()

	req := httptest.NewRequest(http.MethodPost, "/checkout/shipping", jsonBody(t, form))
	rr := httptest.NewRecorder()
	newTestRouter(anonymous, h.RegisterRoutes).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var got checkout.Session
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, checkout.StepShipping, got.Step)
	assert.Equal(t, failed.Errors, got.Errors)
	mockService.AssertExpectations(t)
}

func TestCheckoutHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     any
		setup    func(m *MockCheckoutService)
		wantCode int
	}{
		{
			name: "continue_with_empty_cart",
			path: "/checkout/continue",
			setup: func(m *MockCheckoutService) {
				m.On("Continue", mock.Anything, anonymous).Return(nil, checkout.ErrEmptyCart).Once()
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "pay_before_shipping",
			path: "/checkout/payment",
			body: handler.PaymentRequest{Method: order.PaymentStripe},
			setup: func(m *MockCheckoutService) {
				m.On("Pay", mock.Anything, anonymous, order.PaymentStripe).
					Return(nil, fmt.Errorf("%w: cart -> success", checkout.ErrInvalidTransition)).Once()
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "unsupported_payment",
			path: "/checkout/payment",
			body: handler.PaymentRequest{Method: "Cash"},
			setup: func(m *MockCheckoutService) {
				m.On("Pay", mock.Anything, anonymous, order.PaymentMethod("Cash")).Return(nil, checkout.ErrInvalidPayment).Once()
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCheckoutService)
			tt.setup(mockService)
			h := handler.NewCheckoutHandler(mockService)

			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.body != nil {
				req = httptest.NewRequest(http.MethodPost, tt.path, jsonBody(t, tt.body))
			}
			rr := httptest.NewRecorder()
			newTestRouter(anonymous, h.RegisterRoutes).ServeHTTP(rr, req)

			require.Equal(t, tt.wantCode, rr.Code)
			assert.NotEmpty(t, decodeError(t, rr))
			mockService.AssertExpectations(t)
		})
	}
}

func TestCheckoutHandler_PaySuccess(t *testing.T) {
	mockService := new(MockCheckoutService)
	h := handler.NewCheckoutHandler(mockService)
	placed := &order.Order{ID: "ORD-123456", Status: order.StatusPending, PaymentMethod: order.PaymentPayPal}
	mockService.On("Pay", mock.Anything, anonymous, order.PaymentPayPal).
		Return(&checkout.Session{Step: checkout.StepSuccess, Errors: map[string]string{}, LastOrder: placed}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/checkout/payment", jsonBody(t, handler.PaymentRequest{Method: order.PaymentPayPal}))
	rr := httptest.NewRecorder()
	newTestRouter(anonymous, h.RegisterRoutes).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got checkout.Session
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, checkout.StepSuccess, got.Step)
	require.NotNil(t, got.LastOrder)
	assert.Equal(t, "ORD-123456", got.LastOrder.ID)
}
