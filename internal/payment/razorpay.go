package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/go-resty/resty/v2"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

// Razorpay talks to the hosted Razorpay checkout gateway. Orders are
// created server-side ahead of the widget; completion is proven by an
// HMAC-SHA256 signature over "order_id|payment_id" keyed with the
// API secret.
type Razorpay struct {
	client *resty.Client
	keyID  string
	secret string
}

// NewRazorpay builds a production checkout provider from API credentials.
func NewRazorpay(keyID, keySecret string) *Razorpay {
	client := resty.New().
		SetBaseURL(razorpayBaseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetBasicAuth(keyID, keySecret).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)

	return &Razorpay{
		client: client,
		keyID:  keyID,
		secret: keySecret,
	}
}

func (r *Razorpay) Name() string  { return "razorpay" }
func (r *Razorpay) KeyID() string { return r.keyID }

type razorpayOrderRequest struct {
	Amount   int64  `json:"amount"` // smallest currency unit (paise)
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder registers an order with Razorpay. The rupee amount is
// converted to paise, the unit the gateway expects.
func (r *Razorpay) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("order amount must be positive, got %.2f", amount)
	}
	if currency == "" {
		currency = "INR"
	}

	var order razorpayOrderResponse
	var apiErr razorpayErrorResponse

	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(razorpayOrderRequest{
			Amount:   int64(math.Round(amount * 100)),
			Currency: currency,
			Receipt:  receipt,
		}).
		SetResult(&order).
		SetError(&apiErr).
		Post("/orders")
	if err != nil {
		return "", fmt.Errorf("create razorpay order: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error.Description != "" {
			return "", fmt.Errorf("create razorpay order: %s", apiErr.Error.Description)
		}
		return "", fmt.Errorf("create razorpay order: gateway returned %s", resp.Status())
	}
	if order.ID == "" {
		return "", fmt.Errorf("create razorpay order: gateway returned no order id")
	}
	return order.ID, nil
}

// VerifySignature checks the widget's completion triple with a
// constant-time comparison.
func (r *Razorpay) VerifySignature(orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(r.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}

func (r *Razorpay) AllowsDirectEnrollment() bool { return false }
