package utils

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultGatewayURL = "https://api.razorpay.com/v1"

	// maxGatewayResponseSize bounds gateway response bodies.
	maxGatewayResponseSize = 1 << 20 // 1MB
)

// GatewayOrder is the payment gateway's view of an order awaiting capture.
// Amount is in integer minor units (e.g. cents).
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// PaymentGateway is a Razorpay-style REST client: orders are created with
// basic auth, and capture callbacks are verified with an HMAC-SHA256
// signature over "<gatewayOrderID>|<paymentID>".
type PaymentGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

// NewPaymentGateway builds a gateway client from RAZORPAY_KEY_ID and
// RAZORPAY_KEY_SECRET. RAZORPAY_BASE_URL overrides the endpoint for testing.
func NewPaymentGateway() *PaymentGateway {
	baseURL := os.Getenv("RAZORPAY_BASE_URL")
	if baseURL == "" {
		baseURL = defaultGatewayURL
	}
	return &PaymentGateway{
		keyID:     os.Getenv("RAZORPAY_KEY_ID"),
		keySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateOrder registers an order with the gateway. Amount is in minor units
// and receipt carries the internal order id back through the callback.
func (g *PaymentGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*GatewayOrder, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode gateway order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxGatewayResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, body)
	}

	var order GatewayOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to decode gateway order: %w", err)
	}
	return &order, nil
}

// SignPayment computes the capture signature for a gateway order / payment id
// pair. Exposed for tests and webhook simulation.
func (g *PaymentGateway) SignPayment(gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the capture signature and compares it against
// the caller-supplied one in constant time.
func (g *PaymentGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	expected := g.SignPayment(gatewayOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// NewTestGateway builds a gateway with fixed credentials for tests.
func NewTestGateway(keyID, keySecret, baseURL string) *PaymentGateway {
	return &PaymentGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// MinorUnits converts a major-unit amount to integer minor units
// (price × 100, rounded).
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
