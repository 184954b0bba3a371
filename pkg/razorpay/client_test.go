package razorpay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestClientCreateOrderRequest(t *testing.T) {
	const expectedURL = "http://gateway.test/v1/orders"
	respBody := `{"id":"order_abc123","amount":104900,"currency":"INR","receipt":"receipt_1","status":"created"}`

	var capturedURL string
	var capturedAuth string
	var capturedPayload map[string]any

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedAuth = req.Header.Get("Authorization")

		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		if err := json.Unmarshal(bodyBytes, &capturedPayload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}

		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("rzp_test_key", "rzp_test_secret",
		WithBaseURL("http://gateway.test"),
		WithHTTPClient(&http.Client{Transport: rt}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	order, err := client.CreateOrder(context.Background(), decimal.RequireFromString("1049.00"), "receipt_1")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if !strings.HasPrefix(capturedAuth, "Basic ") {
		t.Fatalf("expected basic auth header, got %q", capturedAuth)
	}
	if capturedPayload["amount"] != float64(104900) {
		t.Fatalf("expected amount in paise 104900, got %v", capturedPayload["amount"])
	}
	if capturedPayload["currency"] != "INR" {
		t.Fatalf("unexpected currency %v", capturedPayload["currency"])
	}
	if capturedPayload["receipt"] != "receipt_1" {
		t.Fatalf("unexpected receipt %v", capturedPayload["receipt"])
	}
	if order.ID != "order_abc123" || order.AmountPaise != 104900 {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestClientCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	client, err := NewClient("rzp_test_key", "rzp_test_secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.CreateOrder(context.Background(), decimal.Zero, ""); err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestVerifySignature(t *testing.T) {
	client, err := NewClient("rzp_test_key", "rzp_test_secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	valid := SignPayload("rzp_test_secret", "order_abc123", "pay_xyz789")
	if !client.VerifySignature("order_abc123", "pay_xyz789", valid) {
		t.Fatal("expected valid signature to verify")
	}
	if client.VerifySignature("order_abc123", "pay_xyz789", valid+"00") {
		t.Fatal("expected tampered signature to fail")
	}
	if client.VerifySignature("order_abc123", "pay_other", valid) {
		t.Fatal("expected signature for different payment to fail")
	}
}

func TestNewClientRequiresKeyPair(t *testing.T) {
	if _, err := NewClient("", "secret"); err == nil {
		t.Fatal("expected error for missing key id")
	}
	if _, err := NewClient("key", " "); err == nil {
		t.Fatal("expected error for missing key secret")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
