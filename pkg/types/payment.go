package types

import "time"

// PaymentDetails is the gateway settlement record frozen onto an order once
// its payment signature has been verified.
type PaymentDetails struct {
	GatewayOrderID   string    `json:"gatewayOrderId"`
	GatewayPaymentID string    `json:"gatewayPaymentId"`
	Signature        string    `json:"signature"`
	PaidAt           time.Time `json:"paidAt"`
}
