package utils

import (
	"crypto/rand"
	"fmt"
)

const orderIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateOrderRef generates a random order reference with the given prefix.
// Format: prefix-XXXXXXX (7 uppercase base36 chars)
// Example: AET-9K2M1QZ, QR-04HT7PA
func GenerateOrderRef(prefix string) (string, error) {
	b := make([]byte, 7)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = orderIDAlphabet[int(b[i])%len(orderIDAlphabet)]
	}
	return fmt.Sprintf("%s-%s", prefix, string(b)), nil
}

// GeneratePurchaseOrderRef generates a direct-purchase order id: AET-xxx
func GeneratePurchaseOrderRef() (string, error) {
	return GenerateOrderRef("AET")
}

// GenerateQuoteRef generates a quote-request id: QR-xxx
func GenerateQuoteRef() (string, error) {
	return GenerateOrderRef("QR")
}
