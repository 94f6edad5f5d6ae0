// Package share encodes cart contents into opaque, URL-safe codes for
// shareable links. Codes carry item identities and quantities, never prices,
// so a stale or tampered link cannot pin an old price; the importer re-prices
// every line against the live catalog.
package share

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/Iamabhih/storefront-cart/internal/domain"
)

const (
	version = "v1"

	// Caps keep a hostile query parameter from ballooning into a huge cart.
	maxEncodedLen = 4096
	maxLines      = 100
	maxQuantity   = 10000
)

// Line is one (product, variant, quantity) tuple inside a code.
type Line struct {
	ProductID string `json:"p"`
	VariantID string `json:"v,omitempty"`
	Quantity  int    `json:"q"`
}

// Encode produces the shareable code for a ledger. Lines beyond the cap are
// dropped rather than failing the share outright.
func Encode(items []domain.CartItem) (string, error) {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		if len(lines) == maxLines {
			break
		}
		if item.ProductID == "" || item.Quantity <= 0 {
			continue
		}
		lines = append(lines, Line{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	payload, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("marshal share payload: %w", err)
	}
	return version + "." + base64.RawURLEncoding.EncodeToString(payload), nil
}

// Decode parses a shareable code back into identity lines. Any structural
// problem (wrong version, bad base64, bad JSON, absurd sizes or quantities)
// fails closed with ErrDecodeFailure and an empty result; the caller leaves
// the active cart untouched.
func Decode(code string) ([]Line, error) {
	if len(code) == 0 || len(code) > maxEncodedLen {
		return nil, domain.ErrDecodeFailure
	}

	prefix := version + "."
	if len(code) <= len(prefix) || code[:len(prefix)] != prefix {
		return nil, domain.ErrDecodeFailure
	}

	payload, err := base64.RawURLEncoding.DecodeString(code[len(prefix):])
	if err != nil {
		return nil, domain.ErrDecodeFailure
	}

	var lines []Line
	if err := json.Unmarshal(payload, &lines); err != nil {
		return nil, domain.ErrDecodeFailure
	}
	if len(lines) > maxLines {
		return nil, domain.ErrDecodeFailure
	}
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity <= 0 || l.Quantity > maxQuantity {
			return nil, domain.ErrDecodeFailure
		}
	}
	return lines, nil
}
