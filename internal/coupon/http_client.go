package coupon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

// HTTPValidator calls the coupon service over HTTP, behind a circuit breaker
// so a struggling coupon service cannot pile up requests from every cart
// mutation in the store.
type HTTPValidator struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Result]
}

func NewHTTPValidator(baseURL string, timeout time.Duration) *HTTPValidator {
	settings := gobreaker.Settings{
		Name:    "coupon-service",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &HTTPValidator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[*Result](settings),
	}
}

type validateRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
	UserID   string          `json:"user_id"`
}

func (v *HTTPValidator) Validate(ctx context.Context, code string, subtotal decimal.Decimal, userID string) (*Result, error) {
	return v.breaker.Execute(func() (*Result, error) {
		body, err := json.Marshal(validateRequest{Code: code, Subtotal: subtotal, UserID: userID})
		if err != nil {
			return nil, fmt.Errorf("marshal validate request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/api/v1/coupons/validate", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build validate request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := v.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("coupon service request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("coupon service returned status %d", resp.StatusCode)
		}

		var result Result
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("decode validate response: %w", err)
		}
		return &result, nil
	})
}
