package service

import (
	"context"
	"strings"

	"github.com/Iamabhih/storefront-cart/internal/domain"
	"github.com/Iamabhih/storefront-cart/internal/events"
	"github.com/Iamabhih/storefront-cart/internal/pricing"
	"github.com/shopspring/decimal"
)

// ApplyCoupon validates a code against the external coupon service and, on
// success, records the clamped discount in the cart metadata.
//
// A second apply issued before the first resolves supersedes it: responses
// carrying a stale sequence token are discarded so a slow validation can
// never overwrite a newer coupon.
func (s *CartService) ApplyCoupon(ctx context.Context, userID, code string) (*CartView, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrValidation
	}

	dcart, container := s.loadForMutation(ctx, userID)
	subtotal := pricing.Calculate(container.Items(), container.Metadata(), s.threshold).Subtotal

	token := s.nextCouponAttempt(userID)

	result, err := s.validator.Validate(ctx, code, subtotal, userID)
	if err != nil {
		return nil, err
	}

	if !s.couponAttemptCurrent(userID, token) {
		return nil, ErrSuperseded
	}

	if !result.Valid {
		// A rejected code also clears any stale discount left behind.
		if container.RemoveCoupon() {
			if _, errPersist := s.persist(ctx, dcart, container); errPersist != nil {
				return nil, errPersist
			}
		}
		reason := result.Reason
		if reason == "" {
			reason = domain.CouponReasonNotFound
		}
		s.emitter.Emit(ctx, events.New(events.TypeCouponRejected, userID, "coupon could not be applied", map[string]any{
			"code":   code,
			"reason": reason,
		}))
		return nil, &domain.CouponRejectedError{Code: code, Reason: reason}
	}

	discount := result.Discount
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	container.ApplyCoupon(code, discount, result.MinSubtotal)

	view, err := s.persist(ctx, dcart, container)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.New(events.TypeCouponApplied, userID, "coupon applied", map[string]any{
		"code":     code,
		"discount": discount.StringFixed(2),
	}))
	return view, nil
}

// RemoveCoupon drops the active coupon; removing when none is active is a
// no-op.
func (s *CartService) RemoveCoupon(ctx context.Context, userID string) (*CartView, error) {
	dcart, container := s.loadForMutation(ctx, userID)

	if !container.RemoveCoupon() {
		return s.view(dcart), nil
	}

	view, err := s.persist(ctx, dcart, container)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.New(events.TypeCouponRemoved, userID, "coupon removed", nil))
	return view, nil
}

func (s *CartService) nextCouponAttempt(userID string) uint64 {
	s.couponMu.Lock()
	defer s.couponMu.Unlock()
	s.couponSeq[userID]++
	return s.couponSeq[userID]
}

func (s *CartService) couponAttemptCurrent(userID string, token uint64) bool {
	s.couponMu.Lock()
	defer s.couponMu.Unlock()
	return s.couponSeq[userID] == token
}
