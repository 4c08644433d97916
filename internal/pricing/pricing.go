// Package pricing computes the registration fee after promo discounts.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/mun-hub/munhub/internal/models"
	"gorm.io/gorm"
)

// ErrPromoInvalid covers both unknown and deactivated codes; callers surface
// a single "invalid or expired" message.
var ErrPromoInvalid = errors.New("invalid or expired promo code")

type PromoGetter interface {
	GetPromoCode(ctx context.Context, code string) (*models.PromoCode, error)
}

type Calculator struct {
	promos PromoGetter
}

func NewCalculator(promos PromoGetter) *Calculator {
	return &Calculator{promos: promos}
}

// Quote returns the amount due for the event after applying the optional
// promo code. The fee never goes below zero.
func (c *Calculator) Quote(ctx context.Context, event *models.MUN, code string) (float64, *models.PromoCode, error) {
	if code == "" {
		return event.Fee, nil, nil
	}

	promo, err := c.promos.GetPromoCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, ErrPromoInvalid
		}
		return 0, nil, fmt.Errorf("looking up promo code: %w", err)
	}
	if !promo.Active {
		return 0, nil, ErrPromoInvalid
	}

	return Discounted(event.Fee, promo), promo, nil
}

func Discounted(fee float64, promo *models.PromoCode) float64 {
	var discount float64
	switch promo.Type {
	case models.DiscountPercentage:
		discount = fee * promo.Discount / 100
	case models.DiscountFixed:
		discount = promo.Discount
	}

	total := fee - discount
	if total < 0 {
		return 0
	}
	return total
}
