package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/mun-hub/munhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakePromos struct {
	promos map[string]*models.PromoCode
}

func (f *fakePromos) GetPromoCode(_ context.Context, code string) (*models.PromoCode, error) {
	promo, ok := f.promos[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return promo, nil
}

func TestQuoteWithoutCode(t *testing.T) {
	c := NewCalculator(&fakePromos{})

	total, promo, err := c.Quote(context.Background(), &models.MUN{Fee: 100}, "")
	require.NoError(t, err)
	assert.Equal(t, float64(100), total)
	assert.Nil(t, promo)
}

func TestQuotePercentageDiscount(t *testing.T) {
	c := NewCalculator(&fakePromos{promos: map[string]*models.PromoCode{
		"EARLYBIRD": {Code: "EARLYBIRD", Type: models.DiscountPercentage, Discount: 20, Active: true},
	}})

	total, promo, err := c.Quote(context.Background(), &models.MUN{Fee: 100}, "EARLYBIRD")
	require.NoError(t, err)
	assert.Equal(t, float64(80), total)
	require.NotNil(t, promo)
	assert.Equal(t, "EARLYBIRD", promo.Code)
}

func TestQuoteFixedDiscountFloorsAtZero(t *testing.T) {
	c := NewCalculator(&fakePromos{promos: map[string]*models.PromoCode{
		"BIG": {Code: "BIG", Type: models.DiscountFixed, Discount: 150, Active: true},
	}})

	total, _, err := c.Quote(context.Background(), &models.MUN{Fee: 100}, "BIG")
	require.NoError(t, err)
	assert.Equal(t, float64(0), total)
}

func TestQuoteUnknownAndInactiveAreIndistinct(t *testing.T) {
	c := NewCalculator(&fakePromos{promos: map[string]*models.PromoCode{
		"EXPIRED": {Code: "EXPIRED", Type: models.DiscountPercentage, Discount: 15, Active: false},
	}})

	_, _, err := c.Quote(context.Background(), &models.MUN{Fee: 100}, "NOPE")
	assert.ErrorIs(t, err, ErrPromoInvalid)

	_, _, unknownErr := c.Quote(context.Background(), &models.MUN{Fee: 100}, "EXPIRED")
	assert.ErrorIs(t, unknownErr, ErrPromoInvalid)
	assert.Equal(t, err.Error(), unknownErr.Error())
}

func TestQuotePropagatesLookupFailure(t *testing.T) {
	c := NewCalculator(failingPromos{})

	_, _, err := c.Quote(context.Background(), &models.MUN{Fee: 100}, "ANY")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrPromoInvalid))
}

type failingPromos struct{}

func (failingPromos) GetPromoCode(context.Context, string) (*models.PromoCode, error) {
	return nil, errors.New("connection refused")
}
