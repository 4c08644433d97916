package models

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type PromoCode struct {
	Code     string `gorm:"primaryKey"`
	Type     DiscountType
	Discount float64
	Active   bool

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
