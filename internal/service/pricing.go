package service

import (
	"github.com/shopspring/decimal"
)

const (
	DefaultDiscountMinParticipants = 3
	moneyPlaces                    = 2
)

var DefaultDiscountRate = decimal.RequireFromString("0.10")

// PricingPolicy is the group discount rule applied to every booking.
type PricingPolicy struct {
	DiscountMinParticipants int
	DiscountRate            decimal.Decimal
}

func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		DiscountMinParticipants: DefaultDiscountMinParticipants,
		DiscountRate:            DefaultDiscountRate,
	}
}

func (p PricingPolicy) normalized() PricingPolicy {
	if p.DiscountMinParticipants <= 0 {
		p.DiscountMinParticipants = DefaultDiscountMinParticipants
	}
	if p.DiscountRate.IsNegative() || p.DiscountRate.GreaterThan(decimal.NewFromInt(1)) {
		p.DiscountRate = DefaultDiscountRate
	}
	return p
}

type Quote struct {
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Participants    int             `json:"participants"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	DiscountApplied bool            `json:"discount_applied"`
}

// Price computes subtotal = unit*n, the group discount, and total = subtotal-discount.
func (p PricingPolicy) Price(unit decimal.Decimal, participants int) Quote {
	subtotal := unit.Mul(decimal.NewFromInt(int64(participants))).Round(moneyPlaces)
	discount := decimal.Zero
	applied := participants >= p.DiscountMinParticipants && p.DiscountRate.IsPositive()
	if applied {
		discount = subtotal.Mul(p.DiscountRate).Round(moneyPlaces)
	}
	return Quote{
		UnitPrice:       unit,
		Participants:    participants,
		Subtotal:        subtotal,
		Discount:        discount,
		Total:           subtotal.Sub(discount),
		DiscountApplied: applied,
	}
}
