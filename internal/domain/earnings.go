package domain

import (
	"github.com/shopspring/decimal"
)

// PointValue is the fixed currency value of one point.
var PointValue = decimal.RequireFromString("0.5")

// ToEarnings converts a point total to a currency amount.
func ToEarnings(totalPoints int64) decimal.Decimal {
	return decimal.NewFromInt(totalPoints).Mul(PointValue)
}

// Earnings summarizes a user's points and their monetary value.
type Earnings struct {
	UserID        string          `json:"user_id"`
	TotalPoints   int64           `json:"total_points"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	Badge         Badge           `json:"badge"`
}

// NewEarnings builds the earnings summary for a user.
func NewEarnings(u *User) Earnings {
	return Earnings{
		UserID:        u.ID,
		TotalPoints:   u.PointBalance,
		TotalEarnings: ToEarnings(u.PointBalance),
		Badge:         u.Badge,
	}
}

// MonthlyEarnings is not supported: there is no period bucketing of points yet.
func MonthlyEarnings(_ *User) (decimal.Decimal, error) {
	return decimal.Zero, ErrMonthlyEarningsUnsupported
}
