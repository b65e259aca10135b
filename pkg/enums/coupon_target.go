package enums

import "fmt"

// CouponTarget scopes a coupon to the whole order or to specific
// products/categories via coupon_scopes join records.
type CouponTarget string

const (
	CouponTargetAll    CouponTarget = "all"
	CouponTargetSingle CouponTarget = "single"
)

var validCouponTargets = []CouponTarget{
	CouponTargetAll,
	CouponTargetSingle,
}

func (c CouponTarget) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponTarget.
func (c CouponTarget) IsValid() bool {
	for _, candidate := range validCouponTargets {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponTarget converts raw input into a CouponTarget.
func ParseCouponTarget(value string) (CouponTarget, error) {
	for _, candidate := range validCouponTargets {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon target %q", value)
}
