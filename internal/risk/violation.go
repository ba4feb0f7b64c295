package risk

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Rule identifiers carried by a Violation.
const (
	RuleMarginDisabled       = "margin_disabled"
	RuleNotMarginable        = "instrument_not_marginable"
	RuleBoardBlocked         = "board_not_eligible"
	RuleZeroRate             = "margin_rate_zero"
	RuleExposureExceeded     = "exposure_exceeded"
	RuleExposureBreach       = "exposure_breach"
	RuleInsufficientPosition = "insufficient_position"
)

// Violation is a failed hard risk rule. It is an ordinary error value the
// caller matches on; it never doubles as control flow inside the engine.
type Violation struct {
	Rule      string
	Message   string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (v *Violation) Error() string {
	if v.Rule == RuleExposureExceeded || v.Rule == RuleExposureBreach {
		return fmt.Sprintf("%s: required=%s available=%s", v.Message, v.Required.String(), v.Available.String())
	}
	return v.Message
}

func newViolation(rule, message string) *Violation {
	return &Violation{Rule: rule, Message: message}
}

// AsViolation unwraps err into a *Violation when it is one.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
