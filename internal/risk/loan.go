package risk

import (
	"lv-marginrisk/internal/model"

	"github.com/shopspring/decimal"
)

type LoanActionKind string

const (
	LoanNone   LoanActionKind = "none"
	LoanCreate LoanActionKind = "create"
	LoanUpdate LoanActionKind = "update"
	LoanClose  LoanActionKind = "close"
)

type LoanAction struct {
	Kind   LoanActionKind
	Amount decimal.Decimal
}

// SyncLoanAction decides how the single live loan record must change so
// that loan_amount == max(0, used − cash). An unchanged amount produces no
// mutation and no event.
func SyncLoanAction(existing *model.MarginLoan, required decimal.Decimal) LoanAction {
	if required.GreaterThan(decimal.Zero) {
		if existing == nil {
			return LoanAction{Kind: LoanCreate, Amount: required}
		}
		if !existing.LoanAmount.Equal(required) {
			return LoanAction{Kind: LoanUpdate, Amount: required}
		}
		return LoanAction{Kind: LoanNone}
	}
	if existing != nil {
		return LoanAction{Kind: LoanClose}
	}
	return LoanAction{Kind: LoanNone}
}
