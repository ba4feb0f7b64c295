package risk

import (
	"testing"

	"lv-marginrisk/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSyncLoanAction(t *testing.T) {
	existing := &model.MarginLoan{ID: "l1", ClientID: "c1", LoanAmount: decimal.NewFromInt(5000)}

	t.Run("CreateWhenShortfallAndNoLoan", func(t *testing.T) {
		action := SyncLoanAction(nil, decimal.NewFromInt(6000))
		assert.Equal(t, LoanCreate, action.Kind)
		assert.Equal(t, "6000", action.Amount.String())
	})

	t.Run("UpdateWhenAmountChanged", func(t *testing.T) {
		action := SyncLoanAction(existing, decimal.NewFromInt(6000))
		assert.Equal(t, LoanUpdate, action.Kind)
		assert.Equal(t, "6000", action.Amount.String())
	})

	t.Run("NoneWhenAmountUnchanged", func(t *testing.T) {
		action := SyncLoanAction(existing, decimal.NewFromInt(5000))
		assert.Equal(t, LoanNone, action.Kind)
	})

	t.Run("CloseWhenNoShortfall", func(t *testing.T) {
		action := SyncLoanAction(existing, decimal.Zero)
		assert.Equal(t, LoanClose, action.Kind)
	})

	t.Run("NoneWhenNoShortfallAndNoLoan", func(t *testing.T) {
		action := SyncLoanAction(nil, decimal.Zero)
		assert.Equal(t, LoanNone, action.Kind)
	})
}
