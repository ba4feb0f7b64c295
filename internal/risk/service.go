package risk

import (
	"context"
	"fmt"

	"lv-marginrisk/internal/audit"
	"lv-marginrisk/internal/notifier"
	"lv-marginrisk/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Service is the risk engine orchestrator. All state transitions run in
// one serializable transaction per client, under the client row lock;
// notifier events collected during a unit are published only after the
// commit succeeds.
type Service struct {
	pool   *pgxpool.Pool
	store  *Store
	audit  *audit.Service
	notify notifier.Notifier
	th     Thresholds
}

func NewService(pool *pgxpool.Pool, store *Store, auditSvc *audit.Service, notify notifier.Notifier, th Thresholds) *Service {
	return &Service{
		pool:   pool,
		store:  store,
		audit:  auditSvc,
		notify: notify,
		th:     th,
	}
}

// Overview is the read model for the client risk endpoint.
type Overview struct {
	ClientID           string           `json:"client_id"`
	ClientName         string           `json:"client_name"`
	CashBalance        decimal.Decimal  `json:"cash_balance"`
	CollateralValue    decimal.Decimal  `json:"collateral_value"`
	AllowMargin        bool             `json:"allow_margin"`
	LeverageMultiplier decimal.Decimal  `json:"leverage_multiplier"`
	MaxExposure        decimal.Decimal  `json:"max_exposure"`
	UsedExposure       decimal.Decimal  `json:"used_exposure"`
	AvailableExposure  decimal.Decimal  `json:"available_exposure"`
	LoanAmount         decimal.Decimal  `json:"loan_amount"`
	Utilization        decimal.Decimal  `json:"utilization"`
	Status             types.RiskStatus `json:"status"`
}

func (s *Service) overviewFrom(snap Snapshot) Overview {
	util := Utilization(snap)
	loanAmount := decimal.Zero
	if snap.Loan != nil {
		loanAmount = snap.Loan.LoanAmount
	}
	return Overview{
		ClientID:           snap.Client.ID,
		ClientName:         snap.Client.Name,
		CashBalance:        snap.Client.CashBalance,
		CollateralValue:    snap.Client.CollateralValue,
		AllowMargin:        snap.Profile.AllowMargin,
		LeverageMultiplier: snap.Profile.LeverageMultiplier,
		MaxExposure:        snap.Profile.MaxExposure,
		UsedExposure:       UsedExposure(snap),
		AvailableExposure:  AvailableExposure(snap),
		LoanAmount:         loanAmount,
		Utilization:        util,
		Status:             s.th.StatusFor(util),
	}
}

func (s *Service) Overview(ctx context.Context, clientID string) (Overview, error) {
	snap, err := s.store.GetSnapshot(ctx, s.pool, clientID)
	if err != nil {
		return Overview{}, err
	}
	return s.overviewFrom(snap), nil
}

// SnapshotFor loads a read-only snapshot outside any unit of work, for
// dry-run checks and read endpoints.
func (s *Service) SnapshotFor(ctx context.Context, clientID string) (Snapshot, error) {
	return s.store.GetSnapshot(ctx, s.pool, clientID)
}

// Exposure returns the client's current used exposure.
func (s *Service) Exposure(ctx context.Context, clientID string) (decimal.Decimal, error) {
	snap, err := s.store.GetSnapshot(ctx, s.pool, clientID)
	if err != nil {
		return decimal.Zero, err
	}
	return UsedExposure(snap), nil
}

// Available returns the remaining exposure budget, clamped at zero.
func (s *Service) Available(ctx context.Context, clientID string) (decimal.Decimal, error) {
	snap, err := s.store.GetSnapshot(ctx, s.pool, clientID)
	if err != nil {
		return decimal.Zero, err
	}
	return AvailableExposure(snap), nil
}

// UtilizationStatus returns the utilization percent and its risk band.
func (s *Service) UtilizationStatus(ctx context.Context, clientID string) (decimal.Decimal, types.RiskStatus, error) {
	snap, err := s.store.GetSnapshot(ctx, s.pool, clientID)
	if err != nil {
		return decimal.Zero, "", err
	}
	util := Utilization(snap)
	return util, s.th.StatusFor(util), nil
}

// LoanAmount returns the live loan balance, zero when no loan exists.
func (s *Service) LoanAmount(ctx context.Context, clientID string) (decimal.Decimal, error) {
	snap, err := s.store.GetSnapshot(ctx, s.pool, clientID)
	if err != nil {
		return decimal.Zero, err
	}
	if snap.Loan == nil {
		return decimal.Zero, nil
	}
	return snap.Loan.LoanAmount, nil
}

// EnforceTx runs the full policy pass inside the caller's transaction:
// classify utilization, flip allow_margin when the band demands it,
// liquidate on FORCE_SELL, then sync the loan. It returns the events to
// publish after commit and, when exposure still exceeds the limit after
// everything the engine can do, a breach advisory. The caller owns
// commit/rollback.
func (s *Service) EnforceTx(ctx context.Context, tx pgx.Tx, clientID string) ([]notifier.Event, *Violation, error) {
	if err := s.store.LockClient(ctx, tx, clientID); err != nil {
		return nil, nil, err
	}
	snap, err := s.store.GetSnapshot(ctx, tx, clientID)
	if err != nil {
		return nil, nil, err
	}

	var events []notifier.Event
	util := Utilization(snap)
	status := s.th.StatusFor(util)

	switch status {
	case types.RiskStatusMarginCall, types.RiskStatusForceSell:
		if snap.Profile.AllowMargin {
			evts, err := s.setAllowMarginTx(ctx, tx, &snap, false, map[string]any{
				"utilization": util.String(),
				"status":      string(status),
			})
			if err != nil {
				return nil, nil, err
			}
			events = append(events, evts...)
		}
		if status == types.RiskStatusForceSell {
			fills := PlanLiquidation(snap, s.th)
			for _, f := range fills {
				if f.Remaining.GreaterThan(decimal.Zero) {
					err = s.store.UpdatePositionQuantity(ctx, tx, f.PositionID, f.Remaining)
				} else {
					err = s.store.DeletePosition(ctx, tx, f.PositionID)
				}
				if err != nil {
					return nil, nil, err
				}
				if _, err := s.audit.Record(ctx, tx, types.EventForcedSell, &clientID, nil, map[string]any{
					"symbol":    f.Symbol,
					"quantity":  f.Quantity.String(),
					"remaining": f.Remaining.String(),
				}); err != nil {
					return nil, nil, err
				}
				events = append(events, notifier.NewEvent("forced_sell", map[string]any{
					"client_id": clientID,
					"symbol":    f.Symbol,
					"quantity":  f.Quantity.String(),
					"remaining": f.Remaining.String(),
				}))
			}
			if len(fills) > 0 {
				snap, err = s.store.GetSnapshot(ctx, tx, clientID)
				if err != nil {
					return nil, nil, err
				}
			}
		}
	default:
		if !snap.Profile.AllowMargin {
			evts, err := s.setAllowMarginTx(ctx, tx, &snap, true, map[string]any{
				"utilization": util.String(),
				"status":      string(status),
			})
			if err != nil {
				return nil, nil, err
			}
			events = append(events, evts...)
		}
	}

	loanEvents, err := s.syncLoanTx(ctx, tx, &snap)
	if err != nil {
		return nil, nil, err
	}
	events = append(events, loanEvents...)

	used := UsedExposure(snap)
	if used.GreaterThan(snap.Profile.MaxExposure) {
		return events, &Violation{
			Rule:      RuleExposureBreach,
			Message:   "exposure still exceeds the limit after enforcement",
			Required:  used,
			Available: snap.Profile.MaxExposure,
		}, nil
	}
	return events, nil, nil
}

// setAllowMarginTx flips the flag, records the audit event and updates
// the in-memory snapshot. Callers gate on the current value so an
// unchanged flag never produces an event.
func (s *Service) setAllowMarginTx(ctx context.Context, tx pgx.Tx, snap *Snapshot, allow bool, details map[string]any) ([]notifier.Event, error) {
	clientID := snap.Client.ID
	if err := s.store.SetAllowMargin(ctx, tx, clientID, allow); err != nil {
		return nil, err
	}
	eventType := types.EventMarginDisabled
	wireType := "margin_disabled"
	if allow {
		eventType = types.EventMarginEnabled
		wireType = "margin_enabled"
	}
	if _, err := s.audit.Record(ctx, tx, eventType, &clientID, nil, details); err != nil {
		return nil, err
	}
	snap.Profile.AllowMargin = allow
	data := map[string]any{"client_id": clientID}
	for k, v := range details {
		data[k] = v
	}
	return []notifier.Event{notifier.NewEvent(wireType, data)}, nil
}

// syncLoanTx reconciles the single live loan record with the required
// shortfall. Exactly one audit event per actual mutation.
func (s *Service) syncLoanTx(ctx context.Context, tx pgx.Tx, snap *Snapshot) ([]notifier.Event, error) {
	clientID := snap.Client.ID
	required := RequiredLoan(*snap)
	action := SyncLoanAction(snap.Loan, required)

	switch action.Kind {
	case LoanCreate:
		loan, err := s.store.CreateLoan(ctx, tx, clientID, action.Amount)
		if err != nil {
			return nil, err
		}
		if _, err := s.audit.Record(ctx, tx, types.EventLoanCreated, &clientID, &loan.ID, map[string]any{
			"amount": action.Amount.String(),
		}); err != nil {
			return nil, err
		}
		snap.Loan = &loan
		return []notifier.Event{notifier.NewEvent("loan_created", map[string]any{
			"client_id": clientID,
			"loan_id":   loan.ID,
			"amount":    action.Amount.String(),
		})}, nil

	case LoanUpdate:
		previous := snap.Loan.LoanAmount
		if err := s.store.UpdateLoanAmount(ctx, tx, snap.Loan.ID, action.Amount); err != nil {
			return nil, err
		}
		if _, err := s.audit.Record(ctx, tx, types.EventLoanUpdated, &clientID, &snap.Loan.ID, map[string]any{
			"previous_amount": previous.String(),
			"amount":          action.Amount.String(),
		}); err != nil {
			return nil, err
		}
		snap.Loan.LoanAmount = action.Amount
		return []notifier.Event{notifier.NewEvent("loan_updated", map[string]any{
			"client_id": clientID,
			"loan_id":   snap.Loan.ID,
			"amount":    action.Amount.String(),
		})}, nil

	case LoanClose:
		closedID := snap.Loan.ID
		closedAmount := snap.Loan.LoanAmount
		if err := s.store.DeleteLoan(ctx, tx, closedID); err != nil {
			return nil, err
		}
		if _, err := s.audit.Record(ctx, tx, types.EventLoanClosed, &clientID, &closedID, map[string]any{
			"amount": closedAmount.String(),
		}); err != nil {
			return nil, err
		}
		snap.Loan = nil
		return []notifier.Event{notifier.NewEvent("loan_closed", map[string]any{
			"client_id": clientID,
			"loan_id":   closedID,
		})}, nil
	}
	return nil, nil
}

// EnforcePostTrade runs one standalone enforcement unit for the client.
// The returned Violation is advisory: state was already corrected as far
// as the engine can and the transaction has committed.
func (s *Service) EnforcePostTrade(ctx context.Context, clientID string) (*Violation, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	events, breach, err := s.EnforceTx(ctx, tx, clientID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	s.PublishEvents(events)
	return breach, nil
}

// Recalculate recomputes max_exposure from current cash and collateral,
// then runs enforcement, all in one unit.
func (s *Service) Recalculate(ctx context.Context, clientID string) (Overview, *Violation, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return Overview{}, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.store.LockClient(ctx, tx, clientID); err != nil {
		return Overview{}, nil, err
	}
	snap, err := s.store.GetSnapshot(ctx, tx, clientID)
	if err != nil {
		return Overview{}, nil, err
	}
	maxExposure := MaxExposureFor(snap.Client.CashBalance, snap.Client.CollateralValue, snap.Profile.LeverageMultiplier)
	if !maxExposure.Equal(snap.Profile.MaxExposure) {
		if err := s.store.UpdateMaxExposure(ctx, tx, clientID, maxExposure); err != nil {
			return Overview{}, nil, err
		}
	}
	events, breach, err := s.EnforceTx(ctx, tx, clientID)
	if err != nil {
		return Overview{}, nil, err
	}
	snap, err = s.store.GetSnapshot(ctx, tx, clientID)
	if err != nil {
		return Overview{}, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Overview{}, nil, fmt.Errorf("commit: %w", err)
	}
	s.PublishEvents(events)
	return s.overviewFrom(snap), breach, nil
}

// SetAllowMargin is the manual operator override. The change is audited
// with a manual marker; setting the current value is a no-op.
func (s *Service) SetAllowMargin(ctx context.Context, clientID string, allow bool) (Overview, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return Overview{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.store.LockClient(ctx, tx, clientID); err != nil {
		return Overview{}, err
	}
	snap, err := s.store.GetSnapshot(ctx, tx, clientID)
	if err != nil {
		return Overview{}, err
	}
	var events []notifier.Event
	if snap.Profile.AllowMargin != allow {
		events, err = s.setAllowMarginTx(ctx, tx, &snap, allow, map[string]any{
			"manual":      true,
			"utilization": Utilization(snap).String(),
		})
		if err != nil {
			return Overview{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Overview{}, fmt.Errorf("commit: %w", err)
	}
	s.PublishEvents(events)
	return s.overviewFrom(snap), nil
}

// PublishEvents pushes committed events to the notifier. Best-effort.
func (s *Service) PublishEvents(events []notifier.Event) {
	for _, evt := range events {
		s.notify.Publish(evt)
	}
}
