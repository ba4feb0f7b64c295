package clients

import (
	"context"
	"errors"
	"fmt"

	"lv-marginrisk/internal/model"
	"lv-marginrisk/internal/risk"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Service owns client provisioning and the balance mutations that feed
// the risk engine. Every mutation recomputes max_exposure and runs the
// enforcement pass before its transaction commits.
type Service struct {
	pool            *pgxpool.Pool
	riskStore       *risk.Store
	riskSvc         *risk.Service
	defaultLeverage decimal.Decimal
}

func NewService(pool *pgxpool.Pool, riskStore *risk.Store, riskSvc *risk.Service, defaultLeverage decimal.Decimal) *Service {
	return &Service{
		pool:            pool,
		riskStore:       riskStore,
		riskSvc:         riskSvc,
		defaultLeverage: defaultLeverage,
	}
}

type CreateRequest struct {
	Name            string
	Email           string
	CashBalance     decimal.Decimal
	CollateralValue decimal.Decimal
}

func (r CreateRequest) validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Email == "" {
		return errors.New("email is required")
	}
	if r.CashBalance.LessThan(decimal.Zero) {
		return errors.New("cash_balance must not be negative")
	}
	if r.CollateralValue.LessThan(decimal.Zero) {
		return errors.New("collateral_value must not be negative")
	}
	return nil
}

// Create inserts the client and its risk profile in one transaction; a
// client without a profile never exists.
func (s *Service) Create(ctx context.Context, req CreateRequest) (model.Client, model.RiskProfile, error) {
	var client model.Client
	var profile model.RiskProfile
	if err := req.validate(); err != nil {
		return client, profile, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return client, profile, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, "insert into clients (name, email, cash_balance, collateral_value) values ($1, $2, $3, $4) returning id, name, email, cash_balance, collateral_value, created_at",
		req.Name, req.Email, req.CashBalance, req.CollateralValue).
		Scan(&client.ID, &client.Name, &client.Email, &client.CashBalance, &client.CollateralValue, &client.CreatedAt)
	if err != nil {
		return client, profile, err
	}

	maxExposure := risk.MaxExposureFor(req.CashBalance, req.CollateralValue, s.defaultLeverage)
	err = tx.QueryRow(ctx, "insert into risk_profiles (client_id, allow_margin, leverage_multiplier, max_exposure) values ($1, true, $2, $3) returning client_id, allow_margin, leverage_multiplier, max_exposure, created_at",
		client.ID, s.defaultLeverage, maxExposure).
		Scan(&profile.ClientID, &profile.AllowMargin, &profile.LeverageMultiplier, &profile.MaxExposure, &profile.CreatedAt)
	if err != nil {
		return client, profile, err
	}

	if err := tx.Commit(ctx); err != nil {
		return client, profile, fmt.Errorf("commit: %w", err)
	}
	return client, profile, nil
}

// SetCash replaces the cash balance, recomputes the exposure limit and
// enforces policy, all in one unit of work.
func (s *Service) SetCash(ctx context.Context, clientID string, amount decimal.Decimal) (risk.Overview, *risk.Violation, error) {
	return s.mutateBalance(ctx, clientID, "update clients set cash_balance = $2 where id = $1", amount)
}

// SetCollateral replaces the collateral value, then recomputes and
// enforces like SetCash.
func (s *Service) SetCollateral(ctx context.Context, clientID string, amount decimal.Decimal) (risk.Overview, *risk.Violation, error) {
	return s.mutateBalance(ctx, clientID, "update clients set collateral_value = $2 where id = $1", amount)
}

func (s *Service) mutateBalance(ctx context.Context, clientID, query string, amount decimal.Decimal) (risk.Overview, *risk.Violation, error) {
	if amount.LessThan(decimal.Zero) {
		return risk.Overview{}, nil, errors.New("amount must not be negative")
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return risk.Overview{}, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.riskStore.LockClient(ctx, tx, clientID); err != nil {
		return risk.Overview{}, nil, err
	}
	if _, err := tx.Exec(ctx, query, clientID, amount); err != nil {
		return risk.Overview{}, nil, err
	}
	snap, err := s.riskStore.GetSnapshot(ctx, tx, clientID)
	if err != nil {
		return risk.Overview{}, nil, err
	}
	maxExposure := risk.MaxExposureFor(snap.Client.CashBalance, snap.Client.CollateralValue, snap.Profile.LeverageMultiplier)
	if !maxExposure.Equal(snap.Profile.MaxExposure) {
		if err := s.riskStore.UpdateMaxExposure(ctx, tx, clientID, maxExposure); err != nil {
			return risk.Overview{}, nil, err
		}
	}
	events, breach, err := s.riskSvc.EnforceTx(ctx, tx, clientID)
	if err != nil {
		return risk.Overview{}, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return risk.Overview{}, nil, fmt.Errorf("commit: %w", err)
	}
	s.riskSvc.PublishEvents(events)

	overview, err := s.riskSvc.Overview(ctx, clientID)
	if err != nil {
		return risk.Overview{}, nil, err
	}
	return overview, breach, nil
}
