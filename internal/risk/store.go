package risk

import (
	"context"
	"errors"

	"lv-marginrisk/internal/model"
	"lv-marginrisk/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrProfileNotFound = errors.New("risk profile not found")
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so snapshot
// reads work inside and outside a unit of work.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// LockClient takes the per-client row lock that serializes enforcement
// units. Distinct clients do not contend.
func (s *Store) LockClient(ctx context.Context, tx pgx.Tx, clientID string) error {
	var id string
	err := tx.QueryRow(ctx, "select id from clients where id = $1 for update", clientID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrClientNotFound
		}
		return err
	}
	return nil
}

// GetSnapshot loads everything the engine math needs in one pass:
// client, profile, positions joined with their instruments (creation
// order), and the live loan if any.
func (s *Store) GetSnapshot(ctx context.Context, q Querier, clientID string) (Snapshot, error) {
	var snap Snapshot

	err := q.QueryRow(ctx, "select id, name, email, cash_balance, collateral_value, created_at from clients where id = $1", clientID).
		Scan(&snap.Client.ID, &snap.Client.Name, &snap.Client.Email, &snap.Client.CashBalance, &snap.Client.CollateralValue, &snap.Client.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return snap, ErrClientNotFound
		}
		return snap, err
	}

	err = q.QueryRow(ctx, "select client_id, allow_margin, leverage_multiplier, max_exposure, created_at from risk_profiles where client_id = $1", clientID).
		Scan(&snap.Profile.ClientID, &snap.Profile.AllowMargin, &snap.Profile.LeverageMultiplier, &snap.Profile.MaxExposure, &snap.Profile.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return snap, ErrProfileNotFound
		}
		return snap, err
	}

	rows, err := q.Query(ctx, `select p.id, p.client_id, p.instrument_id, p.quantity, p.avg_price, p.created_at,
		i.id, i.symbol, i.name, i.board, i.is_marginable, i.margin_rate
		from positions p
		join instruments i on i.id = p.instrument_id
		where p.client_id = $1
		order by p.created_at, p.id`, clientID)
	if err != nil {
		return snap, err
	}
	defer rows.Close()
	for rows.Next() {
		var pv PositionView
		var board string
		if err := rows.Scan(&pv.Position.ID, &pv.Position.ClientID, &pv.Position.InstrumentID, &pv.Position.Quantity, &pv.Position.AvgPrice, &pv.Position.CreatedAt,
			&pv.Instrument.ID, &pv.Instrument.Symbol, &pv.Instrument.Name, &board, &pv.Instrument.IsMarginable, &pv.Instrument.MarginRate); err != nil {
			return snap, err
		}
		pv.Instrument.Board = types.Board(board)
		snap.Positions = append(snap.Positions, pv)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	var loan model.MarginLoan
	err = q.QueryRow(ctx, "select id, client_id, loan_amount, created_at, updated_at from margin_loans where client_id = $1 order by created_at desc, id desc limit 1", clientID).
		Scan(&loan.ID, &loan.ClientID, &loan.LoanAmount, &loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return snap, err
		}
	} else {
		snap.Loan = &loan
	}

	return snap, nil
}

func (s *Store) SetAllowMargin(ctx context.Context, tx pgx.Tx, clientID string, allow bool) error {
	_, err := tx.Exec(ctx, "update risk_profiles set allow_margin = $2 where client_id = $1", clientID, allow)
	return err
}

func (s *Store) UpdateMaxExposure(ctx context.Context, tx pgx.Tx, clientID string, maxExposure decimal.Decimal) error {
	_, err := tx.Exec(ctx, "update risk_profiles set max_exposure = $2 where client_id = $1", clientID, maxExposure)
	return err
}

func (s *Store) UpdatePositionQuantity(ctx context.Context, tx pgx.Tx, positionID string, quantity decimal.Decimal) error {
	_, err := tx.Exec(ctx, "update positions set quantity = $2 where id = $1", positionID, quantity)
	return err
}

func (s *Store) DeletePosition(ctx context.Context, tx pgx.Tx, positionID string) error {
	_, err := tx.Exec(ctx, "delete from positions where id = $1", positionID)
	return err
}

func (s *Store) CreateLoan(ctx context.Context, tx pgx.Tx, clientID string, amount decimal.Decimal) (model.MarginLoan, error) {
	var loan model.MarginLoan
	err := tx.QueryRow(ctx, "insert into margin_loans (client_id, loan_amount) values ($1, $2) returning id, client_id, loan_amount, created_at, updated_at", clientID, amount).
		Scan(&loan.ID, &loan.ClientID, &loan.LoanAmount, &loan.CreatedAt, &loan.UpdatedAt)
	return loan, err
}

func (s *Store) UpdateLoanAmount(ctx context.Context, tx pgx.Tx, loanID string, amount decimal.Decimal) error {
	_, err := tx.Exec(ctx, "update margin_loans set loan_amount = $2, updated_at = now() where id = $1", loanID, amount)
	return err
}

func (s *Store) DeleteLoan(ctx context.Context, tx pgx.Tx, loanID string) error {
	_, err := tx.Exec(ctx, "delete from margin_loans where id = $1", loanID)
	return err
}
