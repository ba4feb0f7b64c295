package trades

import (
	"context"
	"errors"
	"fmt"

	"lv-marginrisk/internal/instruments"
	"lv-marginrisk/internal/model"
	"lv-marginrisk/internal/risk"
	"lv-marginrisk/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Service applies trades as one unit of work: hard-rule check, position
// upsert, then the full post-trade enforcement pass, all in a single
// serializable transaction under the client row lock.
type Service struct {
	pool        *pgxpool.Pool
	riskStore   *risk.Store
	riskSvc     *risk.Service
	instruments *instruments.Store
}

func NewService(pool *pgxpool.Pool, riskStore *risk.Store, riskSvc *risk.Service, instrStore *instruments.Store) *Service {
	return &Service{
		pool:        pool,
		riskStore:   riskStore,
		riskSvc:     riskSvc,
		instruments: instrStore,
	}
}

type TradeRequest struct {
	ClientID string
	Symbol   string
	Side     types.TradeSide
	Quantity decimal.Decimal
	Price    decimal.Decimal
	IsMargin bool
}

func (r TradeRequest) validate() error {
	if r.ClientID == "" {
		return errors.New("client_id is required")
	}
	if r.Symbol == "" {
		return errors.New("symbol is required")
	}
	if r.Side != types.TradeSideBuy && r.Side != types.TradeSideSell {
		return errors.New("side must be buy or sell")
	}
	if !r.Quantity.GreaterThan(decimal.Zero) {
		return errors.New("quantity must be positive")
	}
	if !r.Price.GreaterThan(decimal.Zero) {
		return errors.New("price must be positive")
	}
	return nil
}

// PositionState is the post-trade position, nil'd out when the row was
// closed by the trade or a forced sell.
type PositionState struct {
	Quantity decimal.Decimal `json:"quantity"`
	AvgPrice decimal.Decimal `json:"avg_price"`
}

type TradeResult struct {
	ClientID string          `json:"client_id"`
	Symbol   string          `json:"symbol"`
	Side     types.TradeSide `json:"side"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Position *PositionState  `json:"position,omitempty"`
	Breach   *risk.Violation `json:"-"`
}

// Check is the dry-run pre-trade validation endpoint's backend. It runs
// the same hard rules Execute runs, against the current snapshot, with
// no state change.
func (s *Service) Check(ctx context.Context, req TradeRequest) error {
	if err := req.validate(); err != nil {
		return err
	}
	in, err := s.instruments.GetBySymbol(ctx, req.Symbol)
	if err != nil {
		return err
	}
	snap, err := s.riskSvc.SnapshotFor(ctx, req.ClientID)
	if err != nil {
		return err
	}
	if v := risk.CheckTrade(snap, in, req.Side, req.Quantity, req.Price, req.IsMargin); v != nil {
		return v
	}
	return nil
}

// Execute validates, books and enforces a trade. A Violation error means
// nothing was persisted. A non-nil TradeResult.Breach means the trade
// committed but exposure still exceeds the limit after enforcement.
func (s *Service) Execute(ctx context.Context, req TradeRequest) (TradeResult, error) {
	var res TradeResult
	if err := req.validate(); err != nil {
		return res, err
	}
	in, err := s.instruments.GetBySymbol(ctx, req.Symbol)
	if err != nil {
		return res, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return res, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.riskStore.LockClient(ctx, tx, req.ClientID); err != nil {
		return res, err
	}
	snap, err := s.riskStore.GetSnapshot(ctx, tx, req.ClientID)
	if err != nil {
		return res, err
	}
	if v := risk.CheckTrade(snap, in, req.Side, req.Quantity, req.Price, req.IsMargin); v != nil {
		return res, v
	}

	if err := s.applyFill(ctx, tx, snap, in, req); err != nil {
		return res, err
	}

	events, breach, err := s.riskSvc.EnforceTx(ctx, tx, req.ClientID)
	if err != nil {
		return res, err
	}

	var position *PositionState
	var p PositionState
	err = tx.QueryRow(ctx, "select quantity, avg_price from positions where client_id = $1 and instrument_id = $2", req.ClientID, in.ID).
		Scan(&p.Quantity, &p.AvgPrice)
	switch {
	case err == nil:
		position = &p
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return res, err
	}

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("commit: %w", err)
	}
	s.riskSvc.PublishEvents(events)

	return TradeResult{
		ClientID: req.ClientID,
		Symbol:   req.Symbol,
		Side:     req.Side,
		Quantity: req.Quantity,
		Price:    req.Price,
		Position: position,
		Breach:   breach,
	}, nil
}

// applyFill upserts the position row for the traded instrument. Buys
// open or grow a position with a weighted average price; sells shrink it
// without touching the average and delete the row at zero. Selling more
// than held is an inventory violation, not a risk rule.
func (s *Service) applyFill(ctx context.Context, tx pgx.Tx, snap risk.Snapshot, in model.Instrument, req TradeRequest) error {
	var held *model.Position
	for i := range snap.Positions {
		if snap.Positions[i].Position.InstrumentID == in.ID {
			held = &snap.Positions[i].Position
			break
		}
	}

	if req.Side == types.TradeSideBuy {
		if held == nil {
			_, err := tx.Exec(ctx, "insert into positions (client_id, instrument_id, quantity, avg_price) values ($1, $2, $3, $4)",
				req.ClientID, in.ID, req.Quantity, req.Price.Round(2))
			return err
		}
		newQty, newAvg := buyPosition(held.Quantity, held.AvgPrice, req.Quantity, req.Price)
		_, err := tx.Exec(ctx, "update positions set quantity = $2, avg_price = $3 where id = $1", held.ID, newQty, newAvg)
		return err
	}

	if held == nil || req.Quantity.GreaterThan(held.Quantity) {
		heldQty := decimal.Zero
		if held != nil {
			heldQty = held.Quantity
		}
		return &risk.Violation{
			Rule:      risk.RuleInsufficientPosition,
			Message:   "sell quantity exceeds held position",
			Required:  req.Quantity,
			Available: heldQty,
		}
	}
	remaining := sellPosition(held.Quantity, req.Quantity)
	if remaining.GreaterThan(decimal.Zero) {
		_, err := tx.Exec(ctx, "update positions set quantity = $2 where id = $1", held.ID, remaining)
		return err
	}
	_, err := tx.Exec(ctx, "delete from positions where id = $1", held.ID)
	return err
}
