package instruments

import (
	"context"
	"errors"

	"lv-marginrisk/internal/model"
	"lv-marginrisk/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("instrument not found")

// Store serves instrument reference data. Instruments are immutable for
// the engine, so reads go straight to the pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetBySymbol(ctx context.Context, symbol string) (model.Instrument, error) {
	var in model.Instrument
	var board string
	err := s.pool.QueryRow(ctx, "select id, symbol, name, board, is_marginable, margin_rate from instruments where symbol = $1", symbol).Scan(&in.ID, &in.Symbol, &in.Name, &board, &in.IsMarginable, &in.MarginRate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return in, ErrNotFound
		}
		return in, err
	}
	in.Board = types.Board(board)
	return in, nil
}

func (s *Store) List(ctx context.Context) ([]model.Instrument, error) {
	rows, err := s.pool.Query(ctx, "select id, symbol, name, board, is_marginable, margin_rate from instruments order by symbol")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Instrument
	for rows.Next() {
		var in model.Instrument
		var board string
		if err := rows.Scan(&in.ID, &in.Symbol, &in.Name, &board, &in.IsMarginable, &in.MarginRate); err != nil {
			return nil, err
		}
		in.Board = types.Board(board)
		out = append(out, in)
	}
	return out, rows.Err()
}
