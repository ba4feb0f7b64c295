package audit

import (
	"context"
	"encoding/json"
	"time"

	"lv-marginrisk/internal/model"
	"lv-marginrisk/internal/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service writes the append-only audit trail. Record takes the caller's
// transaction so an event can never outlive a rolled-back state change,
// and a committed state change can never lose its event.
type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

func (s *Service) Record(ctx context.Context, tx pgx.Tx, eventType types.EventType, clientID, loanID *string, details map[string]any) (string, error) {
	if details == nil {
		details = map[string]any{}
	}
	payload, err := json.Marshal(details)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = tx.Exec(ctx, "insert into audit_events (id, event_type, client_id, loan_id, details, created_at) values ($1,$2,$3,$4,$5,$6)", id, string(eventType), clientID, loanID, payload, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) ListByClient(ctx context.Context, clientID string, limit int) ([]model.AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.pool.Query(ctx, "select id, event_type, client_id, loan_id, details, created_at from audit_events where client_id = $1 order by created_at desc, id desc limit $2", clientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.AuditEvent
	for rows.Next() {
		var e model.AuditEvent
		var eventType string
		var payload []byte
		if err := rows.Scan(&e.ID, &eventType, &e.ClientID, &e.LoanID, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.EventType = types.EventType(eventType)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.Details); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
