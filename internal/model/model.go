package model

import (
	"time"

	"lv-marginrisk/internal/types"

	"github.com/shopspring/decimal"
)

type Client struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	CashBalance     decimal.Decimal `json:"cash_balance"`
	CollateralValue decimal.Decimal `json:"collateral_value"`
	CreatedAt       time.Time       `json:"created_at"`
}

type Instrument struct {
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Board        types.Board     `json:"board"`
	IsMarginable bool            `json:"is_marginable"`
	MarginRate   decimal.Decimal `json:"margin_rate"`
}

type RiskProfile struct {
	ClientID           string          `json:"client_id"`
	AllowMargin        bool            `json:"allow_margin"`
	LeverageMultiplier decimal.Decimal `json:"leverage_multiplier"`
	MaxExposure        decimal.Decimal `json:"max_exposure"`
	CreatedAt          time.Time       `json:"created_at"`
}

type Position struct {
	ID           string          `json:"id"`
	ClientID     string          `json:"client_id"`
	InstrumentID string          `json:"instrument_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgPrice     decimal.Decimal `json:"avg_price"`
	CreatedAt    time.Time       `json:"created_at"`
}

type MarginLoan struct {
	ID         string          `json:"id"`
	ClientID   string          `json:"client_id"`
	LoanAmount decimal.Decimal `json:"loan_amount"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type AuditEvent struct {
	ID        string          `json:"id"`
	EventType types.EventType `json:"event_type"`
	ClientID  *string         `json:"client_id,omitempty"`
	LoanID    *string         `json:"loan_id,omitempty"`
	Details   map[string]any  `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}
