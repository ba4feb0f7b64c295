package types

type TradeSide string

type Board string

type RiskStatus string

type EventType string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

const (
	BoardA Board = "A"
	BoardB Board = "B"
	BoardZ Board = "Z"
)

const (
	RiskStatusSafe       RiskStatus = "SAFE"
	RiskStatusWarning    RiskStatus = "WARNING"
	RiskStatusMarginCall RiskStatus = "MARGIN_CALL"
	RiskStatusForceSell  RiskStatus = "FORCE_SELL"
)

const (
	EventMarginDisabled EventType = "MarginDisabled"
	EventMarginEnabled  EventType = "MarginEnabled"
	EventLoanCreated    EventType = "LoanCreated"
	EventLoanUpdated    EventType = "LoanUpdated"
	EventLoanClosed     EventType = "LoanClosed"
	EventForcedSell     EventType = "ForcedSell"
)
