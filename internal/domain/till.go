package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PayCash PaymentMethod = "cash"
	PayYape PaymentMethod = "yape"
	PayPlin PaymentMethod = "plin"
	PayCard PaymentMethod = "card"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PayCash, PayYape, PayPlin, PayCard:
		return true
	}
	return false
}

type SessionState string

const (
	SessionOpen   SessionState = "open"
	SessionClosed SessionState = "closed"
)

// CashSession is one accounting period of the register. At most one session
// is open system-wide; once closed it is immutable.
type CashSession struct {
	ID            uint             `json:"id"`
	Code          string           `json:"code"`
	State         SessionState     `json:"state"`
	OpenedBy      string           `json:"opened_by"`
	ClosedBy      string           `json:"closed_by,omitempty"`
	OpeningFloat  decimal.Decimal  `json:"opening_float"`
	SalesTotal    decimal.Decimal  `json:"sales_total"`
	CashTotal     decimal.Decimal  `json:"cash_total"`
	YapeTotal     decimal.Decimal  `json:"yape_total"`
	PlinTotal     decimal.Decimal  `json:"plin_total"`
	CardTotal     decimal.Decimal  `json:"card_total"`
	ExpensesTotal decimal.Decimal  `json:"expenses_total"`
	ClosingCount  *decimal.Decimal `json:"closing_count,omitempty"`
	Difference    *decimal.Decimal `json:"difference,omitempty"`
	OpenedAt      time.Time        `json:"opened_at"`
	ClosedAt      *time.Time       `json:"closed_at,omitempty"`
}

func (s *CashSession) IsOpen() bool {
	return s.State == SessionOpen
}

// ApplySale bumps the overall sales total and the per-method total.
func (s *CashSession) ApplySale(method PaymentMethod, amount decimal.Decimal) {
	s.SalesTotal = s.SalesTotal.Add(amount)
	switch method {
	case PayCash:
		s.CashTotal = s.CashTotal.Add(amount)
	case PayYape:
		s.YapeTotal = s.YapeTotal.Add(amount)
	case PayPlin:
		s.PlinTotal = s.PlinTotal.Add(amount)
	case PayCard:
		s.CardTotal = s.CardTotal.Add(amount)
	}
}

func (s *CashSession) ApplyExpense(amount decimal.Decimal) {
	s.ExpensesTotal = s.ExpensesTotal.Add(amount)
}

// ExpectedCash is what the drawer should physically hold:
// opening float plus cash sales minus expenses (paid from the drawer).
func (s *CashSession) ExpectedCash() decimal.Decimal {
	return s.OpeningFloat.Add(s.CashTotal).Sub(s.ExpensesTotal)
}

// Close reconciles against the physically counted amount and freezes
// the session.
func (s *CashSession) Close(counted decimal.Decimal, responsible string, at time.Time) {
	diff := counted.Sub(s.ExpectedCash())
	s.State = SessionClosed
	s.ClosingCount = &counted
	s.Difference = &diff
	s.ClosedBy = responsible
	s.ClosedAt = &at
}

type MovementKind string

const (
	MovementSale    MovementKind = "sale"
	MovementExpense MovementKind = "expense"
)

// Movement is an immutable entry in the session ledger. Expense amounts are
// stored positive; the kind keeps them apart from sales.
type Movement struct {
	ID          uint             `json:"id"`
	SessionID   uint             `json:"session_id"`
	Kind        MovementKind     `json:"kind"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Method      PaymentMethod    `json:"method,omitempty"`
	Tendered    *decimal.Decimal `json:"tendered,omitempty"`
	Change      *decimal.Decimal `json:"change,omitempty"`
	RecordedBy  string           `json:"recorded_by"`
	CreatedAt   time.Time        `json:"created_at"`
}

type TillStats struct {
	SessionOpen   bool            `json:"session_open"`
	SalesTotal    decimal.Decimal `json:"sales_total"`
	CashTotal     decimal.Decimal `json:"cash_total"`
	YapeTotal     decimal.Decimal `json:"yape_total"`
	PlinTotal     decimal.Decimal `json:"plin_total"`
	CardTotal     decimal.Decimal `json:"card_total"`
	ExpensesTotal decimal.Decimal `json:"expenses_total"`
	Movements     int64           `json:"movements"`
	TodaySales    decimal.Decimal `json:"today_sales"`
}
