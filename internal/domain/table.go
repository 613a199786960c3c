package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TableState string

const (
	TableAvailable TableState = "available"
	TableOccupied  TableState = "occupied"
	TableReserved  TableState = "reserved"
)

// Table is a physical floor table. ConsumptionTotal accumulates the totals of
// its non-voided orders and is reset to zero exactly on release.
type Table struct {
	ID               uint            `json:"id"`
	Number           int             `json:"number"`
	Capacity         int             `json:"capacity"`
	State            TableState      `json:"state"`
	Server           string          `json:"server,omitempty"`
	PartySize        int             `json:"party_size"`
	OccupiedSince    *time.Time      `json:"occupied_since,omitempty"`
	ReleaseReason    string          `json:"release_reason,omitempty"`
	ConsumptionTotal decimal.Decimal `json:"consumption_total"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (t *Table) IsAvailable() bool {
	return t.State == TableAvailable
}

func (t *Table) IsOccupied() bool {
	return t.State == TableOccupied
}

func (t *Table) Occupy(partySize int, server string, at time.Time) {
	t.State = TableOccupied
	t.PartySize = partySize
	t.Server = server
	t.OccupiedSince = &at
	t.ReleaseReason = ""
	t.ConsumptionTotal = decimal.Zero
}

func (t *Table) Release(reason string) {
	t.State = TableAvailable
	t.PartySize = 0
	t.Server = ""
	t.OccupiedSince = nil
	t.ReleaseReason = reason
	t.ConsumptionTotal = decimal.Zero
}

func (t *Table) Reserve() {
	t.State = TableReserved
}

type TableStats struct {
	Available int64 `json:"available"`
	Occupied  int64 `json:"occupied"`
	Reserved  int64 `json:"reserved"`
	Total     int64 `json:"total"`
}
