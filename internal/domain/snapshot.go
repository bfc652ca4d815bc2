package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceSnapshot is one persisted row of the balance ledger: the
// consolidated fiat total of the account at a point in time. Reported marks
// whether this snapshot triggered an operator notification; it is set once
// at append time and never changes afterwards.
type BalanceSnapshot struct {
	Time     time.Time
	Fund     string
	Total    decimal.Decimal
	Reported bool
}

// NewBalanceSnapshot creates a snapshot stamped with the current UTC time.
func NewBalanceSnapshot(fund string, total decimal.Decimal, reported bool) BalanceSnapshot {
	return BalanceSnapshot{
		Time:     time.Now().UTC(),
		Fund:     fund,
		Total:    total,
		Reported: reported,
	}
}

// BalanceHistory is the time-ordered sequence of persisted snapshots,
// ascending by timestamp. It only grows; rows are never rewritten.
type BalanceHistory []BalanceSnapshot

// First returns the oldest snapshot. ok is false on an empty history.
func (h BalanceHistory) First() (BalanceSnapshot, bool) {
	if len(h) == 0 {
		return BalanceSnapshot{}, false
	}
	return h[0], true
}

// Last returns the most recent snapshot. ok is false on an empty history.
func (h BalanceHistory) Last() (BalanceSnapshot, bool) {
	if len(h) == 0 {
		return BalanceSnapshot{}, false
	}
	return h[len(h)-1], true
}

// LastReported returns the most recent snapshot that triggered a
// notification. ok is false when no snapshot was ever reported; callers must
// treat that as "no prior baseline" and skip any arithmetic against it.
func (h BalanceHistory) LastReported() (BalanceSnapshot, bool) {
	for i := len(h) - 1; i >= 0; i-- {
		if h[i].Reported {
			return h[i], true
		}
	}
	return BalanceSnapshot{}, false
}
