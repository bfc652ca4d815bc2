// Package notify delivers balance reports to operators. Transport failures
// here are reported and journaled but never undo the already-written history
// row; the ledger is the source of truth whether or not a human saw the
// message.
package notify

import (
	"context"

	"github.com/avibrazil/balancemb/internal/services/report"
)

// Notifier delivers one rendered balance report over a single channel.
type Notifier interface {
	// Name identifies the channel in logs and journal entries.
	Name() string
	Send(ctx context.Context, r report.Report) error
}
