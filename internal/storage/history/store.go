// Package history persists the time series of consolidated balance totals
// as an append-only, pipe-delimited ledger on disk.
//
// Layout, one row per snapshot:
//
//	time|fund|BRL|reported
//	2024-04-28T13:22:54.107094+00:00|Mercado Bitcoin|216459.12|1
//
// Timestamps are ISO-8601 UTC instants, totals are decimal text, reported is
// a 0/1 indicator. Legacy rows may have a blank reported column, which reads
// back as 0.
package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/avibrazil/balancemb/internal/domain"
)

const delimiter = '|'

// FileStore reads and appends one ledger file. Rows are never rewritten or
// deleted; concurrent invocations are assumed serialized by the external
// scheduler, the mutex only guards in-process use.
type FileStore struct {
	path       string
	fiatSymbol string
	mu         sync.Mutex
}

// NewFileStore creates a store over path. fiatSymbol names the total column
// in the header, upper-cased (brl becomes BRL).
func NewFileStore(path, fiatSymbol string) *FileStore {
	return &FileStore{
		path:       path,
		fiatSymbol: fiatSymbol,
	}
}

// Read loads the full ledger sorted ascending by timestamp. A missing file
// is not an error: it is the expected first-run state and yields an empty
// history. A present but unparsable file is an error, because deciding
// against a silently reset baseline would fire a bogus first-run
// notification.
func (s *FileStore) Read() (domain.BalanceHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "open balance history")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parse balance history")
	}

	historyRows := make(domain.BalanceHistory, 0, len(rows))
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		snapshot, err := parseRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "balance history row %d", i+1)
		}
		historyRows = append(historyRows, snapshot)
	}

	sort.SliceStable(historyRows, func(i, j int) bool {
		return historyRows[i].Time.Before(historyRows[j].Time)
	})

	return historyRows, nil
}

// Append writes one snapshot at the end of the ledger, creating the file
// with its header first when it does not exist yet.
func (s *FileStore) Append(snapshot domain.BalanceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeHeader := false
	if info, err := os.Stat(s.path); os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		writeHeader = true
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, "open balance history for append")
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	writer.Comma = delimiter

	if writeHeader {
		header := []string{"time", "fund", strings.ToUpper(s.fiatSymbol), "reported"}
		if err := writer.Write(header); err != nil {
			return errors.Wrap(err, "write balance history header")
		}
	}

	reported := "0"
	if snapshot.Reported {
		reported = "1"
	}
	row := []string{
		snapshot.Time.UTC().Format(time.RFC3339Nano),
		snapshot.Fund,
		snapshot.Total.String(),
		reported,
	}
	if err := writer.Write(row); err != nil {
		return errors.Wrap(err, "write balance history row")
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "flush balance history")
}

func isHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(row[0], "time")
}

func parseRow(row []string) (domain.BalanceSnapshot, error) {
	if len(row) < 3 {
		return domain.BalanceSnapshot{}, fmt.Errorf("expected at least 3 columns, got %d", len(row))
	}

	ts, err := time.Parse(time.RFC3339Nano, row[0])
	if err != nil {
		return domain.BalanceSnapshot{}, errors.Wrap(err, "parse timestamp")
	}

	total, err := decimal.NewFromString(row[2])
	if err != nil {
		return domain.BalanceSnapshot{}, errors.Wrap(err, "parse total")
	}

	// Legacy rows predate the reported column; a missing or blank value
	// means the row never triggered a notification.
	reported := false
	if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
		switch strings.TrimSpace(row[3]) {
		case "1":
			reported = true
		case "0":
			reported = false
		default:
			return domain.BalanceSnapshot{}, fmt.Errorf("invalid reported flag %q", row[3])
		}
	}

	return domain.BalanceSnapshot{
		Time:     ts.UTC(),
		Fund:     row[1],
		Total:    total,
		Reported: reported,
	}, nil
}
