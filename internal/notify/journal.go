package notify

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
)

const (
	defaultJournalDir   = "./wal/notify"
	journalSegmentLimit = 1000
	journalMaxSegments  = 100
	dispatchKeyPrefix   = "notify_dispatch_"

	// DispatchSent and DispatchFailed are the two terminal dispatch states.
	DispatchSent   = "sent"
	DispatchFailed = "failed"
)

// DispatchRecord is one journaled notification attempt. The journal makes
// silent notification loss auditable: the history row is written regardless
// of delivery, so this is the only place a failed send leaves a trace.
type DispatchRecord struct {
	ReportID string    `json:"report_id"`
	Channel  string    `json:"channel"`
	Status   string    `json:"status"`
	Error    string    `json:"error,omitempty"`
	Time     time.Time `json:"time"`
}

// Journal persists dispatch records in a WAL.
type Journal struct {
	wal *gowal.Wal
	mu  sync.Mutex
}

// NewJournal opens (or creates) the dispatch journal under dir.
func NewJournal(dir string) (*Journal, error) {
	if dir == "" {
		dir = defaultJournalDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "dispatch_",
		SegmentThreshold: journalSegmentLimit,
		MaxSegments:      journalMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init notification dispatch journal")
	}

	return &Journal{wal: wal}, nil
}

// Record appends one dispatch attempt. sendErr may be nil.
func (j *Journal) Record(reportID, channel string, sendErr error) error {
	if j == nil || j.wal == nil {
		return errors.New("dispatch journal is not initialized")
	}

	record := DispatchRecord{
		ReportID: reportID,
		Channel:  channel,
		Status:   DispatchSent,
		Time:     time.Now().UTC(),
	}
	if sendErr != nil {
		record.Status = DispatchFailed
		record.Error = sendErr.Error()
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "marshal dispatch record")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	nextIndex := j.wal.CurrentIndex() + 1
	return errors.Wrap(j.wal.Write(nextIndex, dispatchKeyPrefix+channel, payload), "write dispatch record")
}

// Records returns every journaled dispatch attempt in write order.
func (j *Journal) Records() ([]DispatchRecord, error) {
	if j == nil || j.wal == nil {
		return nil, errors.New("dispatch journal is not initialized")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	var records []DispatchRecord
	for msg := range j.wal.Iterator() {
		if !strings.HasPrefix(msg.Key, dispatchKeyPrefix) {
			continue
		}
		var record DispatchRecord
		if err := json.Unmarshal(msg.Value, &record); err != nil {
			return nil, errors.Wrap(err, "decode dispatch record")
		}
		records = append(records, record)
	}

	return records, nil
}

// Close closes the underlying WAL.
func (j *Journal) Close() error {
	if j == nil || j.wal == nil {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	return j.wal.Close()
}
