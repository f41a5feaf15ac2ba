package core

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/quasilyte/gdata"
)

// Record is the best result seen for one level.
type Record struct {
	Level            string  `json:"level"`
	DeliverableValue float64 `json:"deliverableValue"`
	TotalValue       float64 `json:"totalValue"`
	Resets           int     `json:"resets"`
}

// recordStore is the subset of *gdata.Manager records need.
type recordStore interface {
	LoadItem(key string) ([]byte, error)
	SaveItem(key string, data []byte) error
}

// Records keeps the best session per level.
type Records struct {
	store recordStore
}

// OpenRecords opens the gdata store for appName.
func OpenRecords(appName string) (*Records, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}
	return &Records{store: m}, nil
}

func recordKey(level string) string {
	return "best_" + level
}

// Best returns the stored record for a level, or nil when there is none.
func (r *Records) Best(level string) (*Record, error) {
	data, err := r.store.LoadItem(recordKey(level))
	if err != nil {
		return nil, fmt.Errorf("load record %s: %w", level, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", level, err)
	}
	return &rec, nil
}

// Submit stores rec when it beats the current best deliverable value. It
// reports whether rec became the new best.
func (r *Records) Submit(rec Record) (bool, error) {
	best, err := r.Best(rec.Level)
	if err != nil {
		log.Printf("[server] ignoring unreadable record: %v", err)
	}
	if best != nil && best.DeliverableValue >= rec.DeliverableValue {
		return false, nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("serialize record: %w", err)
	}
	if err := r.store.SaveItem(recordKey(rec.Level), data); err != nil {
		return false, fmt.Errorf("save record %s: %w", rec.Level, err)
	}
	return true, nil
}
