package audit

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
)

// Log is a server event sink writing one session's events to
// <dir>/<session>.jsonl.zst and the shared index <dir>/index.db.
type Log struct {
	session string
	seq     uint64
	jsonl   *JSONLZstdWriter
	index   *SQLiteIndex
}

// LogPath is where a session's JSONL log lives.
func LogPath(dir, session string) string {
	return filepath.Join(dir, session+".jsonl.zst")
}

// IndexPath is where the index database lives.
func IndexPath(dir string) string {
	return filepath.Join(dir, "index.db")
}

// Open starts a log for session under dir.
func Open(dir, session string) (*Log, error) {
	w, err := NewJSONLZstdWriter(LogPath(dir, session))
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	idx, err := OpenSQLite(IndexPath(dir))
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("open audit index: %w", err)
	}
	log.Printf("[audit] session %s logging to %s", session, dir)
	return &Log{session: session, jsonl: w, index: idx}, nil
}

// Session returns the session id entries are stamped with.
func (l *Log) Session() string { return l.session }

// HandleEvent implements core.EventSink.
func (l *Log) HandleEvent(tick uint64, at float64, event any) {
	e, ok, err := entryFor(event)
	if err != nil {
		log.Printf("[audit] %v", err)
		return
	}
	if !ok {
		return
	}
	l.seq++
	e.Session = l.session
	e.Seq = l.seq
	e.Tick = tick
	e.At = at

	if err := l.jsonl.Write(e); err != nil {
		log.Printf("[audit] write entry %d: %v", e.Seq, err)
	}
	l.index.Write(e)
}

// Flush makes every written entry readable from the JSONL file.
func (l *Log) Flush() error {
	return l.jsonl.Flush()
}

func (l *Log) Close() error {
	if n := l.index.Dropped(); n > 0 {
		log.Printf("[audit] index dropped %d entries", n)
	}
	return errors.Join(l.jsonl.Close(), l.index.Close())
}
