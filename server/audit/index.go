package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/automoto/haulers-mp/shared/netconfig"
	_ "modernc.org/sqlite"
)

// SQLiteIndex indexes entries by item. A single goroutine owns all writes
// and commits in batches.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan Entry
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Uint64
}

// OpenSQLite opens or creates the index at path.
func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init index schema: %w", err)
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan Entry, 16384),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS events (
			session TEXT NOT NULL,
			seq INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			at REAL NOT NULL,
			kind TEXT NOT NULL,
			item_id INTEGER NOT NULL,
			holder_id INTEGER NOT NULL,
			value REAL NOT NULL,
			damage REAL NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (session, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_item ON events(session, item_id, seq);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Write queues an entry. When the writer falls behind the entry is dropped;
// the JSONL log still has it.
func (s *SQLiteIndex) Write(e Entry) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- e:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns how many entries the index skipped.
func (s *SQLiteIndex) Dropped() uint64 { return s.dropped.Load() }

// Close drains the queue, commits and closes the database.
func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	var (
		tx          *sql.Tx
		insert      *sql.Stmt
		pending     int
		commitEvery = 256
		maxWait     = time.Second
		lastCommit  = time.Now()
	)

	begin := func() bool {
		if tx != nil {
			return true
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			log.Printf("[audit] begin: %v", err)
			return false
		}
		st, err := txx.Prepare(`INSERT OR REPLACE INTO events(session,seq,tick,at,kind,item_id,holder_id,value,damage,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?)`)
		if err != nil {
			log.Printf("[audit] prepare: %v", err)
			_ = txx.Rollback()
			return false
		}
		tx, insert = txx, st
		pending = 0
		return true
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = insert.Close()
		if err := tx.Commit(); err != nil {
			log.Printf("[audit] commit: %v", err)
		}
		tx, insert = nil, nil
		lastCommit = time.Now()
	}
	defer commit()

	ticker := time.NewTicker(maxWait)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-s.ch:
			if !ok {
				return
			}
			if !begin() {
				s.dropped.Add(1)
				continue
			}
			if _, err := insert.Exec(e.Session, e.Seq, e.Tick, e.At, e.Kind,
				uint32(e.ItemID), uint32(e.Holder), e.Value, e.Damage, string(e.Raw)); err != nil {
				log.Printf("[audit] insert: %v", err)
				continue
			}
			pending++
			if pending >= commitEvery {
				commit()
			}
		case <-ticker.C:
			if time.Since(lastCommit) >= maxWait {
				commit()
			}
		}
	}
}

// ItemHistory returns the indexed entries for one item in a session, in
// event order.
func (s *SQLiteIndex) ItemHistory(ctx context.Context, session string, item netconfig.ItemID) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq,tick,at,kind,holder_id,value,damage,raw_json FROM events WHERE session=? AND item_id=? ORDER BY seq`,
		session, uint32(item))
	if err != nil {
		return nil, fmt.Errorf("query item history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e := Entry{Session: session, ItemID: item}
		var holder uint32
		var raw string
		if err := rows.Scan(&e.Seq, &e.Tick, &e.At, &e.Kind, &holder, &e.Value, &e.Damage, &raw); err != nil {
			return nil, fmt.Errorf("scan item history: %w", err)
		}
		e.Holder = netconfig.HolderID(holder)
		e.Raw = []byte(raw)
		out = append(out, e)
	}
	return out, rows.Err()
}
