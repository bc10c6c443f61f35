// Package ledger keeps a sqlite history of delivery runs. It exists for
// observability only: nothing reads it to make delivery decisions.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"uk.co.dudmesh.herald/internal/model"
)

type Ledger struct {
	db *sqlx.DB
}

func Open(dsn string) (*Ledger, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ledger := &Ledger{db}
	ledger.init()

	return ledger, nil
}

func (l *Ledger) init() {
	l.db.MustExec(`create table if not exists delivery_runs (
		run_id text primary key,
		created_at timestamp not null,
		kind text not null,
		locale text not null,
		provenance text not null,
		success integer not null,
		posted_ids text not null
	)`)
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

type deliveryRow struct {
	RunID      string    `db:"run_id"`
	CreatedAt  time.Time `db:"created_at"`
	Kind       string    `db:"kind"`
	Locale     string    `db:"locale"`
	Provenance string    `db:"provenance"`
	Success    bool      `db:"success"`
	PostedIDs  string    `db:"posted_ids"`
}

func (l *Ledger) Record(record model.DeliveryRecord) error {
	_, err := l.db.Exec(
		`insert into delivery_runs (run_id, created_at, kind, locale, provenance, success, posted_ids)
		 values (?, ?, ?, ?, ?, ?, ?)`,
		record.RunID,
		record.CreatedAt,
		string(record.Kind),
		record.Locale,
		record.Provenance.String(),
		record.Success,
		strings.Join(record.PostedIDs, ","),
	)
	if err != nil {
		return fmt.Errorf("recording delivery run: %w", err)
	}
	return nil
}

// Recent returns up to limit delivery records, newest first.
func (l *Ledger) Recent(limit int) ([]model.DeliveryRecord, error) {
	rows := []deliveryRow{}
	err := l.db.Select(&rows,
		`select run_id, created_at, kind, locale, provenance, success, posted_ids
		 from delivery_runs order by created_at desc limit ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("reading delivery runs: %w", err)
	}

	records := make([]model.DeliveryRecord, 0, len(rows))
	for _, row := range rows {
		record := model.DeliveryRecord{
			RunID:     row.RunID,
			CreatedAt: row.CreatedAt,
			Kind:      model.ContentKind(row.Kind),
			Locale:    row.Locale,
			Success:   row.Success,
		}
		if row.Provenance == model.ProvenanceFallback.String() {
			record.Provenance = model.ProvenanceFallback
		}
		if row.PostedIDs != "" {
			record.PostedIDs = strings.Split(row.PostedIDs, ",")
		}
		records = append(records, record)
	}
	return records, nil
}
