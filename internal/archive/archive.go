package archive

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Archive is a local sqlite store of accepted items, written after each run
// and read by the browse and stats commands.
type Archive struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	a := &Archive{readDB: readDB, writeDB: writeDB}
	if err := a.init(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) init() error {
	_, err := a.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS items (
			id          TEXT PRIMARY KEY,
			source      TEXT NOT NULL,
			tier        TEXT NOT NULL,
			title       TEXT NOT NULL,
			url         TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			score       INTEGER NOT NULL,
			published   DATETIME NOT NULL,
			time_known  INTEGER NOT NULL DEFAULT 1,
			fetched_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_items_published ON items(published DESC);
		CREATE INDEX IF NOT EXISTS idx_items_score ON items(score DESC);
		CREATE INDEX IF NOT EXISTS idx_items_source ON items(source);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (a *Archive) Close() error {
	var errs []error
	if a.readDB != nil {
		errs = append(errs, a.readDB.Close())
	}
	if a.writeDB != nil {
		errs = append(errs, a.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// RecordID derives the primary key from the item URL, falling back to the
// title for the rare entry without one.
func RecordID(url, title string) string {
	key := url
	if key == "" {
		key = title
	}
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h[:16])
}

func (a *Archive) UpsertRecords(records []Record) error {
	tx, err := a.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO items (id, source, tier, title, url, description, score, published, time_known, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			score = excluded.score,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		timeKnown := 0
		if r.TimeKnown {
			timeKnown = 1
		}
		_, err := stmt.Exec(r.ID, r.Source, r.Tier, r.Title, r.URL, r.Description, r.Score, r.Published, timeKnown, r.FetchedAt)
		if err != nil {
			return fmt.Errorf("upserting item %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

func (a *Archive) GetRecords(opts QueryOpts) ([]Record, error) {
	var (
		where []string
		args  []interface{}
	)

	if !opts.Since.IsZero() {
		where = append(where, "published >= ?")
		args = append(args, opts.Since)
	}

	if len(opts.Sources) > 0 {
		placeholders := make([]string, len(opts.Sources))
		for i, s := range opts.Sources {
			placeholders[i] = "?"
			args = append(args, s)
		}
		where = append(where, "source IN ("+strings.Join(placeholders, ",")+")")
	}

	if opts.Search != "" {
		where = append(where, "(title LIKE ? OR description LIKE ?)")
		term := "%" + opts.Search + "%"
		args = append(args, term, term)
	}

	if opts.MinScore > 0 {
		where = append(where, "score >= ?")
		args = append(args, opts.MinScore)
	}

	query := "SELECT id, source, tier, title, url, description, score, published, time_known, fetched_at FROM items"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY score DESC, published DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := a.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var timeKnown int
		if err := rows.Scan(&r.ID, &r.Source, &r.Tier, &r.Title, &r.URL, &r.Description, &r.Score, &r.Published, &timeKnown, &r.FetchedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		r.TimeKnown = timeKnown != 0
		records = append(records, r)
	}
	return records, rows.Err()
}

// Prune deletes items older than the retention window. Returns the number of
// rows removed.
func (a *Archive) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res, err := a.writeDB.Exec("DELETE FROM items WHERE published < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning items: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns the item count and the database file size.
func (a *Archive) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := a.readDB.QueryRow("SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting items: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, fmt.Errorf("statting db: %w", err)
	}
	return count, info.Size(), nil
}

func (a *Archive) SetLastRun(t time.Time) error {
	_, err := a.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES ('last_run', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, t.Format(time.RFC3339))
	return err
}

func (a *Archive) LastRun() (time.Time, bool) {
	var value string
	if err := a.readDB.QueryRow("SELECT value FROM meta WHERE key = 'last_run'").Scan(&value); err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
