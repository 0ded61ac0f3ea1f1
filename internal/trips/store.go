package trips

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ziadkadry99/timemachine/internal/db"
)

// Store provides persistence for trip entries.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Log inserts a new entry. Empty ID and zero Timestamp are filled in.
func (s *Store) Log(ctx context.Context, entry Entry) (*Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.Timestamp = entry.Timestamp.UTC().Truncate(time.Second)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trips (id, timestamp, visitor_id, host, root_domain, year, archive_url, cause)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.Format(time.DateTime),
		entry.VisitorID,
		entry.Host,
		entry.RootDomain,
		entry.Year,
		entry.ArchiveURL,
		string(entry.Cause),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting trip: %w", err)
	}
	return &entry, nil
}

// GetByID retrieves a single entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, visitor_id, host, root_domain, year, archive_url, cause
		FROM trips WHERE id = ?`, id)
	return scanInto(row)
}

// Filter controls which entries Query returns.
type Filter struct {
	VisitorID  string
	Host       string
	RootDomain string
	Year       int
	Since      *time.Time
	Limit      int
	Offset     int
}

// Query returns entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.VisitorID != "" {
		clauses = append(clauses, "visitor_id = ?")
		args = append(args, filter.VisitorID)
	}
	if filter.Host != "" {
		clauses = append(clauses, "host = ?")
		args = append(args, filter.Host)
	}
	if filter.RootDomain != "" {
		clauses = append(clauses, "root_domain = ?")
		args = append(args, filter.RootDomain)
	}
	if filter.Year != 0 {
		clauses = append(clauses, "year = ?")
		args = append(args, filter.Year)
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}

	query := "SELECT id, timestamp, visitor_id, host, root_domain, year, archive_url, cause FROM trips"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying trips: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// TopDomains ranks registrable domains by number of trips. An empty
// visitorID ranks across all visitors.
func (s *Store) TopDomains(ctx context.Context, visitorID string, limit int) ([]DomainCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT root_domain, COUNT(*) AS n FROM trips
		WHERE root_domain != '' AND (? = '' OR visitor_id = ?)
		GROUP BY root_domain
		ORDER BY n DESC, root_domain ASC
		LIMIT ?`, visitorID, visitorID, limit)
	if err != nil {
		return nil, fmt.Errorf("ranking domains: %w", err)
	}
	defer rows.Close()

	var out []DomainCount
	for rows.Next() {
		var dc DomainCount
		if err := rows.Scan(&dc.RootDomain, &dc.Trips); err != nil {
			return nil, fmt.Errorf("scanning domain count: %w", err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// DeleteBefore removes entries older than the given time and returns how
// many were removed.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM trips WHERE timestamp < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old trips: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// timestampLayouts covers what the sqlite driver hands back for DATETIME.
var timestampLayouts = []string{time.DateTime, time.RFC3339Nano, "2006-01-02T15:04:05Z"}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e     Entry
		ts    string
		cause string
	)
	err := sc.Scan(&e.ID, &ts, &e.VisitorID, &e.Host, &e.RootDomain, &e.Year, &e.ArchiveURL, &cause)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning trip: %w", err)
	}
	e.Cause = Cause(cause)

	for _, layout := range timestampLayouts {
		if t, parseErr := time.Parse(layout, ts); parseErr == nil {
			e.Timestamp = t.UTC()
			break
		}
	}
	return &e, nil
}
