package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Host is a discovered machine. Empty strings are absent columns.
type Host struct {
	ID   int64
	IPv4 string
	IPv6 string
	MAC  string
}

func (h *Host) String() string {
	return fmt.Sprintf("ID: %d\n\tIPv4: %s\n\tIPv6: %s\n\tMAC: %s", h.ID, orNone(h.IPv4), orNone(h.IPv6), orNone(h.MAC))
}

// HostQuery holds the optional host columns used for lookups and writes.
// Empty fields are left out of the statement entirely.
type HostQuery struct {
	IPv4 string
	IPv6 string
	MAC  string
}

func (q HostQuery) columns() ([]string, []any) {
	var cols []string
	var args []any
	if q.IPv4 != "" {
		cols = append(cols, "ipv4")
		args = append(args, q.IPv4)
	}
	if q.IPv6 != "" {
		cols = append(cols, "ipv6")
		args = append(args, q.IPv6)
	}
	if q.MAC != "" {
		cols = append(cols, "mac")
		args = append(args, q.MAC)
	}
	return cols, args
}

const hostColumns = "id, ipv4, ipv6, mac"

// FindHost returns the first host matching every supplied field, or nil
func (s *Session) FindHost(ctx context.Context, q HostQuery) (*Host, error) {
	cols, args := q.columns()
	if len(cols) == 0 {
		return nil, ErrEmptyQuery
	}
	where := make([]string, len(cols))
	for i, c := range cols {
		where[i] = c + " = ?"
	}
	query := `SELECT ` + hostColumns + ` FROM hosts WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id LIMIT 1`
	return scanHost(s.conn.QueryRowContext(ctx, query, args...))
}

// InsertHost inserts a new host and returns its id. Recording an address
// that another host already has fails with ErrDuplicateHost.
func (s *Session) InsertHost(ctx context.Context, q HostQuery) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `INSERT INTO hosts (ipv4, ipv6, mac) VALUES (?, ?, ?)`,
		nullable(q.IPv4), nullable(q.IPv6), nullable(q.MAC))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateHost, q.IPv4+q.IPv6)
		}
		return 0, err
	}
	return res.LastInsertId()
}

// EnsureHost records the host unless its IPv4 (or IPv6) address is already
// known, and returns the id either way. The insert relies on the store's
// unique address indexes, so concurrent callers cannot create duplicates.
// A MAC supplied for an existing host fills an empty mac column.
func (s *Session) EnsureHost(ctx context.Context, q HostQuery) (id int64, created bool, err error) {
	if q.IPv4 == "" && q.IPv6 == "" {
		return 0, false, ErrNoIdentity
	}
	res, err := s.conn.ExecContext(ctx, `INSERT INTO hosts (ipv4, ipv6, mac) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		nullable(q.IPv4), nullable(q.IPv6), nullable(q.MAC))
	if err != nil {
		return 0, false, fmt.Errorf("failed to upsert host: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		id, err = res.LastInsertId()
		return id, true, err
	}

	key := HostQuery{IPv4: q.IPv4}
	if q.IPv4 == "" {
		key = HostQuery{IPv6: q.IPv6}
	}
	existing, err := s.FindHost(ctx, key)
	if err != nil {
		return 0, false, err
	}
	if existing == nil {
		return 0, false, fmt.Errorf("host %s conflicts with another record", q.IPv4+q.IPv6)
	}
	if q.MAC != "" && existing.MAC == "" {
		if err := s.SetHost(ctx, existing.ID, HostQuery{MAC: q.MAC}); err != nil {
			return 0, false, err
		}
	}
	return existing.ID, false, nil
}

// SetHost updates only the supplied columns of host id
func (s *Session) SetHost(ctx context.Context, id int64, q HostQuery) error {
	cols, args := q.columns()
	if len(cols) == 0 {
		return nil
	}
	set := make([]string, len(cols))
	for i, c := range cols {
		set[i] = c + " = ?"
	}
	args = append(args, id)
	_, err := s.conn.ExecContext(ctx, `UPDATE hosts SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateHost, q.IPv4+q.IPv6)
	}
	return err
}

// GetHost returns host id, or nil when it does not exist
func (s *Session) GetHost(ctx context.Context, id int64) (*Host, error) {
	return scanHost(s.conn.QueryRowContext(ctx, `SELECT `+hostColumns+` FROM hosts WHERE id = ?`, id))
}

// ListHosts returns every host ordered by id
func (s *Session) ListHosts(ctx context.Context) ([]*Host, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT `+hostColumns+` FROM hosts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hosts []*Host
	for rows.Next() {
		var ipv4, ipv6, mac sql.NullString
		h := &Host{}
		if err := rows.Scan(&h.ID, &ipv4, &ipv6, &mac); err != nil {
			return nil, err
		}
		h.IPv4, h.IPv6, h.MAC = ipv4.String, ipv6.String, mac.String
		hosts = append(hosts, h)
	}
	return hosts, rows.Err()
}

func scanHost(row *sql.Row) (*Host, error) {
	var ipv4, ipv6, mac sql.NullString
	h := &Host{}
	err := row.Scan(&h.ID, &ipv4, &ipv6, &mac)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	h.IPv4, h.IPv6, h.MAC = ipv4.String, ipv6.String, mac.String
	return h, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
