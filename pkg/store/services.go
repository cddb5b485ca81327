package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Service is a transport endpoint found on a host
type Service struct {
	ID                int64
	HostID            int64
	TransportProtocol string
	Port              int
}

func (s *Service) String() string {
	return fmt.Sprintf("ID: %d\n\tHost ID: %d\n\tTransport Protocol: %s\n\tPort: %d", s.ID, s.HostID, s.TransportProtocol, s.Port)
}

// ServiceQuery holds optional service criteria; zero values are ignored
type ServiceQuery struct {
	HostID            int64
	TransportProtocol string
	Port              int
}

// Credential is a login found for a service
type Credential struct {
	ID         int64
	ServiceID  int64
	LoginName  string
	Credential string
}

func (c *Credential) String() string {
	return fmt.Sprintf("ID: %d\n\tService ID: %d\n\tLogin Name: %s\n\tCredential: %s", c.ID, c.ServiceID, c.LoginName, c.Credential)
}

// AddService records a service on host hostID and returns its id
func (s *Session) AddService(ctx context.Context, hostID int64, transportProtocol string, port int) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `INSERT INTO services (host_id, transport_protocol, port) VALUES (?, ?, ?)`,
		hostID, transportProtocol, port)
	if err != nil {
		return 0, fmt.Errorf("failed to add service: %w", err)
	}
	return res.LastInsertId()
}

// FindService returns the first service matching every supplied field, or nil
func (s *Session) FindService(ctx context.Context, q ServiceQuery) (*Service, error) {
	var where []string
	var args []any
	if q.HostID != 0 {
		where = append(where, "host_id = ?")
		args = append(args, q.HostID)
	}
	if q.TransportProtocol != "" {
		where = append(where, "transport_protocol = ?")
		args = append(args, q.TransportProtocol)
	}
	if q.Port != 0 {
		where = append(where, "port = ?")
		args = append(args, q.Port)
	}
	if len(where) == 0 {
		return nil, ErrEmptyQuery
	}
	query := `SELECT id, host_id, transport_protocol, port FROM services WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id LIMIT 1`
	return scanService(s.conn.QueryRowContext(ctx, query, args...))
}

// GetService returns service id, or nil when it does not exist
func (s *Session) GetService(ctx context.Context, id int64) (*Service, error) {
	return scanService(s.conn.QueryRowContext(ctx, `SELECT id, host_id, transport_protocol, port FROM services WHERE id = ?`, id))
}

// ListServices returns every service ordered by id
func (s *Session) ListServices(ctx context.Context) ([]*Service, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, host_id, transport_protocol, port FROM services ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []*Service
	for rows.Next() {
		svc := &Service{}
		if err := rows.Scan(&svc.ID, &svc.HostID, &svc.TransportProtocol, &svc.Port); err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

// AddCredential records a login for service serviceID and returns its id
func (s *Session) AddCredential(ctx context.Context, serviceID int64, loginName, credential string) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `INSERT INTO credentials (service_id, login_name, credential) VALUES (?, ?, ?)`,
		serviceID, loginName, credential)
	if err != nil {
		return 0, fmt.Errorf("failed to add credential: %w", err)
	}
	return res.LastInsertId()
}

// GetCredential returns credential id, or nil when it does not exist
func (s *Session) GetCredential(ctx context.Context, id int64) (*Credential, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT id, service_id, login_name, credential FROM credentials WHERE id = ?`, id)
	var login, secret sql.NullString
	c := &Credential{}
	err := row.Scan(&c.ID, &c.ServiceID, &login, &secret)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.LoginName, c.Credential = login.String, secret.String
	return c, nil
}

// ListCredentials returns every credential ordered by id
func (s *Session) ListCredentials(ctx context.Context) ([]*Credential, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, service_id, login_name, credential FROM credentials ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creds []*Credential
	for rows.Next() {
		var login, secret sql.NullString
		c := &Credential{}
		if err := rows.Scan(&c.ID, &c.ServiceID, &login, &secret); err != nil {
			return nil, err
		}
		c.LoginName, c.Credential = login.String, secret.String
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

func scanService(row *sql.Row) (*Service, error) {
	svc := &Service{}
	err := row.Scan(&svc.ID, &svc.HostID, &svc.TransportProtocol, &svc.Port)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}
