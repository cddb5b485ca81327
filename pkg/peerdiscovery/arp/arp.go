package arp

import (
	"fmt"
	"sync"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/interceptor/pkg/addr"
)

// Entry is one resolved line of the OS neighbour table
type Entry struct {
	IP     addr.IPv4
	MAC    addr.MAC
	Device string
}

// Table is a snapshot of the OS neighbour table keyed by IPv4 address
type Table struct {
	entries map[addr.IPv4]Entry
}

// NewTable indexes entries; a later entry for the same address wins
func NewTable(entries []Entry) *Table {
	t := &Table{entries: make(map[addr.IPv4]Entry, len(entries))}
	for _, e := range entries {
		t.entries[e.IP] = e
	}
	return t
}

// ReadTable reads the neighbour table of the running host
func ReadTable() (*Table, error) {
	entries, err := readLocalARPTable()
	if err != nil {
		return nil, fmt.Errorf("failed to read local ARP table: %w", err)
	}
	return NewTable(entries), nil
}

// LookupMAC returns the hardware address recorded for ip
func (t *Table) LookupMAC(ip addr.IPv4) (addr.MAC, bool) {
	e, ok := t.entries[ip]
	return e.MAC, ok
}

// Len returns the number of resolved entries
func (t *Table) Len() int {
	return len(t.entries)
}

// Cache serves lookups from a table snapshot that is re-read once it is
// older than its ttl. It is safe for concurrent use.
type Cache struct {
	ttl  time.Duration
	read func() (*Table, error)

	mu      sync.Mutex
	table   *Table
	fetched time.Time
}

// NewCache returns a Cache over the live neighbour table
func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, read: ReadTable}
}

// LookupMAC returns the hardware address of ip, refreshing the snapshot when stale.
// A failed refresh is logged and retried only after another ttl; until then
// the previous snapshot, if any, keeps serving.
func (c *Cache) LookupMAC(ip addr.IPv4) (addr.MAC, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fetched.IsZero() || time.Since(c.fetched) > c.ttl {
		table, err := c.read()
		c.fetched = time.Now()
		if err != nil {
			gologger.Debug().Msgf("could not refresh neighbour table: %v", err)
		} else {
			c.table = table
		}
	}
	if c.table == nil {
		return addr.MAC{}, false
	}
	return c.table.LookupMAC(ip)
}
