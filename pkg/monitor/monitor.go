// Package monitor exposes the point-in-time socket inventory: every
// active TCP/UDP endpoint over IPv4/IPv6, with canonical state and
// owning process.
package monitor

import (
	"github.com/rs/zerolog/log"

	"github.com/nervosys/nvstats-sub001/internal/procowner"
	"github.com/nervosys/nvstats-sub001/internal/socktab"
	"github.com/nervosys/nvstats-sub001/pkg/model"
)

// ConnectionMonitor polls the kernel socket tables. All calls are
// synchronous and blocking, allocate fresh buffers, and share no
// mutable state, so a single monitor is safe for concurrent callers.
type ConnectionMonitor struct {
	reader     socktab.Reader
	correlator procowner.Correlator
	names      *NameCache
}

// Option configures a ConnectionMonitor.
type Option func(*ConnectionMonitor)

// WithReader replaces the platform table reader.
func WithReader(r socktab.Reader) Option {
	return func(m *ConnectionMonitor) { m.reader = r }
}

// WithCorrelator replaces the platform process correlator.
func WithCorrelator(c procowner.Correlator) Option {
	return func(m *ConnectionMonitor) { m.correlator = c }
}

// WithNameCache attaches an opt-in process-name cache. The cache is
// invalidated at the start of every AllConnections poll.
func WithNameCache(c *NameCache) Option {
	return func(m *ConnectionMonitor) { m.names = c }
}

// New returns a monitor wired to the build-selected backends.
func New(opts ...Option) *ConnectionMonitor {
	m := &ConnectionMonitor{
		reader:     socktab.New(),
		correlator: procowner.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TCPConnections returns all TCP over IPv4 sockets.
func (m *ConnectionMonitor) TCPConnections() ([]model.ConnectionInfo, error) {
	return m.connections(model.TCP)
}

// TCP6Connections returns all TCP over IPv6 sockets.
func (m *ConnectionMonitor) TCP6Connections() ([]model.ConnectionInfo, error) {
	return m.connections(model.TCP6)
}

// UDPEndpoints returns all UDP over IPv4 endpoints.
func (m *ConnectionMonitor) UDPEndpoints() ([]model.ConnectionInfo, error) {
	return m.connections(model.UDP)
}

// UDP6Endpoints returns all UDP over IPv6 endpoints.
func (m *ConnectionMonitor) UDP6Endpoints() ([]model.ConnectionInfo, error) {
	return m.connections(model.UDP6)
}

// AllConnections aggregates all four protocol/family tables. A failing
// sub-call contributes zero rows instead of failing the snapshot; call
// the protocol directly to see its error.
func (m *ConnectionMonitor) AllConnections() []model.ConnectionInfo {
	if m.names != nil {
		m.names.Invalidate()
	}

	var all []model.ConnectionInfo
	for _, proto := range []model.Protocol{model.TCP, model.TCP6, model.UDP, model.UDP6} {
		conns, err := m.connections(proto)
		if err != nil {
			log.Debug().Err(err).Stringer("protocol", proto).
				Msg("skipping unavailable socket table")
			continue
		}
		all = append(all, conns...)
	}
	return all
}

// EstablishedConnections filters AllConnections down to established
// TCP connections.
func (m *ConnectionMonitor) EstablishedConnections() []model.ConnectionInfo {
	return filter(m.AllConnections(), func(c model.ConnectionInfo) bool {
		return c.State == model.StateEstablished
	})
}

// ListeningSockets filters AllConnections down to TCP listeners and
// UDP endpoints.
func (m *ConnectionMonitor) ListeningSockets() []model.ConnectionInfo {
	return filter(m.AllConnections(), func(c model.ConnectionInfo) bool {
		return c.State == model.StateListen || c.State == model.StateStateless
	})
}

func (m *ConnectionMonitor) connections(proto model.Protocol) ([]model.ConnectionInfo, error) {
	rows, err := m.reader.Table(proto)
	if err != nil {
		return nil, err
	}

	keys := make([]uint64, 0, len(rows))
	for _, row := range rows {
		if row.OwnerKey != 0 {
			keys = append(keys, row.OwnerKey)
		}
	}
	owners := m.correlator.ResolveAll(keys)

	conns := make([]model.ConnectionInfo, 0, len(rows))
	for _, row := range rows {
		proc := owners[row.OwnerKey]
		if proc != nil && m.names != nil {
			proc = m.names.fill(proc)
		}
		conns = append(conns, model.ConnectionInfo{
			Protocol: row.Proto,
			Local:    row.Local,
			Remote:   row.Remote,
			State:    row.State,
			Process:  proc,
		})
	}
	return conns, nil
}

func filter(conns []model.ConnectionInfo, keep func(model.ConnectionInfo) bool) []model.ConnectionInfo {
	out := make([]model.ConnectionInfo, 0, len(conns))
	for _, c := range conns {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
