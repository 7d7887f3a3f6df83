package monitor

import (
	"sync"

	"github.com/nervosys/nvstats-sub001/pkg/model"
)

// NameCache memoizes process names by PID across the sub-queries of a
// poll. It is strictly opt-in: without it every lookup hits the OS.
// Its one invalidation point is the start of the next AllConnections
// poll, so a name can never outlive two consecutive snapshots.
type NameCache struct {
	mu    sync.Mutex
	names map[uint32]string
}

// NewNameCache returns an empty cache.
func NewNameCache() *NameCache {
	return &NameCache{names: make(map[uint32]string)}
}

// Invalidate drops all cached names.
func (c *NameCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = make(map[uint32]string)
}

// fill records the process name when present and supplies the cached
// one when the resolver came back empty-handed.
func (c *NameCache) fill(p *model.Process) *model.Process {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.Name != "" {
		c.names[p.PID] = p.Name
		return p
	}
	if name, ok := c.names[p.PID]; ok {
		return &model.Process{PID: p.PID, Name: name}
	}
	return p
}
