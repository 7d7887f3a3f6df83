//go:build windows

package procowner

import (
	"golang.org/x/sys/windows"

	"github.com/nervosys/nvstats-sub001/pkg/model"
)

type pidResolver struct{}

// New returns the Windows correlator. The socket table already carries
// the owning PID, so resolution is only a module base-name lookup.
func New() Correlator {
	return &pidResolver{}
}

func (c *pidResolver) Resolve(key uint64) *model.Process {
	pid := uint32(key)
	return &model.Process{PID: pid, Name: moduleBaseName(pid)}
}

func (c *pidResolver) ResolveAll(keys []uint64) map[uint64]*model.Process {
	owners := make(map[uint64]*model.Process, len(keys))
	for _, k := range keys {
		if _, done := owners[k]; done {
			continue
		}
		owners[k] = c.Resolve(k)
	}
	return owners
}

// moduleBaseName fetches the executable name for a PID, best effort.
// The handle is closed on every path.
func moduleBaseName(pid uint32) string {
	h, err := windows.OpenProcess(
		windows.PROCESS_QUERY_INFORMATION|windows.PROCESS_VM_READ, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(h)

	var buf [260]uint16
	n, err := windows.GetModuleBaseName(h, 0, &buf[0], uint32(len(buf)))
	if err != nil || n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}
