// Package procowner resolves which process owns a socket. The
// correlation key comes from the socket table row: a socket inode on
// Linux, the PID itself on Windows.
package procowner

import "github.com/nervosys/nvstats-sub001/pkg/model"

// Correlator resolves owner keys to processes. Resolution is best
// effort and never fails: a socket that closed between the table read
// and the lookup, or a process the caller may not inspect, resolves to
// nil.
type Correlator interface {
	// Resolve looks up a single key.
	Resolve(key uint64) *model.Process

	// ResolveAll looks up a batch of keys in one pass. On Linux this
	// bounds a whole snapshot at a single /proc scan. Keys that do not
	// resolve are absent from the result.
	ResolveAll(keys []uint64) map[uint64]*model.Process
}
