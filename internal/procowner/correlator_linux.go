//go:build linux

package procowner

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nervosys/nvstats-sub001/pkg/model"
)

type fdScanner struct {
	// procRoot lets tests point at a fake /proc tree.
	procRoot string
}

// New returns the /proc fd-scan correlator.
func New() Correlator {
	return &fdScanner{procRoot: "/proc"}
}

// Resolve walks /proc/<pid>/fd until a descriptor links to
// socket:[key]. There is no cross-call caching; every call rescans.
func (c *fdScanner) Resolve(key uint64) *model.Process {
	want := "socket:[" + strconv.FormatUint(key, 10) + "]"

	for _, pid := range c.pids() {
		fdDir := filepath.Join(c.procRoot, strconv.FormatUint(uint64(pid), 10), "fd")
		fds, err := os.ReadDir(fdDir)
		if err != nil {
			// Not our process, or it exited mid-scan.
			continue
		}
		for _, fd := range fds {
			link, err := os.Readlink(filepath.Join(fdDir, fd.Name()))
			if err != nil {
				continue
			}
			if link == want {
				return &model.Process{PID: pid, Name: c.commName(pid)}
			}
		}
	}
	return nil
}

// ResolveAll builds an inode index in one O(processes x descriptors)
// scan and answers every key from it.
func (c *fdScanner) ResolveAll(keys []uint64) map[uint64]*model.Process {
	wanted := make(map[uint64]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}

	owners := make(map[uint64]*model.Process, len(keys))
	for _, pid := range c.pids() {
		fdDir := filepath.Join(c.procRoot, strconv.FormatUint(uint64(pid), 10), "fd")
		fds, err := os.ReadDir(fdDir)
		if err != nil {
			continue
		}

		var proc *model.Process
		for _, fd := range fds {
			link, err := os.Readlink(filepath.Join(fdDir, fd.Name()))
			if err != nil {
				continue
			}
			inode, ok := socketInode(link)
			if !ok {
				continue
			}
			if _, ok := wanted[inode]; !ok {
				continue
			}
			if proc == nil {
				proc = &model.Process{PID: pid, Name: c.commName(pid)}
			}
			owners[inode] = proc
		}
	}
	return owners
}

func (c *fdScanner) pids() []uint32 {
	entries, err := os.ReadDir(c.procRoot)
	if err != nil {
		return nil
	}
	pids := make([]uint32, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.ParseUint(e.Name(), 10, 32)
		if err != nil {
			continue
		}
		pids = append(pids, uint32(pid))
	}
	return pids
}

// commName reads /proc/<pid>/comm, best effort.
func (c *fdScanner) commName(pid uint32) string {
	data, err := os.ReadFile(filepath.Join(c.procRoot, strconv.FormatUint(uint64(pid), 10), "comm"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func socketInode(link string) (uint64, bool) {
	rest, ok := strings.CutPrefix(link, "socket:[")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, "]")
	if !ok {
		return 0, false
	}
	inode, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return inode, true
}
