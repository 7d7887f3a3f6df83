//go:build linux

package socktab

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/nervosys/nvstats-sub001/pkg/model"
)

var procNetPaths = map[model.Protocol]string{
	model.TCP:  "/proc/net/tcp",
	model.TCP6: "/proc/net/tcp6",
	model.UDP:  "/proc/net/udp",
	model.UDP6: "/proc/net/udp6",
}

type procfsReader struct {
	// root lets tests point at a fake /proc/net tree.
	root string
}

// New returns the procfs-backed table reader.
func New() Reader {
	return &procfsReader{}
}

func (r *procfsReader) Table(proto model.Protocol) ([]Row, error) {
	path, ok := procNetPaths[proto]
	if !ok {
		return nil, errors.Mark(errors.Newf("no table for protocol %s", proto), model.ErrNotSupported)
	}
	if r.root != "" {
		path = r.root + strings.TrimPrefix(path, "/proc/net")
	}

	// A missing table usually means the family is disabled in the
	// kernel (no /proc/net/tcp6 without IPv6). The caller decides
	// whether that is fatal.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read %s", path), model.ErrIO)
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) > 0 {
		lines = lines[1:] // header
	}
	return parseProcNetTable(lines, proto), nil
}
