//go:build !linux && !windows

package socktab

import (
	"runtime"

	"github.com/cockroachdb/errors"

	"github.com/nervosys/nvstats-sub001/pkg/model"
)

type unsupportedReader struct{}

// New returns a reader that reports every table as unavailable. macOS
// is a known gap, not a partial implementation.
func New() Reader {
	return &unsupportedReader{}
}

func (r *unsupportedReader) Table(proto model.Protocol) ([]Row, error) {
	return nil, errors.Mark(
		errors.Newf("socket tables not available on %s", runtime.GOOS),
		model.ErrNotSupported)
}
