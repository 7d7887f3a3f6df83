//go:build !linux && !windows

package procowner

import "github.com/nervosys/nvstats-sub001/pkg/model"

type nopCorrelator struct{}

// New returns a correlator that resolves nothing; platforms without a
// socket table have nothing to correlate.
func New() Correlator {
	return nopCorrelator{}
}

func (nopCorrelator) Resolve(key uint64) *model.Process {
	return nil
}

func (nopCorrelator) ResolveAll(keys []uint64) map[uint64]*model.Process {
	return map[uint64]*model.Process{}
}
