// Package socktab decodes the kernel's socket tables into normalized
// rows. Linux reads the procfs text tables, Windows the iphlpapi
// extended tables; everything else is an explicit gap.
package socktab

import (
	"github.com/nervosys/nvstats-sub001/pkg/model"
)

// Row is one decoded socket table entry. Rows are ephemeral: they live
// for the duration of a single table read and are discarded once
// assembled into model.ConnectionInfo.
type Row struct {
	Proto  model.Protocol
	Local  model.Endpoint
	Remote *model.Endpoint
	State  model.ConnectionState

	// UID is the owning user id (Linux only).
	UID uint32

	// OwnerKey correlates the row to its owning process: the socket
	// inode on Linux, the PID itself on Windows.
	OwnerKey uint64
}

// Reader retrieves and decodes the socket table for one protocol and
// address family. Implementations are selected at build time, one per
// platform.
type Reader interface {
	Table(proto model.Protocol) ([]Row, error)
}
