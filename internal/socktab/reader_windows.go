//go:build windows

package socktab

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"

	"github.com/nervosys/nvstats-sub001/pkg/model"
)

var (
	modIphlpapi = windows.NewLazySystemDLL("iphlpapi.dll")

	procGetExtendedTCPTable = modIphlpapi.NewProc("GetExtendedTcpTable")
	procGetExtendedUDPTable = modIphlpapi.NewProc("GetExtendedUdpTable")
)

const (
	tcpTableOwnerPidAll = 5 // TCP_TABLE_OWNER_PID_ALL
	udpTableOwnerPid    = 1 // UDP_TABLE_OWNER_PID

	// Socket churn can grow the table between the sizing call and the
	// filled call; each retry re-negotiates from the new size.
	maxSizeRetries = 8
)

type iphlpapiReader struct{}

// New returns the iphlpapi-backed table reader.
func New() Reader {
	return &iphlpapiReader{}
}

func (r *iphlpapiReader) Table(proto model.Protocol) ([]Row, error) {
	family := uint32(windows.AF_INET)
	if proto.IsIPv6() {
		family = uint32(windows.AF_INET6)
	}

	if proto.IsUDP() {
		buf, err := fetchTable(procGetExtendedUDPTable, family, udpTableOwnerPid)
		if err != nil {
			return nil, err
		}
		return decodeUDPTable(buf, proto)
	}

	buf, err := fetchTable(procGetExtendedTCPTable, family, tcpTableOwnerPidAll)
	if err != nil {
		return nil, err
	}
	return decodeTCPTable(buf, proto)
}

// fetchTable runs the two-call size negotiation: first call with a nil
// buffer learns the required size, the second fills it. An
// insufficient-buffer result on the filled call means the table grew in
// between, so the negotiation restarts.
func fetchTable(proc *windows.LazyProc, family, tableClass uint32) ([]byte, error) {
	var size uint32
	var buf []byte

	for attempt := 0; attempt < maxSizeRetries; attempt++ {
		var ptr unsafe.Pointer
		if len(buf) > 0 {
			ptr = unsafe.Pointer(&buf[0])
		}

		ret, _, _ := proc.Call(
			uintptr(ptr),
			uintptr(unsafe.Pointer(&size)),
			uintptr(uint32(0)), // unsorted
			uintptr(family),
			uintptr(tableClass),
			uintptr(uint32(0)),
		)

		if ret != windows.NO_ERROR {
			if windows.Errno(ret) == windows.ERROR_INSUFFICIENT_BUFFER {
				buf = make([]byte, size)
				continue
			}
			return nil, errors.Mark(
				errors.Newf("%s failed: %d", proc.Name, ret), model.ErrSystem)
		}
		if len(buf) == 0 {
			// Zero sockets for this family.
			return []byte{0, 0, 0, 0}, nil
		}
		return buf[:size], nil
	}

	return nil, errors.Mark(
		errors.Newf("%s: table size kept changing after %d attempts", proc.Name, maxSizeRetries),
		model.ErrSystem)
}
