package socktab

import (
	"encoding/binary"
	"net/netip"

	"github.com/cockroachdb/errors"

	"github.com/nervosys/nvstats-sub001/pkg/model"
)

// Decoding for the MIB_*TABLE_OWNER_PID buffers returned by the
// iphlpapi extended table calls. The layout is a uint32 entry count
// followed by an inline array of fixed-size rows. The buffer was sized
// by an earlier, separate call, so the declared count is validated
// against the actual length before any row is touched.
//
// All dword fields are host-endian (little-endian on every supported
// Windows target); IP address fields are raw network-order bytes; the
// low 16 bits of a port dword hold the port in big-endian order.

const (
	tcp4RowSize = 24 // state, laddr, lport, raddr, rport, pid
	tcp6RowSize = 56 // laddr[16], lscope, lport, raddr[16], rscope, rport, state, pid
	udp4RowSize = 12 // laddr, lport, pid
	udp6RowSize = 28 // laddr[16], lscope, lport, pid
)

type mibTable struct {
	buf     []byte
	rowSize int
}

// rows validates the header-declared count against the buffer length
// and returns it.
func (t mibTable) rows() (int, error) {
	if len(t.buf) < 4 {
		return 0, errors.Newf("table buffer too short for header: %d bytes", len(t.buf))
	}
	n := int(binary.LittleEndian.Uint32(t.buf))
	if need := 4 + n*t.rowSize; need > len(t.buf) {
		return 0, errors.Newf("table declares %d rows (%d bytes) but buffer holds %d", n, need, len(t.buf))
	}
	return n, nil
}

func (t mibTable) row(i int) []byte {
	off := 4 + i*t.rowSize
	return t.buf[off : off+t.rowSize]
}

// portFromDword extracts the big-endian port from the low half of a
// host-endian dword.
func portFromDword(dw uint32) uint16 {
	return uint16(dw&0xFF)<<8 | uint16(dw>>8&0xFF)
}

// addr4FromDword reinterprets a network-order IPv4 dword as octets.
func addr4FromDword(dw uint32) netip.Addr {
	return netip.AddrFrom4([4]byte{byte(dw), byte(dw >> 8), byte(dw >> 16), byte(dw >> 24)})
}

func addr16(b []byte) netip.Addr {
	var a16 [16]byte
	copy(a16[:], b)
	return netip.AddrFrom16(a16)
}

func decodeTCPTable(buf []byte, proto model.Protocol) ([]Row, error) {
	rowSize := tcp4RowSize
	if proto.IsIPv6() {
		rowSize = tcp6RowSize
	}
	t := mibTable{buf: buf, rowSize: rowSize}
	n, err := t.rows()
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		b := t.row(i)
		var row Row
		if proto.IsIPv6() {
			row = Row{
				Proto: proto,
				Local: model.Endpoint{
					IP:   addr16(b[0:16]),
					Port: portFromDword(binary.LittleEndian.Uint32(b[20:24])),
				},
				State: WindowsState(binary.LittleEndian.Uint32(b[48:52])),
			}
			remote := model.Endpoint{
				IP:   addr16(b[24:40]),
				Port: portFromDword(binary.LittleEndian.Uint32(b[44:48])),
			}
			if row.State != model.StateListen {
				row.Remote = &remote
			}
			row.OwnerKey = uint64(binary.LittleEndian.Uint32(b[52:56]))
		} else {
			row = Row{
				Proto: proto,
				Local: model.Endpoint{
					IP:   addr4FromDword(binary.LittleEndian.Uint32(b[4:8])),
					Port: portFromDword(binary.LittleEndian.Uint32(b[8:12])),
				},
				State: WindowsState(binary.LittleEndian.Uint32(b[0:4])),
			}
			remote := model.Endpoint{
				IP:   addr4FromDword(binary.LittleEndian.Uint32(b[12:16])),
				Port: portFromDword(binary.LittleEndian.Uint32(b[16:20])),
			}
			if row.State != model.StateListen {
				row.Remote = &remote
			}
			row.OwnerKey = uint64(binary.LittleEndian.Uint32(b[20:24]))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeUDPTable(buf []byte, proto model.Protocol) ([]Row, error) {
	rowSize := udp4RowSize
	if proto.IsIPv6() {
		rowSize = udp6RowSize
	}
	t := mibTable{buf: buf, rowSize: rowSize}
	n, err := t.rows()
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		b := t.row(i)
		var local model.Endpoint
		var pid uint32
		if proto.IsIPv6() {
			local = model.Endpoint{
				IP:   addr16(b[0:16]),
				Port: portFromDword(binary.LittleEndian.Uint32(b[20:24])),
			}
			pid = binary.LittleEndian.Uint32(b[24:28])
		} else {
			local = model.Endpoint{
				IP:   addr4FromDword(binary.LittleEndian.Uint32(b[0:4])),
				Port: portFromDword(binary.LittleEndian.Uint32(b[4:8])),
			}
			pid = binary.LittleEndian.Uint32(b[8:12])
		}
		rows = append(rows, Row{
			Proto:    proto,
			Local:    local,
			State:    model.StateStateless,
			OwnerKey: uint64(pid),
		})
	}
	return rows, nil
}
