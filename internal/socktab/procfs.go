package socktab

import (
	"encoding/hex"
	"net/netip"
	"strconv"
	"strings"

	"github.com/nervosys/nvstats-sub001/pkg/model"
)

// Text decoding for the /proc/net/{tcp,tcp6,udp,udp6} tables. Kept free
// of build tags so the format logic is testable on any platform.
//
// Row layout (whitespace separated):
//
//	sl local_address rem_address st tx_queue:rx_queue tr:tm->when retrnsmt uid timeout inode ...
//	 0             1           2  3                 4           5        6   7       8     9

const procNetMinFields = 10

// parseProcNetLine decodes one table row. Malformed rows return ok ==
// false and are skipped by the caller; an unrecognized state code is
// not malformed and yields StateUnknown for that row only.
func parseProcNetLine(line string, proto model.Protocol) (Row, bool) {
	fields := strings.Fields(line)
	if len(fields) < procNetMinFields {
		return Row{}, false
	}

	local, ok := parseHexEndpoint(fields[1], proto.IsIPv6())
	if !ok {
		return Row{}, false
	}
	remote, ok := parseHexEndpoint(fields[2], proto.IsIPv6())
	if !ok {
		return Row{}, false
	}

	uid, err := strconv.ParseUint(fields[7], 10, 32)
	if err != nil {
		return Row{}, false
	}
	inode, err := strconv.ParseUint(fields[9], 10, 64)
	if err != nil {
		return Row{}, false
	}

	row := Row{
		Proto:    proto,
		Local:    local,
		UID:      uint32(uid),
		OwnerKey: inode,
	}

	if proto.IsUDP() {
		// UDP is reported connectionless regardless of what the raw
		// remote fields contain.
		row.State = model.StateStateless
		return row, true
	}

	if code, err := strconv.ParseUint(fields[3], 16, 8); err == nil {
		row.State = LinuxState(uint8(code))
	} else {
		row.State = model.StateUnknown
	}

	// Listening sockets can carry stale remote fields; force them off.
	if row.State != model.StateListen {
		row.Remote = &remote
	}
	return row, true
}

// parseHexEndpoint decodes the HEXADDR:HEXPORT form.
func parseHexEndpoint(s string, ipv6 bool) (model.Endpoint, bool) {
	addrHex, portHex, found := strings.Cut(s, ":")
	if !found {
		return model.Endpoint{}, false
	}

	// The port is a plain big-endian 16-bit hex value.
	port, err := strconv.ParseUint(portHex, 16, 16)
	if err != nil {
		return model.Endpoint{}, false
	}

	ip, ok := parseHexAddr(addrHex, ipv6)
	if !ok {
		return model.Endpoint{}, false
	}
	return model.Endpoint{IP: ip, Port: uint16(port)}, true
}

func parseHexAddr(s string, ipv6 bool) (netip.Addr, bool) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return netip.Addr{}, false
	}

	if ipv6 {
		// 16 bytes taken in sequential order. Unlike IPv4 there is no
		// word swap here; applying the v4 rule per 32-bit group is the
		// classic mistake.
		if len(b) != 16 {
			return netip.Addr{}, false
		}
		var a16 [16]byte
		copy(a16[:], b)
		return netip.AddrFrom16(a16), true
	}

	// A single 32-bit word stored little-endian; reverse once to get
	// network order. 0100007F decodes to 127.0.0.1.
	if len(b) != 4 {
		return netip.Addr{}, false
	}
	return netip.AddrFrom4([4]byte{b[3], b[2], b[1], b[0]}), true
}

// parseProcNetTable decodes a whole table, header already removed.
// Rows that fail to decode are dropped; one bad row never aborts the
// rest of the table.
func parseProcNetTable(lines []string, proto model.Protocol) []Row {
	rows := make([]Row, 0, len(lines))
	for _, line := range lines {
		if row, ok := parseProcNetLine(line, proto); ok {
			rows = append(rows, row)
		}
	}
	return rows
}
