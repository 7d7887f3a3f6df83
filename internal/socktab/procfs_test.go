package socktab

import (
	"testing"

	"github.com/nervosys/nvstats-sub001/pkg/model"
)

func TestParseHexEndpointIPv4(t *testing.T) {
	ep, ok := parseHexEndpoint("0100007F:1F90", false)
	if !ok {
		t.Fatal("parse failed")
	}
	if got := ep.IP.String(); got != "127.0.0.1" {
		t.Fatalf("ip = %s, want 127.0.0.1", got)
	}
	if ep.Port != 8080 {
		t.Fatalf("port = %d, want 8080", ep.Port)
	}
}

func TestParseHexEndpointIPv6(t *testing.T) {
	// 16 bytes in sequential order; no per-word swap.
	ep, ok := parseHexEndpoint("FE800000000000005578AFA94CAF27A1:0016", true)
	if !ok {
		t.Fatal("parse failed")
	}
	if got := ep.IP.String(); got != "fe80::5578:afa9:4caf:27a1" {
		t.Fatalf("ip = %s, want fe80::5578:afa9:4caf:27a1", got)
	}
	if ep.Port != 22 {
		t.Fatalf("port = %d, want 22", ep.Port)
	}
}

func TestParseHexEndpointMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"0100007F",       // no port
		"XX00007F:1F90",  // bad hex
		"0100007F:GGGG",  // bad port
		"01007F:1F90",    // short address
		"0100007F:1F900", // port overflow
	} {
		if _, ok := parseHexEndpoint(raw, false); ok {
			t.Fatalf("parseHexEndpoint(%q) should fail", raw)
		}
	}
}

func tcpLine(local, remote, state, uid, inode string) string {
	return "   0: " + local + " " + remote + " " + state +
		" 00000000:00000000 00:00000000 00000000  " + uid + "        0 " + inode + " 1 0000000000000000 100 0 0 10 0"
}

func TestParseProcNetLineTCP(t *testing.T) {
	row, ok := parseProcNetLine(tcpLine("0100007F:1F90", "0200007F:01BB", "01", "1000", "98765"), model.TCP)
	if !ok {
		t.Fatal("parse failed")
	}
	if row.State != model.StateEstablished {
		t.Fatalf("state = %s, want ESTABLISHED", row.State)
	}
	if row.Local.String() != "127.0.0.1:8080" {
		t.Fatalf("local = %s", row.Local)
	}
	if row.Remote == nil || row.Remote.String() != "127.0.0.2:443" {
		t.Fatalf("remote = %v", row.Remote)
	}
	if row.UID != 1000 {
		t.Fatalf("uid = %d, want 1000", row.UID)
	}
	if row.OwnerKey != 98765 {
		t.Fatalf("inode = %d, want 98765", row.OwnerKey)
	}
}

func TestParseProcNetLineListenDropsStaleRemote(t *testing.T) {
	// Kernels sometimes leave stale values in a listener's remote
	// fields; they must not surface.
	row, ok := parseProcNetLine(tcpLine("00000000:0050", "0100007F:1F90", "0A", "0", "42"), model.TCP)
	if !ok {
		t.Fatal("parse failed")
	}
	if row.State != model.StateListen {
		t.Fatalf("state = %s, want LISTEN", row.State)
	}
	if row.Remote != nil {
		t.Fatalf("listener remote = %v, want nil", row.Remote)
	}
}

func TestParseProcNetLineUDPAlwaysStateless(t *testing.T) {
	// Even a connected UDP socket with nonzero remote fields reports
	// connectionless.
	row, ok := parseProcNetLine(tcpLine("0100007F:0035", "0200007F:0035", "01", "0", "7"), model.UDP)
	if !ok {
		t.Fatal("parse failed")
	}
	if row.State != model.StateStateless {
		t.Fatalf("state = %s, want Stateless", row.State)
	}
	if row.Remote != nil {
		t.Fatalf("udp remote = %v, want nil", row.Remote)
	}
}

func TestParseProcNetTableGarbageStateRow(t *testing.T) {
	lines := []string{
		tcpLine("0100007F:1F90", "00000000:0000", "0A", "0", "1"),
		tcpLine("0100007F:1F91", "0200007F:01BB", "ZZ", "0", "2"),
		tcpLine("0100007F:1F92", "0200007F:01BB", "01", "0", "3"),
	}
	rows := parseProcNetTable(lines, model.TCP)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].State != model.StateListen {
		t.Fatalf("row 0 state = %s", rows[0].State)
	}
	if rows[1].State != model.StateUnknown {
		t.Fatalf("garbage state decoded to %s, want UNKNOWN", rows[1].State)
	}
	if rows[2].State != model.StateEstablished {
		t.Fatalf("row 2 state = %s", rows[2].State)
	}
}

func TestParseProcNetTableSkipsMalformedRows(t *testing.T) {
	lines := []string{
		"  sl  local_address rem_address   st tx_queue rx_queue", // stray header
		"",
		tcpLine("0100007F:1F90", "00000000:0000", "0A", "0", "1"),
	}
	rows := parseProcNetTable(lines, model.TCP)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
}
