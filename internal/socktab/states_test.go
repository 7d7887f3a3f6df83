package socktab

import (
	"testing"

	"github.com/nervosys/nvstats-sub001/pkg/model"
)

func TestLinuxStatesAllKnown(t *testing.T) {
	for code := uint8(0x01); code <= 0x0B; code++ {
		if s := LinuxState(code); s == model.StateUnknown {
			t.Fatalf("linux code %#02x maps to UNKNOWN", code)
		}
	}
}

func TestWindowsStatesAllKnown(t *testing.T) {
	for code := uint32(1); code <= 12; code++ {
		if s := WindowsState(code); s == model.StateUnknown {
			t.Fatalf("windows code %d maps to UNKNOWN", code)
		}
	}
}

func TestStateTablesAgreeAcrossPlatforms(t *testing.T) {
	// The raw codes differ but the semantic states must land on the
	// same variant.
	equiv := []struct {
		linux   uint8
		windows uint32
		want    model.ConnectionState
	}{
		{0x01, 5, model.StateEstablished},
		{0x02, 3, model.StateSynSent},
		{0x03, 4, model.StateSynReceived},
		{0x04, 6, model.StateFinWait1},
		{0x05, 7, model.StateFinWait2},
		{0x06, 11, model.StateTimeWait},
		{0x07, 1, model.StateClosed},
		{0x08, 8, model.StateCloseWait},
		{0x09, 10, model.StateLastAck},
		{0x0A, 2, model.StateListen},
		{0x0B, 9, model.StateClosing},
	}
	for _, e := range equiv {
		if got := LinuxState(e.linux); got != e.want {
			t.Fatalf("LinuxState(%#02x) = %s, want %s", e.linux, got, e.want)
		}
		if got := WindowsState(e.windows); got != e.want {
			t.Fatalf("WindowsState(%d) = %s, want %s", e.windows, got, e.want)
		}
	}
}

func TestOutOfRangeStatesDecodeToUnknown(t *testing.T) {
	for _, code := range []uint8{0x00, 0x0D, 0x7F, 0xFF} {
		if s := LinuxState(code); s != model.StateUnknown {
			t.Fatalf("LinuxState(%#02x) = %s, want UNKNOWN", code, s)
		}
	}
	for _, code := range []uint32{0, 13, 99, 1 << 30} {
		if s := WindowsState(code); s != model.StateUnknown {
			t.Fatalf("WindowsState(%d) = %s, want UNKNOWN", code, s)
		}
	}
}
