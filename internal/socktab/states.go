package socktab

import "github.com/nervosys/nvstats-sub001/pkg/model"

// The two platforms encode TCP state with different numbering; both
// tables land on the same canonical set. Anything out of range decodes
// to StateUnknown rather than failing the row.

var linuxTCPStates = map[uint8]model.ConnectionState{
	0x01: model.StateEstablished,
	0x02: model.StateSynSent,
	0x03: model.StateSynReceived,
	0x04: model.StateFinWait1,
	0x05: model.StateFinWait2,
	0x06: model.StateTimeWait,
	0x07: model.StateClosed,
	0x08: model.StateCloseWait,
	0x09: model.StateLastAck,
	0x0A: model.StateListen,
	0x0B: model.StateClosing,
}

// MIB_TCP_STATE values, 1 through 12.
var windowsTCPStates = map[uint32]model.ConnectionState{
	1:  model.StateClosed,
	2:  model.StateListen,
	3:  model.StateSynSent,
	4:  model.StateSynReceived,
	5:  model.StateEstablished,
	6:  model.StateFinWait1,
	7:  model.StateFinWait2,
	8:  model.StateCloseWait,
	9:  model.StateClosing,
	10: model.StateLastAck,
	11: model.StateTimeWait,
	12: model.StateDeleteTcb,
}

// LinuxState maps a /proc/net state byte to its canonical state.
func LinuxState(code uint8) model.ConnectionState {
	if s, ok := linuxTCPStates[code]; ok {
		return s
	}
	return model.StateUnknown
}

// WindowsState maps a MIB_TCP_STATE value to its canonical state.
func WindowsState(code uint32) model.ConnectionState {
	if s, ok := windowsTCPStates[code]; ok {
		return s
	}
	return model.StateUnknown
}
