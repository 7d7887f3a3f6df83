package model

import (
	"encoding/json"
	"fmt"
	"net/netip"
)

// Protocol identifies the transport and address family of a socket.
type Protocol int

const (
	TCP Protocol = iota
	TCP6
	UDP
	UDP6
)

func (p Protocol) String() string {
	switch p {
	case TCP:
		return "TCP"
	case TCP6:
		return "TCP6"
	case UDP:
		return "UDP"
	case UDP6:
		return "UDP6"
	}
	return "UNKNOWN"
}

// IsUDP reports whether the protocol is connectionless.
func (p Protocol) IsUDP() bool {
	return p == UDP || p == UDP6
}

// IsIPv6 reports whether the protocol uses the IPv6 address family.
func (p Protocol) IsIPv6() bool {
	return p == TCP6 || p == UDP6
}

// ConnectionState is the canonical decode target for the platform state
// codes found in socket tables. The kernel owns the state machine; this
// type only names what was observed.
type ConnectionState int

const (
	StateUnknown ConnectionState = iota
	StateClosed
	StateListen
	StateSynSent
	StateSynReceived
	StateEstablished
	StateFinWait1
	StateFinWait2
	StateCloseWait
	StateClosing
	StateLastAck
	StateTimeWait
	StateDeleteTcb
	// StateStateless is reserved for UDP endpoints.
	StateStateless
)

var stateNames = map[ConnectionState]string{
	StateUnknown:     "UNKNOWN",
	StateClosed:      "CLOSED",
	StateListen:      "LISTEN",
	StateSynSent:     "SYN_SENT",
	StateSynReceived: "SYN_RECV",
	StateEstablished: "ESTABLISHED",
	StateFinWait1:    "FIN_WAIT1",
	StateFinWait2:    "FIN_WAIT2",
	StateCloseWait:   "CLOSE_WAIT",
	StateClosing:     "CLOSING",
	StateLastAck:     "LAST_ACK",
	StateTimeWait:    "TIME_WAIT",
	StateDeleteTcb:   "DELETE_TCB",
	StateStateless:   "-",
}

func (s ConnectionState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Endpoint is one side of a socket.
type Endpoint struct {
	IP   netip.Addr
	Port uint16
}

// String renders "ip:port", with the IPv6 address bracketed.
func (e Endpoint) String() string {
	if e.IP.Is6() {
		return fmt.Sprintf("[%s]:%d", e.IP, e.Port)
	}
	return fmt.Sprintf("%s:%d", e.IP, e.Port)
}

// Process is the resolved owner of a socket. A nil *Process means the
// owner could not be determined (socket closed mid-scan, or access
// denied on another user's process).
type Process struct {
	PID  uint32
	Name string
}

func (p *Process) String() string {
	if p == nil {
		return "-"
	}
	if p.Name == "" {
		return fmt.Sprintf("%d", p.PID)
	}
	return fmt.Sprintf("%d/%s", p.PID, p.Name)
}

// ConnectionInfo is a point-in-time snapshot of one socket. Values are
// created fresh per query and never mutated or cached across polls.
//
// Remote is nil exactly when State == StateListen or the protocol is
// UDP/UDP6. Connected UDP sockets are deliberately reported without
// their remote peer; consumers needing it require a model change.
type ConnectionInfo struct {
	Protocol Protocol
	Local    Endpoint
	Remote   *Endpoint
	State    ConnectionState
	Process  *Process
}

// LocalAddress returns the formatted "ip:port" local endpoint.
func (c ConnectionInfo) LocalAddress() string {
	return c.Local.String()
}

// RemoteAddress returns the formatted remote endpoint, or "" when the
// socket has none.
func (c ConnectionInfo) RemoteAddress() string {
	if c.Remote == nil {
		return ""
	}
	return c.Remote.String()
}

type connectionJSON struct {
	Protocol      string  `json:"protocol"`
	LocalAddress  string  `json:"local_address"`
	LocalIP       string  `json:"local_ip"`
	LocalPort     uint16  `json:"local_port"`
	RemoteAddress *string `json:"remote_address,omitempty"`
	RemoteIP      *string `json:"remote_ip,omitempty"`
	RemotePort    *uint16 `json:"remote_port,omitempty"`
	State         string  `json:"state"`
	PID           *uint32 `json:"pid,omitempty"`
	ProcessName   *string `json:"process_name,omitempty"`
}

// MarshalJSON emits the flat consumer contract with optional fields
// omitted when absent.
func (c ConnectionInfo) MarshalJSON() ([]byte, error) {
	out := connectionJSON{
		Protocol:     c.Protocol.String(),
		LocalAddress: c.Local.String(),
		LocalIP:      c.Local.IP.String(),
		LocalPort:    c.Local.Port,
		State:        c.State.String(),
	}
	if c.Remote != nil {
		addr := c.Remote.String()
		ip := c.Remote.IP.String()
		port := c.Remote.Port
		out.RemoteAddress = &addr
		out.RemoteIP = &ip
		out.RemotePort = &port
	}
	if c.Process != nil {
		pid := c.Process.PID
		out.PID = &pid
		if c.Process.Name != "" {
			name := c.Process.Name
			out.ProcessName = &name
		}
	}
	return json.Marshal(out)
}
