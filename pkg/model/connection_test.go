package model

import (
	"encoding/json"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func ep(ip string, port uint16) Endpoint {
	return Endpoint{IP: netip.MustParseAddr(ip), Port: port}
}

func TestEndpointString(t *testing.T) {
	tests := []struct {
		ep   Endpoint
		want string
	}{
		{ep("127.0.0.1", 8080), "127.0.0.1:8080"},
		{ep("0.0.0.0", 80), "0.0.0.0:80"},
		{ep("::1", 443), "[::1]:443"},
		{ep("fe80::5578:afa9:4caf:27a1", 22), "[fe80::5578:afa9:4caf:27a1]:22"},
	}
	for _, tt := range tests {
		if got := tt.ep.String(); got != tt.want {
			t.Fatalf("Endpoint.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestStateStrings(t *testing.T) {
	tests := []struct {
		state ConnectionState
		want  string
	}{
		{StateEstablished, "ESTABLISHED"},
		{StateSynReceived, "SYN_RECV"},
		{StateListen, "LISTEN"},
		{StateDeleteTcb, "DELETE_TCB"},
		{StateStateless, "-"},
		{StateUnknown, "UNKNOWN"},
		{ConnectionState(999), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Fatalf("state %d = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestProcessString(t *testing.T) {
	var p *Process
	require.Equal(t, "-", p.String())
	require.Equal(t, "42", (&Process{PID: 42}).String())
	require.Equal(t, "42/nginx", (&Process{PID: 42, Name: "nginx"}).String())
}

func TestConnectionJSONFull(t *testing.T) {
	remote := ep("10.0.0.9", 443)
	c := ConnectionInfo{
		Protocol: TCP,
		Local:    ep("127.0.0.1", 8080),
		Remote:   &remote,
		State:    StateEstablished,
		Process:  &Process{PID: 4242, Name: "curl"},
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, "TCP", out["protocol"])
	require.Equal(t, "127.0.0.1:8080", out["local_address"])
	require.Equal(t, "127.0.0.1", out["local_ip"])
	require.EqualValues(t, 8080, out["local_port"])
	require.Equal(t, "10.0.0.9:443", out["remote_address"])
	require.Equal(t, "ESTABLISHED", out["state"])
	require.EqualValues(t, 4242, out["pid"])
	require.Equal(t, "curl", out["process_name"])
}

func TestConnectionJSONOmitsAbsentFields(t *testing.T) {
	c := ConnectionInfo{
		Protocol: UDP6,
		Local:    ep("::", 53),
		State:    StateStateless,
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, "[::]:53", out["local_address"])
	require.NotContains(t, out, "remote_address")
	require.NotContains(t, out, "remote_ip")
	require.NotContains(t, out, "remote_port")
	require.NotContains(t, out, "pid")
	require.NotContains(t, out, "process_name")
	require.Equal(t, "-", out["state"])
}
