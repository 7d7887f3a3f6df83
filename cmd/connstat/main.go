// connstat prints the host's active network sockets with their state
// and owning process, netstat style.
package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/AstroProfundis/tabby"
	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nervosys/nvstats-sub001/pkg/model"
	"github.com/nervosys/nvstats-sub001/pkg/monitor"
)

var (
	flagListening   bool
	flagEstablished bool
	flagProto       string
	flagJSON        bool
	flagNoColor     bool
	flagVerbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "connstat",
	Short: "List active network sockets with state and owning process",
	Args:  cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
		if flagVerbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		if flagNoColor {
			color.NoColor = true
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		m := monitor.New(monitor.WithNameCache(monitor.NewNameCache()))

		conns, err := collect(m)
		if err != nil {
			return err
		}

		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(conns)
		}

		printTable(conns)
		return nil
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&flagListening, "listening", "l", false, "only listening sockets and UDP endpoints")
	rootCmd.Flags().BoolVarP(&flagEstablished, "established", "e", false, "only established TCP connections")
	rootCmd.Flags().StringVarP(&flagProto, "proto", "p", "", "single protocol: tcp, tcp6, udp or udp6")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	rootCmd.MarkFlagsMutuallyExclusive("listening", "established", "proto")
}

func collect(m *monitor.ConnectionMonitor) ([]model.ConnectionInfo, error) {
	switch {
	case flagListening:
		return m.ListeningSockets(), nil
	case flagEstablished:
		return m.EstablishedConnections(), nil
	case flagProto != "":
		switch strings.ToLower(flagProto) {
		case "tcp":
			return m.TCPConnections()
		case "tcp6":
			return m.TCP6Connections()
		case "udp":
			return m.UDPEndpoints()
		case "udp6":
			return m.UDP6Endpoints()
		default:
			return nil, errors.Newf("unknown protocol %q", flagProto)
		}
	default:
		return m.AllConnections(), nil
	}
}

func printTable(conns []model.ConnectionInfo) {
	t := tabby.New()
	t.AddHeader("PROTO", "LOCAL", "REMOTE", "STATE", "PROCESS")
	for _, c := range conns {
		remote := c.RemoteAddress()
		if remote == "" {
			remote = "*"
		}
		t.AddLine(c.Protocol, c.LocalAddress(), remote, colorState(c.State), c.Process)
	}
	t.Print()
}

func colorState(s model.ConnectionState) string {
	switch s {
	case model.StateEstablished:
		return color.GreenString(s.String())
	case model.StateListen:
		return color.CyanString(s.String())
	case model.StateTimeWait, model.StateCloseWait, model.StateClosing,
		model.StateFinWait1, model.StateFinWait2, model.StateLastAck:
		return color.YellowString(s.String())
	case model.StateUnknown:
		return color.RedString(s.String())
	}
	return s.String()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
