package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vsocklat",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Peer selection
	flags.String("transport", string(TransportVSock), "Transport to use: 'tcp' or 'vsock'")
	flags.String("host", "127.0.0.1", "Peer host or IPv4 address (tcp)")
	flags.Uint32("cid", 16, "Peer context ID (vsock)")
	flags.Uint32P("port", "p", 5001, "Peer port")

	// Measurement flags
	flags.IntP("rounds", "n", 1000, "Number of measured rounds (the same count again is run as warm-up)")
	flags.IntP("payload-bytes", "b", 1024, "Payload size per direction per round")
	flags.IntP("rate", "r", 0, "Rounds per second ceiling (0 means unpaced)")
	flags.Int("connect-attempts", 5, "Connect attempts per cycle before backing off to a fresh cycle")

	// Mode and output flags
	flags.Bool("listen", false, "Run the echo server instead of the client")
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.String("output-file", "", "Append the JSON report to this file (lock-protected)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config,
// overriding values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("transport") {
		val, err := fs.GetString("transport")
		if err != nil {
			return err
		}
		cfg.Transport = Transport(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("host") {
		val, err := fs.GetString("host")
		if err != nil {
			return err
		}
		cfg.Host = strings.TrimSpace(val)
	}
	if fs.Changed("cid") {
		val, err := fs.GetUint32("cid")
		if err != nil {
			return err
		}
		cfg.CID = val
	}
	if fs.Changed("port") {
		val, err := fs.GetUint32("port")
		if err != nil {
			return err
		}
		cfg.Port = val
	}
	if fs.Changed("rounds") {
		val, err := fs.GetInt("rounds")
		if err != nil {
			return err
		}
		cfg.Rounds = val
	}
	if fs.Changed("payload-bytes") {
		val, err := fs.GetInt("payload-bytes")
		if err != nil {
			return err
		}
		cfg.PayloadBytes = val
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("connect-attempts") {
		val, err := fs.GetInt("connect-attempts")
		if err != nil {
			return err
		}
		cfg.ConnectAttempts = val
	}
	if fs.Changed("listen") {
		val, err := fs.GetBool("listen")
		if err != nil {
			return err
		}
		cfg.Listen = val
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("output-file") {
		val, err := fs.GetString("output-file")
		if err != nil {
			return err
		}
		cfg.OutputFile = strings.TrimSpace(val)
	}
	if fs.Changed("verbose") {
		val, err := fs.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = val
	}
	return nil
}
