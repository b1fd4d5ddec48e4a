package cli

import (
	"flag"
	"fmt"
	"io"
)

// Options are the command line settings of the coordinator service.
type Options struct {
	ConfigPath string
	Port       int
}

// Parse reads the coordinator flags from args. A port of 0 means the
// configured service port is used.
func Parse(args []string) (Options, error) {
	opts := Options{}

	fs := flag.NewFlagSet("coordinator", flag.ContinueOnError)
	fs.StringVar(&opts.ConfigPath, "config", "config/config.yaml", "path to the YAML configuration file")
	fs.IntVar(&opts.Port, "port", 0, "override the configured service port")
	AttachUsage(fs)

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.Port < 0 || opts.Port > 65535 {
		return opts, fmt.Errorf("invalid port %d", opts.Port)
	}
	return opts, nil
}

// PrintUsage prints the usage information with examples.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, "\033[36m") // cyan

	fmt.Fprintln(w, `Usage:
  ./fleetdesk [flags]

Flags:
  --config=<path>   path to the YAML configuration file
  --port=<port>     override the configured service port

Examples:
  ./fleetdesk --config=config/config.yaml
  ./fleetdesk --port=3100`)

	fmt.Fprint(w, "\033[0m") // reset
}

// AttachUsage wires a concise usage to a FlagSet.
func AttachUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: ./fleetdesk [flags]")
		fs.PrintDefaults()
	}
}
