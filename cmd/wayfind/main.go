package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wayfind-dev/wayfind/internal/config"
	"github.com/wayfind-dev/wayfind/internal/errors"
	"github.com/wayfind-dev/wayfind/pkg/dispatch"
	"github.com/wayfind-dev/wayfind/pkg/routefile"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦ ╦┌─┐┬ ┬┌─┐┬┌┐┌┌┬┐
  ║║║├─┤└┬┘├┤ ││││ ││
  ╚╩╝┴ ┴ ┴ └  ┴┘└┘─┴┘
`

// routeFiles is the persistent --routes flag, shared by every command
// that loads a route table.
var routeFiles []string

func main() {
	rootCmd := &cobra.Command{
		Use:   "wayfind",
		Short: "Bidirectional URL dispatch for Go services",
		Long: `Wayfind resolves request paths to handlers and builds paths
back from route names.

Routes are declared in HCL route files. Commands that need a route
table read the files given with --routes, falling back to the routes
listed in wayfind.json.

  • Typed path captures with pluggable converters
  • Ordered first-match resolution over nested tables
  • Namespace-aware reverse resolution
  • Standalone dispatch server with Prometheus metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringSliceVarP(&routeFiles, "routes", "r",
		nil, "Route files to load, in order (default from wayfind.json)")

	rootCmd.AddCommand(
		checkCmd(),
		routesCmd(),
		matchCmd(),
		reverseCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		var werr *errors.Error
		if stderrors.As(err, &werr) {
			fmt.Fprintln(os.Stderr, werr.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

// loadTable builds the dispatch table from the --routes flag or, when
// the flag is absent, from the routes listed in wayfind.json.
func loadTable(opts ...routefile.LoaderOption) (*dispatch.Table, *config.Config, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, nil, err
	}

	files := routeFiles
	if len(files) == 0 {
		files = cfg.Routes
	}
	if len(files) == 0 {
		return nil, nil, errors.New("W040").
			WithSuggestion("Pass route files with --routes, or list them under \"routes\" in wayfind.json")
	}

	loader := routefile.NewLoader(opts...)
	table, err := loader.Load(files...)
	if err != nil {
		return nil, nil, err
	}
	return table, cfg, nil
}

// printBanner prints the Wayfind ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
