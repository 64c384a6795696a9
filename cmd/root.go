// ABOUTME: Root command for the vm-allocator CLI
// ABOUTME: Handles global flags, logging, and local versus remote mode

package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/vm-allocator/internal/output"
	"github.com/markalston/vm-allocator/logger"
)

const (
	envAPIURL      = "VM_ALLOCATOR_API_URL"
	envCatalogFile = "VM_ALLOCATOR_CATALOG_FILE"
)

var (
	apiURL       string
	outputFormat string
	catalogFile  string
	logLevel     string
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "vm-allocator",
	Short: "Find the least wasteful VM size for a CPU-bound workload",
	Long: `vm-allocator sizes a fleet of identical VMs for a workload of processes that
each need a fixed number of dedicated CPUs. For every VM size in a catalog it
computes how many VMs are needed, how many billable CPUs sit idle, and the
hourly cost, then picks the size with the fewest billable CPUs.

Commands compute locally unless an API URL is configured, in which case they
call a running "vm-allocator serve" instance.

Environment Variables:
  VM_ALLOCATOR_API_URL       Allocation server URL (default: compute locally)
  VM_ALLOCATOR_CATALOG_FILE  YAML or JSON file with extra VM size catalogs`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(logger.New(cmd.ErrOrStderr(), logLevel, "text"))
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Allocation server URL (overrides "+envAPIURL+")")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", string(output.TableFormat), "Output format: table, csv, json, or yaml")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog-file", "", "Catalog file to load in local mode (overrides "+envCatalogFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, or error")
}

// GetAPIURL returns the API URL from flag or env. Empty means local mode.
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	return os.Getenv(envAPIURL)
}

// GetCatalogFile returns the catalog file from flag or env.
func GetCatalogFile() string {
	if catalogFile != "" {
		return catalogFile
	}
	return os.Getenv(envCatalogFile)
}

// GetOutputOptions validates --output and returns the render options.
func GetOutputOptions() (output.Options, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return output.Options{}, err
	}
	return output.Options{Format: format, Pretty: true}, nil
}
