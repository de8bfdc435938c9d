package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"overseerr-mcp/config"
	"overseerr-mcp/overseerr"
	"overseerr-mcp/plex"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger

	// Command flags
	transport string
	host      string
	port      int

	version   = "dev"
	buildTime = "unknown"
)

// SetVersion sets the version information from build flags
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "overseerr-mcp",
	Short: "An MCP server exposing Overseerr and Plex as agent tools",
	Long: `overseerr-mcp serves a set of MCP tools over stdio, SSE, or streamable
HTTP that let an agent search for media, inspect and create Overseerr
requests, browse the Plex library, and check availability status.`,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml, env vars work without one)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp loads the configuration and sets up logging
func initializeApp(cmd *cobra.Command, args []string) error {
	// version must work without a configuration.
	if cmd.Name() == "version" {
		return nil
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)
	return nil
}

// setupLogger configures the zerolog logger. Logs always go to stderr:
// with the stdio transport, stdout belongs to the protocol.
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" || !isatty.IsTerminal(os.Stderr.Fd()) {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

// testCmd verifies connectivity to the configured upstreams
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connections to Overseerr and Plex",
	Long:  `Test the connections to your Overseerr instance (and Plex, when configured) and display basic information.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Printf("Testing connection to Overseerr at %s...\n", cfg.Overseerr.URL)
	client, err := overseerr.NewClient(cfg.Overseerr.URL, cfg.Overseerr.APIKey, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	status, err := client.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("overseerr connection failed: %w", err)
	}
	fmt.Println("✓ Connection successful!")
	fmt.Printf("- Version: %s\n", status.Version)
	if status.UpdateAvailable {
		fmt.Println("- An Overseerr update is available")
	}

	if cfg.HasPlex() {
		fmt.Printf("\nTesting connection to Plex at %s...\n", cfg.Plex.URL)
		plexClient, err := plex.NewClient(cfg.Plex.URL, cfg.Plex.Token, logger)
		if err != nil {
			return err
		}
		identity, err := plexClient.GetStatus(ctx)
		if err != nil {
			return fmt.Errorf("plex connection failed: %w", err)
		}
		fmt.Println("✓ Plex connection successful!")
		fmt.Printf("- Version: %s\n", identity.Version)
		fmt.Printf("- Machine ID: %s\n", identity.MachineID)

		sections, err := plexClient.GetLibrarySections(ctx)
		if err != nil {
			return fmt.Errorf("failed to list library sections: %w", err)
		}
		fmt.Printf("- Library sections: %d\n", len(sections))
		for _, s := range sections {
			fmt.Printf("  • %s (%s)\n", s.Title, s.Type)
		}
	} else {
		fmt.Println("\nPlex integration: Disabled")
	}

	return nil
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("overseerr-mcp %s (built %s)\n", version, buildTime)
	},
}
