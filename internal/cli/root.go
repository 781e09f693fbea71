// Package cli provides the command-line interface for drape.
package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/drape/internal/config"
	"github.com/jmylchreest/drape/internal/logging"
	"github.com/jmylchreest/drape/internal/storage"
	"github.com/jmylchreest/drape/internal/version"
)

var (
	// Global flags
	globalVerbose bool
	globalQuiet   bool
	globalDataDir string

	// Populated by loadEnvironment before any subcommand runs.
	cfg    config.Config
	logger hclog.Logger = logging.Discard()

	rootCmd = &cobra.Command{
		Use:   "drape",
		Short: "Outfit discovery and pin styling",
		Long: `drape finds products, builds complete outfits around a piece you like and
composes Pinterest-style pins from the results.

Search providers, image generation and background removal are configured
through the environment (or a .env file in the working directory):

  RAPIDAPI_KEY        product search via RapidAPI
  DRAPE_SEARCH_PLUGIN path to a search provider plugin
  DRAPE_CATALOG       path to a local JSON product catalog
  GOOGLE_API_KEY      background and text idea generation
  CLOUDINARY_URL      background removal and pin publishing
  DRAPE_GCS_BUCKET    pin publishing to Google Cloud Storage`,
		Version:           version.Short(),
		SilenceUsage:      true,
		PersistentPreRunE: loadEnvironment,
	}
)

// Execute runs the root command. It is called by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&globalQuiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&globalDataDir, "data-dir", "", "directory for saved state (default: $XDG_DATA_HOME/drape)")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(outfitCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(wardrobeCmd)
	rootCmd.AddCommand(avatarCmd)
	rootCmd.AddCommand(linktreeCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadEnvironment reads configuration and builds the root logger. Flags win
// over the environment.
func loadEnvironment(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg = loaded
	if globalDataDir != "" {
		cfg.DataDir = globalDataDir
	}

	logger = logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Verbose: globalVerbose,
		Quiet:   globalQuiet,
		Output:  cmd.ErrOrStderr(),
	})
	return nil
}

// dataDir returns the state directory, creating it if needed.
func dataDir() (string, error) {
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	dir, err := storage.DefaultDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine data directory: %w", err)
	}
	return dir, nil
}

// openStore opens the file store in the data directory.
func openStore() (*storage.File, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewFile(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}
	logger.Debug("opened store", "dir", store.Dir())
	return store, nil
}

// info prints progress output unless --quiet is set.
func info(cmd *cobra.Command, format string, args ...any) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including build date, commit hash, and Go version.`,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}
