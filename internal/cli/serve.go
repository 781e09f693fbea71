package cli

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/drape/internal/cloud"
	"github.com/jmylchreest/drape/internal/genai"
	"github.com/jmylchreest/drape/internal/server"
)

var (
	serveAddr    string
	servePlugin  string
	serveCatalog string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON HTTP API",
	Long: `Serve the drape API over HTTP. Routes whose provider is not configured
answer 503 rather than failing at startup.

Examples:
  drape serve
  drape serve --addr :8080 --catalog ./catalog.json`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: :$PORT or :3001)")
	serveCmd.Flags().StringVar(&servePlugin, "plugin", "", "search provider plugin executable")
	serveCmd.Flags().StringVar(&serveCatalog, "catalog", "", "serve products from a local JSON catalog")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log := logger.Named("serve")

	if pids, err := server.OtherInstances(); err != nil {
		log.Debug("could not check for other servers", "error", err)
	} else if len(pids) > 0 {
		log.Warn("another drape process is running; saved state may be overwritten", "pids", pids)
	}

	deps := server.Deps{Logger: logger}

	backend, err := openSearch(ctx, servePlugin, serveCatalog, 0)
	switch {
	case errors.Is(err, errNoSearch):
		log.Warn("product search is not configured")
	case err != nil:
		return err
	default:
		defer backend.close()
		deps.Searcher, deps.Details = backend.searcher, backend.details
	}

	gen, err := openGenerator(ctx)
	switch {
	case errors.Is(err, genai.ErrNotConfigured):
		log.Warn("image generation is not configured")
	case err != nil:
		return err
	default:
		deps.Generator = gen
	}

	cld, err := openCloudinary()
	switch {
	case errors.Is(err, cloud.ErrNotConfigured):
		log.Warn("background removal is not configured")
	case err != nil:
		return err
	default:
		deps.Remover = cld
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Addr()
	}
	return server.New(deps).Run(ctx, addr)
}
