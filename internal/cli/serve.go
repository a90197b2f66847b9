package cli

import (
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"issuetrack/internal/logging"
	"issuetrack/internal/store"
	"issuetrack/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var (
		addr    string
		dbPath  string
		memory  bool
		noSeed  bool
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference issue store (REST API backed by sqlite)",
		Args:  cobra.NoArgs,
		Example: strings.TrimSpace(`
# Throwaway server with the sample issues
issuetrack serve --memory

# Persistent store on another port
issuetrack serve --addr 127.0.0.1:9000 --db ./issues.sqlite
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.config()
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			if strings.TrimSpace(addr) == "" {
				return writeErr(cmd, errors.New("serve: missing --addr"))
			}
			path := strings.TrimSpace(dbPath)
			if path == "" {
				path = cfg.Server.DatabasePath()
			}
			if memory {
				path = store.MemoryPath
			}

			// Server logs go to stderr; there is no TUI to protect.
			log := logging.NewWriter(cmd.ErrOrStderr(), cfg.Logging.Level)
			if !strings.EqualFold(cfg.Logging.Level, "debug") {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := store.Open(ctx, store.Options{Path: path, Seed: cfg.Server.Seed && !noSeed, Logger: log})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			srv, err := web.NewServer(web.ServerConfig{Addr: addr, AllowOrigins: origins, Logger: log}, st)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := srv.ListenAndServe(ctx); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default from server.db_path)")
	cmd.Flags().BoolVar(&memory, "memory", false, "Keep everything in memory (nothing is written to disk)")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "Don't insert sample issues into an empty database")
	cmd.Flags().StringSliceVar(&origins, "allow-origin", web.DefaultAllowOrigins, "Browser origins allowed cross-origin access")
	cmd.MarkFlagsMutuallyExclusive("db", "memory")
	return cmd
}
