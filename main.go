package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookhive/auth"
	"bookhive/config"
	"bookhive/crypto"
	"bookhive/db"
	"bookhive/handlers"
	"bookhive/i18n"
	"bookhive/logger"

	"github.com/gorilla/csrf"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "bookhive",
		Short:         "Library management web application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to the JSON configuration file")
	root.AddCommand(serveCmd(), setupCmd(), adminPasswordCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration, starts the logger and opens a migrated database.
func bootstrap(ctx context.Context) (config.Config, *sql.DB, error) {
	if err := config.LoadConfig(configPath); err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	cfg := config.AppConfig

	if err := logger.Init(cfg.LogLevel); err != nil {
		return cfg, nil, fmt.Errorf("init logger: %w", err)
	}

	conn, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return cfg, nil, err
	}
	if err := db.Setup(ctx, conn, logger.Logger); err != nil {
		conn.Close()
		return cfg, nil, err
	}
	return cfg, conn, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Set up the database if needed and serve HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer conn.Close()

			if err := i18n.LoadTranslations(cfg.I18nPath); err != nil {
				return fmt.Errorf("load translations: %w", err)
			}

			keys, err := crypto.DeriveSessionKeys(cfg.SessionKey)
			if err != nil {
				return err
			}

			h := handlers.New(cfg,
				db.NewBookStore(conn),
				auth.NewService(db.NewUserStore(conn)),
				auth.NewSessions(keys, cfg.SecureCookies),
				logger.Logger,
			)

			protect := csrf.Protect(keys.CSRF,
				csrf.Secure(cfg.SecureCookies),
				csrf.Path("/"),
				csrf.FieldName("csrf_token"),
			)

			srv := &http.Server{
				Addr:         cfg.Addr(),
				Handler:      plaintextUnlessSecure(cfg.SecureCookies, protect(h.NewRouter())),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}
			return run(srv)
		},
	}
}

// plaintextUnlessSecure tells the CSRF middleware the site is served over plain HTTP,
// so it does not demand a TLS Referer on local deployments.
func plaintextUnlessSecure(secure bool, next http.Handler) http.Handler {
	if secure {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func run(srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Logger.Info("Server starting", zap.String("addr", srv.Addr), zap.String("app", config.AppConfig.AppName))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	logger.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}
	logger.Logger.Info("Server exited")
	return nil
}
