package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/soheilgoodarzi/domain-manager-assessment/internal/app/server"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/app/version"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/client"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/config"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/database"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/domain"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/query"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/support"
)

// Run parses the command line and runs the selected server until SIGINT or
// SIGTERM.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCommand().ExecuteContext(ctx)
}

func NewRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "domainadmin",
		Short:         "Admin UI for managing domain records",
		Version:       version.BuildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if envFile != "" {
				config.LoadEnvFile(envFile)
			} else {
				config.LoadEnvFile()
			}
			cfg := config.FromEnv()
			cfg.ApplyLogLevel()
			config.SetConfig(cfg)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default ./.env)")

	root.AddCommand(serveCmd(), apiCmd())
	return root
}

func serveCmd() *cobra.Command {
	var (
		port   int
		apiURL string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetConfig()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("api-url") {
				cfg.API.BaseURL = apiURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			config.SetConfig(cfg)
			return runUI(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "port for the admin UI (env PORT)")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "base URL of the domain REST API (env DOMAIN_API_URL)")
	return cmd
}

func apiCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Run the reference domain REST API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetConfig()
			if cmd.Flags().Changed("port") {
				cfg.APIPort = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			config.SetConfig(cfg)
			return runAPI(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8000, "port for the REST API (env API_PORT)")
	return cmd
}

func runUI(ctx context.Context, cfg config.Config) error {
	httpClient, err := client.NewHTTPClient(cfg.API.Proxy, cfg.API.Timeout)
	if err != nil {
		return fmt.Errorf("api transport: %w", err)
	}
	apiClient, err := client.New(cfg.API.BaseURL, client.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("api client: %w", err)
	}
	log.Info("Using domain API", "url", apiClient.BaseURL(), "proxy", cfg.API.Proxy != "")

	g, gctx := errgroup.WithContext(ctx)

	store := query.NewStore[[]domain.Domain](gctx, query.DomainsKey, apiClient.Domains.List)

	if cfg.RedisURL != "" {
		redisClient, err := support.GetRedisClient(gctx, cfg.RedisURL)
		if err != nil {
			log.Warn("Cache invalidation stays local", "error", err)
		} else {
			invalidations := query.EnableRedisSync(gctx, redisClient, cfg.InstanceID, store)
			defer func() {
				invalidations.Close()
				if err := support.CloseRedisClient(); err != nil {
					log.Warn("error closing redis client", "error", err)
				}
			}()
		}
	}

	srv := server.New(server.Options{
		API:        apiClient.Domains,
		Store:      store,
		SessionTTL: cfg.UI.SessionTTL,
		RenderWait: cfg.UI.RenderWait,
		PrettyHTML: cfg.UI.PrettyHTML,
	})
	defer srv.Close()

	g.Go(func() error {
		return server.ListenAndServe(gctx, "domain admin UI", cfg.Port, srv.Routes())
	})

	return ignoreCanceled(g.Wait())
}

func runAPI(ctx context.Context, cfg config.Config) error {
	dialector, err := database.DialectorFor(cfg.Database)
	if err != nil {
		return err
	}
	if _, err := database.SetupDB(database.WithDialector(dialector)); err != nil {
		return err
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			log.Warn("error closing database", "error", err)
		}
	}()
	log.Info("Database ready", "driver", cfg.Database.Driver)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(gctx, "domain API", cfg.APIPort, server.APIRoutes())
	})

	return ignoreCanceled(g.Wait())
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
