package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/coursedesk/coursedesk/internal/server"
	"github.com/coursedesk/coursedesk/internal/service"
)

const banner = `
  ___ ___  _   _ ___  ___ ___ ___  ___ ___ _  _
 / __/ _ \| | | | _ \/ __| __|   \| __/ __| |/ /
| (_| (_) | |_| |   /\__ \ _|| |) | _|\__ \ ' <
 \___\___/ \___/|_|_\|___/___|___/|___|___/_|\_\
`

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Coursedesk API server",
		Long:  "Start the HTTP server that exposes the storefront and admin APIs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(dev bool) error {
	fmt.Print(banner)
	fmt.Println()

	logLevel := slog.LevelInfo
	if dev {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	logger.Info("store opened", "driver", cfg.Database.Driver)

	jwtSecret, generated := ensureJWTSecret(cfg)
	if generated {
		logger.Warn("auth.jwt_secret not set, using an ephemeral secret; sessions will not survive restarts")
	}

	authSvc := service.NewAuthService(st, jwtSecret, cfg.Auth.TokenTTL)
	coupons := service.NewCouponService(st)
	provider := newProvider(cfg)
	enrollments := service.NewEnrollmentService(st, coupons, provider)
	logger.Info("checkout provider ready", "provider", provider.Name())

	hasAdmin, err := st.HasAnyAdmin(context.Background())
	if err != nil {
		logger.Warn("failed to check for admin", "error", err)
	}
	if !hasAdmin {
		logger.Warn("no admin account found - POST /api/v1/admin-auth/setup or run: coursedesk admin create")
	}

	srv := server.New(cfg.Server, st, authSvc, coupons, enrollments, logger)

	fmt.Printf("→ Listening on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("→ OpenAPI:    http://%s:%d/openapi.json\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("→ Health:     http://%s:%d/healthz\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("→ Checkout:   %s\n", provider.Name())
	fmt.Println()

	return srv.ListenAndServe()
}
