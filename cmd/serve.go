// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/canonical/portal-auth/internal/authorization"
	"github.com/canonical/portal-auth/internal/config"
	"github.com/canonical/portal-auth/internal/db"
	"github.com/canonical/portal-auth/internal/identity"
	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring/prometheus"
	"github.com/canonical/portal-auth/internal/ratelimit"
	"github.com/canonical/portal-auth/internal/storage"
	"github.com/canonical/portal-auth/internal/tracing"
	"github.com/canonical/portal-auth/pkg/account"
	"github.com/canonical/portal-auth/pkg/authentication"
	"github.com/canonical/portal-auth/pkg/portal"
	"github.com/canonical/portal-auth/pkg/session"
	"github.com/canonical/portal-auth/pkg/web"
)

const (
	serviceName     = "portal-auth"
	shutdownTimeout = 15 * time.Second
	webhookTimeout  = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long: `Launch the web application, list of environment variables is available in the readme.

LEGACY_ADMIN_BYPASS (default true) lets accounts with the global admin role
manage the members of any portal, without a PORTAL_ADMIN membership there.
Set it to false to confine admins to the portals they administer.

TRUSTED_PROXIES lists the proxy IPs or CIDRs whose X-Forwarded-For,
X-Real-IP and True-Client-IP headers are believed. When empty the peer
address is used for rate limiting and security logs.`,
	Run: func(cmd *cobra.Command, args []string) {
		main()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return fmt.Errorf("issues with environment sourcing: %w", err)
	}

	if err := specs.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	trustedProxies, err := specs.TrustedProxyPrefixes()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewLogger(specs.LogLevel)
	defer logger.Sync()

	monitor := prometheus.NewMonitor(serviceName, logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, serviceName, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			logger.Errorf("failed to flush traces: %v", err)
		}
	}()

	dbClient, err := db.NewDBClient(dbConfig(specs), tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create database client: %v", err)
	}
	defer dbClient.Close()
	s := storage.NewStorage(dbClient, tracer, monitor, logger)

	authorizer := authorization.NewAuthorizer(s, specs.LegacyAdminBypass, tracer, monitor, logger)
	if specs.LegacyAdminBypass {
		logger.Warn("Legacy admin bypass is enabled, global admins can manage every portal")
	}

	issuer, verifier, err := authentication.NewJWTAuthenticator(
		authentication.NewConfig(specs.JWTSecret, specs.JWTIssuer, specs.AccessTokenTTL),
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to set up token authentication: %w", err)
	}

	hasher, err := authentication.NewBcryptHasher(specs.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to set up password hashing: %w", err)
	}

	tracingMiddleware := tracing.NewMiddleware(monitor, logger)

	var notifier session.NotifierInterface = session.NewNoopNotifier(logger)
	if specs.ResetWebhookURL != "" {
		notifier = session.NewWebhookNotifier(
			specs.ResetWebhookURL,
			tracingMiddleware.HTTPClient(&http.Client{Timeout: webhookTimeout}),
			tracer,
			monitor,
			logger,
		)
	}

	sessionService := session.NewService(
		s,
		dbClient,
		issuer,
		hasher,
		notifier,
		session.Config{RefreshTTL: specs.RefreshTokenTTL, ResetTTL: specs.ResetTokenTTL},
		tracer,
		monitor,
		logger,
	)
	accountService := account.NewService(s, dbClient, hasher, tracer, monitor, logger)
	portalService := portal.NewService(s, tracer, monitor, logger)

	identityMiddleware := identity.NewMiddleware(tracer, monitor, logger)
	authMiddleware := authentication.NewMiddleware(verifier, authorizer, tracer, monitor, logger)
	limiter := ratelimit.NewLimiter(specs.RateLimitRPS, specs.RateLimitBurst, monitor, logger)

	router := web.NewRouter(
		sessionService,
		accountService,
		portalService,
		authMiddleware,
		identityMiddleware,
		limiter,
		dbClient,
		web.Options{
			CORSAllowedOrigins: specs.CORSAllowedOrigins,
			ExposeResetToken:   !specs.IsProduction(),
			TrustedProxies:     trustedProxies,
		},
		tracer,
		monitor,
		logger,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	healthServer := health.NewServer()
	grpcServer := grpc.NewServer(
		tracingMiddleware.GRPCServerOption(),
		grpc.ChainUnaryInterceptor(
			identityMiddleware.GRPCInterceptor,
			authMiddleware.GRPCInterceptor,
		),
	)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	lis, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%v", specs.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("Starting gRPC server on port %v", specs.GRPCPort)
		healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Infof("Starting HTTP server on port %v", specs.Port)
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return limiter.Run(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Security().SystemShutdown()
		healthServer.Shutdown()
		grpcServer.GracefulStop()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func dbConfig(specs *config.EnvSpec) db.Config {
	return db.Config{
		DSN:             specs.DSN,
		MaxConns:        specs.DBMaxConns,
		MinConns:        specs.DBMinConns,
		MaxConnLifetime: specs.DBMaxConnLifetime,
		MaxConnIdleTime: specs.DBMaxConnIdleTime,
		TracingEnabled:  specs.TracingEnabled,
	}
}

func main() {
	if err := serve(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
