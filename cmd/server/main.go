// Command lingua-auth starts the account gRPC server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/lingua-auth/internal/config"
	"github.com/and161185/lingua-auth/internal/migrate"
	"github.com/and161185/lingua-auth/internal/repository/postgres"
	grpcserver "github.com/and161185/lingua-auth/internal/server/grpc"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and starts the gRPC server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Flags override the environment.
	addr := flag.String("addr", cfg.Addr, "listen address")
	dev := flag.Bool("dev", cfg.Local(), "enable server reflection (dev only)")
	flag.Parse()
	cfg.Addr = *addr

	logger, _ := zap.NewProduction()
	if cfg.Local() {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("env", cfg.AppEnv),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DSN, logger); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer db.Close()

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		logger.Fatal("token store", zap.Error(err))
	}
	defer closeStore()

	authSvc, err := newService(ctx, cfg, postgres.NewUserRepo(db), db, store, logger)
	if err != nil {
		logger.Fatal("service", zap.Error(err))
	}

	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(logger),
			grpcserver.RequestIDUnary(),
			grpcserver.LoggingUnary(logger),
			grpcserver.AuthUnary(authSvc),
		),
	}
	tlsOn := cfg.TLSCert != "" && cfg.TLSKey != ""
	if tlsOn {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			logger.Fatal("failed to load TLS cert/key", zap.Error(err))
		}
		opts = append(opts, grpc.Creds(creds))
	} else if !cfg.Local() {
		logger.Warn("TLS_CERT/TLS_KEY not set, serving plaintext")
	}
	s := grpc.NewServer(opts...)

	grpcserver.RegisterAuthServer(s, grpcserver.New(authSvc))

	// Health & reflection (dev)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	if *dev {
		reflection.Register(s)
	}

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.Bool("tls", tlsOn))
		errCh <- s.Serve(lis)
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		hs.Shutdown()
		done := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			s.Stop()
		}
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
