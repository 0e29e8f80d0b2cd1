package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZaguanLabs/transcache"
	"github.com/ZaguanLabs/transcache/cache"
	"github.com/ZaguanLabs/transcache/server"
	"github.com/ZaguanLabs/transcache/store"
	"github.com/ZaguanLabs/transcache/vault"
)

func runServe(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "YAML config file")
	addr := fs.String("addr", "", "Listen address (overrides server.addr)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	log, flush, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	defer flush()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	backend, err := newBackend(cfg.Redis)
	if err != nil {
		return err
	}
	defer backend.Close()
	if cfg.Redis.URL == "" {
		log.Warn("no redis configured, cache is local to this process", nil)
	}

	records, err := store.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer records.Close()

	v, err := vault.New(cfg.Vault.Secret)
	if err != nil {
		return err
	}

	cacheStore := cache.NewStore(backend, cache.WithLogger(log))
	svc := transcache.NewService(newRouter(cfg.Providers, log),
		transcache.WithCache(cacheStore),
		transcache.WithCredentials(records, v),
		transcache.WithServiceLogger(log),
	)

	srv := server.New(svc, server.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		server.WithCacheStore(cacheStore),
		server.WithRecords(records),
		server.WithVault(v),
		server.WithLogger(log),
		server.WithCORSOrigins(cfg.Server.CORSOrigins...),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting", transcache.Fields{
		"version":   version,
		"providers": svc.Router().Providers(),
	})
	return srv.Run(ctx, cfg.Server.Addr)
}

// runToken issues a bearer token signed with the configured JWT secret.
func runToken(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "YAML config file")
	user := fs.String("user", "", "User ID (token subject)")
	ttl := fs.Duration("ttl", 24*time.Hour, "Token lifetime")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		fs.Usage()
		return errors.New("--user is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) is not set")
	}

	token, err := server.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer).IssueToken(*user, *ttl)
	if err != nil {
		return fmt.Errorf("signing token: %w", err)
	}
	fmt.Fprintln(stdout, token)
	return nil
}
