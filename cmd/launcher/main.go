package main

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/minestat/launcher/internal/auth"
	"github.com/minestat/launcher/internal/cli"
	"github.com/minestat/launcher/internal/config"
	"github.com/minestat/launcher/internal/credstore"
	"github.com/minestat/launcher/internal/logging"
	"github.com/minestat/launcher/internal/session"
	"github.com/minestat/launcher/internal/token"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error(ctx, "cannot create data directory", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	out := os.Stdout

	store := credstore.Open(ctx, cfg.CredentialDBPath(), logger)
	local := auth.NewLocalProvider(store, token.NewIssuer(nil, token.DefaultTTL), logger)

	endpoints := auth.Endpoints{
		AuthURL:     cfg.AuthServiceURL,
		ValidateURL: cfg.ValidateServiceURL,
		TokenURL:    cfg.TokenServiceURL,
		ProfileURL:  cfg.ProfileServiceURL,
	}
	authorizer := cli.NewConsoleAuthorizer(reader, out)
	remote := auth.NewRemoteProvider(endpoints, authorizer, cfg.HTTPTimeout, logger)

	sessions := session.NewStore(cfg.SessionPath(), logger)

	mgr := auth.NewManager(local, remote, sessions, cfg, logger)
	defer mgr.Shutdown()

	app := cli.NewApp(cfg, mgr, reader, out)
	app.Run(ctx)
}
