package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/wolfman30/clinic-booking/internal/app/bootstrap"
	"github.com/wolfman30/clinic-booking/internal/calendarauth"
	"github.com/wolfman30/clinic-booking/internal/clinic"
	appconfig "github.com/wolfman30/clinic-booking/internal/config"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

var stdin io.Reader = os.Stdin

var AuthCmd = cli.Command{
	Name:   "auth",
	Usage:  "Authorize Google Calendar access and store the token",
	Action: authorize,
}

func loadConfig(c *cli.Context) (*appconfig.Config, *logging.Logger, error) {
	if err := appconfig.LoadDotEnv(c.GlobalString("env-file")); err != nil {
		return nil, nil, err
	}
	return appconfig.Load(), logging.New(c.GlobalString("log-level")), nil
}

func authorize(c *cli.Context) error {
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx := context.Background()

	profile, err := clinic.LoadProfile(cfg.SiteProfilePath)
	if err != nil {
		return err
	}
	loc, err := profile.Location()
	if err != nil {
		return err
	}

	pool := bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		defer pool.Close()
	}
	tokens, err := bootstrap.BuildTokenStore(cfg, pool)
	if err != nil {
		return err
	}
	oauthCfg := bootstrap.BuildOAuthConfig(cfg)
	client := bootstrap.BuildCalendarClient(cfg, oauthCfg, tokens, loc, logger)
	svc := calendarauth.NewService(oauthCfg, tokens, client, calendarauth.NewMemoryStateStore(), logger)

	authURL, err := svc.Begin(ctx)
	if errors.Is(err, calendarauth.ErrNotConfigured) {
		return errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Open this URL in your browser and authorize the clinic calendar:\n\n%s\n\n", authURL)
	fmt.Fprint(out, "Paste the authorization code: ")

	code, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read authorization code: %w", err)
	}
	if err := svc.Redeem(ctx, code); err != nil {
		return err
	}
	fmt.Fprintln(out, "Calendar connected.")
	return nil
}
