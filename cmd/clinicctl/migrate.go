package main

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli"

	"github.com/wolfman30/clinic-booking/migrations"
)

var MigrateCmd = cli.Command{
	Name:      "migrate",
	Usage:     "Applies the token store schema: up, down, version or force <n>",
	ArgsUsage: "[up|down|version|force <version>]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:   "database-url",
			Usage:  "Postgres connection string",
			EnvVar: "DATABASE_URL",
		},
	},
	Action: runMigrations,
}

func runMigrations(c *cli.Context) error {
	databaseURL := c.String("database-url")
	if databaseURL == "" {
		return errors.New("--database-url or DATABASE_URL is required")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("db driver: %w", err)
	}
	srcDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("source driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	out := c.App.Writer
	switch action := c.Args().First(); action {
	case "", "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate up: %w", err)
		}
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate down: %w", err)
		}
	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Fprintln(out, "no migrations applied")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "version %d (dirty: %t)\n", v, dirty)
		return nil
	case "force":
		version, err := strconv.Atoi(c.Args().Get(1))
		if err != nil {
			return fmt.Errorf("invalid version: %w", err)
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version: %w", err)
		}
		fmt.Fprintf(out, "forced version to %d\n", version)
		return nil
	default:
		return fmt.Errorf("unknown migrate action %q", action)
	}

	fmt.Fprintln(out, "migrations complete")
	return nil
}
