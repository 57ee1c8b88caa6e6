// Command migrate applies the embedded sessions and prompts schema migrations.
//
// The connection comes from -dsn, then CANDOR_DB_DSN, then the same
// CANDOR_DB_* variables the server reads.
package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/candor/internal/config"
	"github.com/JaimeStill/candor/pkg/database"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "CANDOR_DB_DSN"

type options struct {
	dsn      string
	up       bool
	down     bool
	steps    int
	version  bool
	force    int
	forceSet bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("migrate: ")

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}

	if err := run(opts, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(output)

	opts := &options{}
	fs.StringVar(&opts.dsn, "dsn", "", "postgres:// connection URL")
	fs.BoolVar(&opts.up, "up", false, "apply all up migrations")
	fs.BoolVar(&opts.down, "down", false, "revert all migrations")
	fs.IntVar(&opts.steps, "steps", 0, "apply N migrations (negative reverts)")
	fs.BoolVar(&opts.version, "version", false, "print the current schema version")
	fs.IntVar(&opts.force, "force", -1, "force the schema version after a failed migration")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			opts.forceSet = true
		}
	})

	selected := 0
	for _, on := range []bool{opts.up, opts.down, opts.steps != 0, opts.version, opts.forceSet} {
		if on {
			selected++
		}
	}
	if selected != 1 {
		fs.Usage()
		return nil, fmt.Errorf("choose exactly one of -up, -down, -steps, -version, -force")
	}
	return opts, nil
}

func resolveDSN(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}

	cfg := &database.Config{}
	if err := cfg.Finalize(config.DatabaseEnv); err != nil {
		return "", fmt.Errorf("database config: %w", err)
	}
	return cfg.URL(), nil
}

func run(opts *options, out io.Writer) error {
	dsn, err := resolveDSN(opts.dsn)
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer m.Close()

	switch {
	case opts.version:
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Fprintln(out, "version: none")
			return nil
		}
		if err != nil {
			return fmt.Errorf("version: %w", err)
		}
		fmt.Fprintf(out, "version: %d, dirty: %v\n", v, dirty)
		return nil
	case opts.forceSet:
		if err := m.Force(opts.force); err != nil {
			return fmt.Errorf("force %d: %w", opts.force, err)
		}
		fmt.Fprintf(out, "forced to version %d\n", opts.force)
		return nil
	case opts.up:
		err = m.Up()
	case opts.down:
		err = m.Down()
	default:
		err = m.Steps(opts.steps)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintln(out, "no change")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "migrations applied")
	return nil
}
