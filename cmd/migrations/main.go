package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/inkwell/bookstore/pkg/config"
	"github.com/inkwell/bookstore/pkg/database"
	"github.com/inkwell/bookstore/pkg/migrations"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	migrator := migrate.NewMigrator(db, migrations.Migrations)

	app := &cli.App{
		Name:  "migrations",
		Usage: "manage the book store schema",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return errors.WithStack(migrator.Init(c.Context))
				},
			},
			{
				Name:  "migrate",
				Usage: "apply every pending migration",
				Action: func(c *cli.Context) error {
					group, err := migrations.BringUpToDate(c.Context, db)
					if err != nil {
						return err
					}
					if group.ID == 0 {
						fmt.Println("There are no new migrations to run")
						return nil
					}
					fmt.Printf("Migrated to %s\n", group)
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "roll back the last migration group",
				Action: func(c *cli.Context) error {
					group, err := migrator.Rollback(c.Context)
					if err != nil {
						return errors.WithStack(err)
					}
					if group.ID == 0 {
						fmt.Println("There are no groups to roll back")
						return nil
					}
					fmt.Printf("Rolled back %s\n", group)
					return nil
				},
			},
			{
				Name:      "create",
				Usage:     "create a Go migration",
				ArgsUsage: "<words describing the change>",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return cli.Exit("a migration name is required", 1)
					}
					name := strings.ToLower(strings.Join(c.Args().Slice(), "_"))
					mf, err := migrator.CreateGoMigration(c.Context, name, migrate.WithGoTemplate(migrationTemplate))
					if err != nil {
						return errors.WithStack(err)
					}
					fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return printStatus(c, db, migrator)
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func printStatus(c *cli.Context, db *bun.DB, migrator *migrate.Migrator) error {
	ms, err := migrator.MigrationsWithStatus(c.Context)
	if err != nil {
		return errors.WithStack(err)
	}
	fmt.Printf("Dialect: %s\n", db.Dialect().Name())
	fmt.Printf("Migrations: %s\n", ms)
	fmt.Printf("Unapplied migrations: %s\n", ms.Unapplied())
	fmt.Printf("Last migration group: %s\n", ms.LastGroup())
	return nil
}

// migrationTemplate registers statements for both dialects; branch on
// isPostgres(db) when they differ.
const migrationTemplate = `package %s

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		return execAll(ctx, db,
			"",
		)
	}

	down := func(ctx context.Context, db *bun.DB) error {
		return execAll(ctx, db,
			"",
		)
	}

	Migrations.MustRegister(up, down)
}
`
