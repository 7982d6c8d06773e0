package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/locvowork/employee_records/internal/bootstrap"
	"github.com/locvowork/employee_records/internal/config"
	"github.com/locvowork/employee_records/internal/database"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/logger"
	"github.com/locvowork/employee_records/internal/repository"
	"github.com/locvowork/employee_records/internal/service"
)

const reindexBatchSize = 500

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "admin"
	app.Usage = "Maintenance tasks for the employee records service"
	app.Commands = []cli.Command{
		{
			Name:   "migrate",
			Usage:  "apply pending schema migrations",
			Action: migrateAction,
		},
		{
			Name:  "add-user",
			Usage: "create a login account",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "username, u", Usage: "login name"},
				cli.StringFlag{Name: "password, p", Usage: "initial password", EnvVar: "ADMIN_NEW_PASSWORD"},
			},
			Action: addUserAction,
		},
		{
			Name:   "reindex",
			Usage:  "rebuild the search index from the employees table",
			Action: reindexAction,
		},
	}
	return app
}

// connect loads the config and opens the database the same way the server does.
func connect(ctx context.Context) (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger.InitLogging(cfg.LogFilePath, cfg.LogLevel)

	db, err := database.NewPostgresDB(ctx, bootstrap.DatabaseConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func migrateAction(c *cli.Context) error {
	ctx, cancel := commandContext()
	defer cancel()

	_, db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		return err
	}
	logger.InfoLog(ctx, "Migrations applied")
	return nil
}

func addUserAction(c *cli.Context) error {
	username, password := c.String("username"), c.String("password")
	if username == "" || password == "" {
		return cli.NewExitError("both --username and --password are required", 2)
	}

	ctx, cancel := commandContext()
	defer cancel()

	_, db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := addUser(ctx, repository.NewUserRepository(db), username, password)
	if err != nil {
		return err
	}
	logger.InfoLog(ctx, "Created user %q with id %d", username, id)
	return nil
}

func addUser(ctx context.Context, users domain.UserRepository, username, password string) (int64, error) {
	hash, err := service.HashPassword(password)
	if err != nil {
		return 0, err
	}
	return users.Create(ctx, &domain.User{Username: username, PasswordHash: hash})
}

func reindexAction(c *cli.Context) error {
	ctx, cancel := commandContext()
	defer cancel()

	cfg, db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if !cfg.SearchEnabled() {
		return cli.NewExitError("ELASTIC_URL is not set", 2)
	}
	es, err := database.NewElasticSearchClient(cfg.ElasticURL, cfg.ElasticIndex)
	if err != nil {
		return err
	}

	n, err := reindex(ctx, repository.NewEmployeeRepository(db), es, reindexBatchSize)
	if err != nil {
		return err
	}
	logger.InfoLog(ctx, "Indexed %d employees into %s", n, cfg.ElasticIndex)
	return nil
}

type bulkIndexer interface {
	BulkIndexEmployees(ctx context.Context, docs []database.EmployeeDoc) (int, error)
}

// reindex pages through the employees table and bulk indexes each page.
// Only the profile is read; the sensitive pair is never decrypted.
func reindex(ctx context.Context, repo domain.EmployeeRepository, idx bulkIndexer, batchSize int) (int, error) {
	total := 0
	for offset := 0; ; offset += batchSize {
		records, err := repo.List(ctx, domain.EmployeeFilter{Limit: batchSize, Offset: offset})
		if err != nil {
			return total, err
		}

		docs := make([]database.EmployeeDoc, 0, len(records))
		for _, r := range records {
			docs = append(docs, database.NewEmployeeDoc(r.ID, r.Profile))
		}
		n, err := idx.BulkIndexEmployees(ctx, docs)
		total += n
		if err != nil {
			return total, err
		}

		if len(records) < batchSize {
			return total, nil
		}
	}
}
