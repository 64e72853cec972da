package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/fundplan/internal/api"
	"github.com/alexanderramin/fundplan/internal/cli"
	"github.com/alexanderramin/fundplan/internal/config"
	"github.com/alexanderramin/fundplan/internal/db"
	"github.com/alexanderramin/fundplan/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.EnsureDBDir(); err != nil {
		return err
	}
	logger := cfg.Logger(os.Stderr)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := service.NewMetricsUseCaseObserver(reg)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	// The CLI logs use cases only at debug level; the server always does.
	observers := []service.UseCaseObserver{metrics}
	if cfg.Debug() {
		observers = append(observers, service.NewSlogUseCaseObserver(logger))
	}
	deps := wire(database, observers...)

	if cfg.AutoSeed {
		if err := autoSeed(context.Background(), deps.Templates, logger); err != nil {
			return err
		}
	}

	app := &cli.App{
		Projects:       deps.Projects,
		Budget:         deps.Budget,
		Activities:     deps.Activities,
		Acquisitions:   deps.Acquisitions,
		Templates:      deps.Templates,
		Reimbursements: deps.Reimbursements,
		Purchases:      deps.Purchases,
		HTTPAddr:       cfg.HTTPAddr,
	}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	app.Serve = func(ctx context.Context, addr string) error {
		serverDeps := wire(database, metrics, service.NewSlogUseCaseObserver(logger))
		serverDeps.DB = database
		serverDeps.Logger = logger
		serverDeps.Gatherer = reg
		serverDeps.Version = version
		return api.Serve(ctx, addr, api.NewRouter(serverDeps), logger)
	}

	rootCmd := cli.NewRootCmd(app)
	rootCmd.Version = version
	return rootCmd.Execute()
}

// wire builds every service over one database and unit of work.
func wire(database *sql.DB, observers ...service.UseCaseObserver) api.Deps {
	uow := db.NewSQLiteUnitOfWork(database)
	return api.Deps{
		Projects:       service.NewProjectService(database, uow, observers...),
		Budget:         service.NewBudgetService(database, uow, observers...),
		Activities:     service.NewActivityService(database, uow, observers...),
		Acquisitions:   service.NewAcquisitionService(database, uow, observers...),
		Templates:      service.NewTemplateService(database, uow, observers...),
		Reimbursements: service.NewReimbursementService(database, uow, observers...),
		Purchases:      service.NewPurchaseService(database, uow, observers...),
	}
}

func autoSeed(ctx context.Context, templates service.TemplateService, logger *slog.Logger) error {
	acts, err := templates.SeedActivityTemplates(ctx)
	if err != nil {
		return fmt.Errorf("seeding activity templates: %w", err)
	}
	acqs, err := templates.SeedAcquisitionTemplates(ctx)
	if err != nil {
		return fmt.Errorf("seeding acquisition templates: %w", err)
	}
	if acts.Created+acqs.Created > 0 {
		logger.Info("seeded default templates", "activities", acts.Created, "acquisitions", acqs.Created)
	}
	return nil
}
