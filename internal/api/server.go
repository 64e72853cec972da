package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexanderramin/fundplan/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	serviceName     = "fundplan"
	shutdownTimeout = 10 * time.Second
)

// Deps are the services and infrastructure the router serves.
type Deps struct {
	Projects       service.ProjectService
	Budget         service.BudgetService
	Activities     service.ActivityService
	Acquisitions   service.AcquisitionService
	Templates      service.TemplateService
	Reimbursements service.ReimbursementService
	Purchases      service.PurchaseService

	DB       Pinger
	Logger   *slog.Logger
	Gatherer prometheus.Gatherer
	Version  string
}

// NewRouter builds the HTTP API. Project-scoped routes live under
// /api/v1/projects/:id, where :id is a project ID or code.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(d.Logger))

	NewHealthHandler(serviceName, d.Version, d.DB).RegisterRoutes(r)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")

	projects := v1.Group("/projects")
	ph := &projectHandler{projects: d.Projects}
	ph.Register(projects)

	one := projects.Group("/:id", loadProject(d.Projects))
	ph.RegisterOne(one)
	(&budgetHandler{budget: d.Budget}).Register(one)
	(&activityHandler{activities: d.Activities}).Register(one.Group("/activities"))
	(&acquisitionHandler{acquisitions: d.Acquisitions}).Register(one.Group("/acquisitions"))
	(&reimbursementHandler{reimbursements: d.Reimbursements}).Register(one.Group("/reimbursements"))
	(&purchaseHandler{purchases: d.Purchases}).Register(one.Group("/purchases"))

	(&templateHandler{templates: d.Templates}).Register(v1.Group("/templates"))

	return r
}

// Serve runs h on addr until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func Serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("http server listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}
