package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/sentinel-red/sentinel-backend/config"
	"github.com/sentinel-red/sentinel-backend/internal/attackgraph"
	authservice "github.com/sentinel-red/sentinel-backend/internal/auth/service"
	"github.com/sentinel-red/sentinel-backend/internal/fixtures"
	"github.com/sentinel-red/sentinel-backend/internal/latency"
	projectrepo "github.com/sentinel-red/sentinel-backend/internal/projects/repository"
	projectservice "github.com/sentinel-red/sentinel-backend/internal/projects/service"
	"github.com/sentinel-red/sentinel-backend/internal/reports"
	"github.com/sentinel-red/sentinel-backend/internal/scans/history"
	scanhttp "github.com/sentinel-red/sentinel-backend/internal/scans/http"
	"github.com/sentinel-red/sentinel-backend/internal/scans/metrics"
	scanrepo "github.com/sentinel-red/sentinel-backend/internal/scans/repository"
	"github.com/sentinel-red/sentinel-backend/internal/scans/retention"
	scanservice "github.com/sentinel-red/sentinel-backend/internal/scans/service"
	"github.com/sentinel-red/sentinel-backend/internal/scans/simulator"
	"github.com/sentinel-red/sentinel-backend/internal/session"
	"github.com/sentinel-red/sentinel-backend/internal/storage/postgres"
)

const ServiceName = "sentinel-backend"

// App owns every long-lived component of the API process.
type App struct {
	Router    *gin.Engine
	Simulator *simulator.Simulator
	Janitor   *retention.Janitor

	pool    *pgxpool.Pool
	sqlDB   *sql.DB
	redis   *redis.Client
	session *session.Store
}

// NewApp connects the optional backends, seeds fixtures and builds the
// router. Postgres and redis are skipped when not configured.
func NewApp(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	app := &App{}
	defer func() {
		if err != nil {
			app.Close(context.Background())
		}
	}()

	now := time.Now()
	lat := latency.New(cfg.Latency.Enabled, cfg.Latency.FailureRate, nil)

	app.session, err = session.Open(cfg.Session.DBPath)
	if err != nil {
		return nil, err
	}

	var store history.Store = history.NewMemoryStore()
	if cfg.Database.Enabled() {
		app.pool, err = OpenDB(ctx, DBOptions{DSN: postgres.DSN(&cfg.Database), MaxConns: cfg.Database.MaxConns})
		if err != nil {
			return nil, err
		}
		if err = postgres.Migrate(ctx, app.pool); err != nil {
			return nil, err
		}
		app.sqlDB, err = postgres.NewConnection(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		store = history.NewPostgresStore(app.sqlDB)
		log.Printf("[info] scan history stored in postgres")
	}

	app.redis, err = OpenRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	registry := projectrepo.NewRegistry()
	if cfg.Scan.SeedFixtures {
		if err = seed(ctx, registry, store, now); err != nil {
			return nil, err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hub := scanhttp.NewHub()
	observers := []simulator.Observer{history.NewRecorder(store), metrics.NewObserver(reg), hub}

	var mirror scanservice.Mirror
	var stateRepo *scanrepo.StateRepository
	if app.redis != nil {
		stateRepo = scanrepo.NewStateRepository(app.redis)
		observers = append(observers, stateRepo)
		mirror = stateRepo
		log.Printf("[info] scan state mirrored to redis at %s", cfg.Redis.Addr)
	}

	app.Simulator = simulator.New(registry, simulator.Options{TickInterval: cfg.Scan.TickInterval}, observers...)

	scans := scanservice.NewScanService(registry, app.Simulator, mirror, store, lat)

	endpoints, err := fixtures.Endpoints()
	if err != nil {
		return nil, err
	}
	graph, err := fixtures.AttackGraph()
	if err != nil {
		return nil, err
	}
	evidence, fallback, err := fixtures.Evidence()
	if err != nil {
		return nil, err
	}
	graphSvc, err := attackgraph.NewService(graph, evidence, fallback, lat)
	if err != nil {
		return nil, fmt.Errorf("reference attack graph: %w", err)
	}
	reportTmpl, err := fixtures.Report()
	if err != nil {
		return nil, err
	}

	app.Janitor = retention.NewJanitor(app.Simulator, cfg.Scan.Retention)
	if stateRepo != nil {
		app.Janitor.SetEvictor(stateRepo)
	}
	if err = app.Janitor.Start(cfg.Scan.JanitorSchedule); err != nil {
		return nil, err
	}

	app.Router = BuildRouter(RouterDeps{
		ServiceName:    ServiceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		StartRate:      cfg.Scan.StartRate,
		StartBurst:     cfg.Scan.StartBurst,
		DB:             app.pool,
		Redis:          app.redis,
		Session:        app.session,
		Gatherer:       reg,
		Projects:       projectservice.NewProjectService(registry, endpoints, lat),
		Scans:          scans,
		Hub:            hub,
		AttackGraph:    graphSvc,
		Reports:        reports.NewService(reportTmpl, scans, registry, cfg.Report.FontPath, lat),
		Auth:           authservice.NewAuthService(app.session, lat),
	})

	return app, nil
}

func seed(ctx context.Context, registry *projectrepo.Registry, store history.Store, now time.Time) error {
	projects, err := fixtures.Projects(now)
	if err != nil {
		return err
	}
	registry.Seed(projects)

	items, err := fixtures.History(now)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := store.Upsert(ctx, item); err != nil {
			return fmt.Errorf("seed scan history: %w", err)
		}
	}

	log.Printf("[info] seeded %d projects and %d history items", len(projects), len(items))
	return nil
}

// Close stops background work and releases every connection. It is safe
// on a partially built App.
func (a *App) Close(ctx context.Context) {
	if a.Janitor != nil {
		a.Janitor.Stop(ctx)
	}
	if a.Simulator != nil {
		a.Simulator.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.sqlDB != nil {
		a.sqlDB.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.session != nil {
		a.session.Close()
	}
}
