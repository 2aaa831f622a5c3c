package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/sentinel-red/sentinel-backend/internal/api/http"
	apimw "github.com/sentinel-red/sentinel-backend/internal/api/http/middleware"
	"github.com/sentinel-red/sentinel-backend/internal/attackgraph"
	graphhttp "github.com/sentinel-red/sentinel-backend/internal/attackgraph/http"
	authhttp "github.com/sentinel-red/sentinel-backend/internal/auth/http"
	authmw "github.com/sentinel-red/sentinel-backend/internal/auth/middleware"
	authservice "github.com/sentinel-red/sentinel-backend/internal/auth/service"
	projecthttp "github.com/sentinel-red/sentinel-backend/internal/projects/http"
	projectservice "github.com/sentinel-red/sentinel-backend/internal/projects/service"
	"github.com/sentinel-red/sentinel-backend/internal/reports"
	reporthttp "github.com/sentinel-red/sentinel-backend/internal/reports/http"
	scanhttp "github.com/sentinel-red/sentinel-backend/internal/scans/http"
	scanservice "github.com/sentinel-red/sentinel-backend/internal/scans/service"
	"github.com/sentinel-red/sentinel-backend/internal/session"
	sessionhttp "github.com/sentinel-red/sentinel-backend/internal/session/http"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	StartRate      float64
	StartBurst     int

	DB       *pgxpool.Pool
	Redis    *redis.Client
	Session  *session.Store
	Gatherer prometheus.Gatherer

	Projects    *projectservice.ProjectService
	Scans       *scanservice.ScanService
	Hub         *scanhttp.Hub
	AttackGraph *attackgraph.Service
	Reports     *reports.Service
	Auth        *authservice.AuthService
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(apimw.RequestID())
	r.Use(cors.New(corsConfig(dep.AllowedOrigins)))

	var sessionPinger httpapi.Pinger
	if dep.Session != nil {
		sessionPinger = dep.Session
	}
	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis, sessionPinger)
	healthHandler.RegisterRoutes(r)

	if dep.Gatherer != nil {
		r.GET("/metrics", apimw.MetricsHandler(dep.Gatherer))
	}

	api := r.Group("/api/v1")
	api.Use(authmw.BearerToken())

	projectsGroup := api.Group("/projects")
	scansGroup := api.Group("/scans")

	projecthttp.New(dep.Projects).Register(projectsGroup)

	scanHandler := scanhttp.New(dep.Scans, dep.Hub, originHosts(dep.AllowedOrigins))
	scanHandler.Register(scansGroup)
	scanHandler.RegisterProjectRoutes(projectsGroup, apimw.RateLimit(dep.StartRate, dep.StartBurst))

	graphHandler := graphhttp.New(dep.AttackGraph)
	graphHandler.RegisterScanRoutes(scansGroup)
	graphHandler.RegisterNodeRoutes(api.Group("/attack-graph"))

	reporthttp.New(dep.Reports).Register(scansGroup)

	authhttp.New(dep.Auth).Register(api.Group("/auth"))

	if dep.Session != nil {
		sessionhttp.New(dep.Session).Register(api.Group("/settings"))
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", apimw.HeaderRequestID},
		ExposeHeaders: []string{apimw.HeaderRequestID, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}

	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}

	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
