package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Pinger is anything that can report its own liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	DB        string    `json:"db"`
	Redis     string    `json:"redis"`
	Session   string    `json:"session"`
}

type HealthHandler struct {
	serviceName string
	version     string
	db          *pgxpool.Pool
	redis       *redis.Client
	session     Pinger
}

// NewHealthHandler builds the handler. Every dependency may be nil and is
// then reported as "disabled".
func NewHealthHandler(serviceName, version string, db *pgxpool.Pool, rdb *redis.Client, session Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		db:          db,
		redis:       rdb,
		session:     session,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		DB:        "disabled",
		Redis:     "disabled",
		Session:   "disabled",
	}

	if h.db != nil {
		resp.DB = probe(ctx, h.db.Ping)
	}
	if h.redis != nil {
		resp.Redis = probe(ctx, func(ctx context.Context) error { return h.redis.Ping(ctx).Err() })
	}
	if h.session != nil {
		resp.Session = probe(ctx, h.session.Ping)
	}

	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}

func probe(ctx context.Context, ping func(context.Context) error) string {
	pingCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if err := ping(pingCtx); err != nil {
		return "down"
	}
	return "up"
}
