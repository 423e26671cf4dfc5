package router

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/agent"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/enrollment"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/templates"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/utilities"
)

type Config struct {
	Addr           string
	AllowedOrigins []string
	JWTSecret      []byte
	MaxBodyBytes   int64
}

// ConfigFromEnv reads HTTP config from environment variables
func ConfigFromEnv() Config {
	cfg := Config{
		Addr:         os.Getenv("HTTP_ADDR"),
		JWTSecret:    []byte(os.Getenv("API_JWT_SECRET")),
		MaxBodyBytes: 50 << 20,
	}
	if cfg.Addr == "" {
		cfg.Addr = "0.0.0.0:3000"
	}
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if v, err := strconv.ParseInt(os.Getenv("MAX_BODY_BYTES"), 10, 64); err == nil && v > 0 {
		cfg.MaxBodyBytes = v
	}
	return cfg
}

// Deps are the handlers mounted by RegisterRoutes. Health, when set, backs
// the readiness answer of /health.
type Deps struct {
	Agent      *agent.Handler
	Enrollment *enrollment.Handler
	Templates  *templates.Handler
	Events     http.Handler
	Metrics    http.Handler
	Health     func(ctx context.Context) error
}

var publicPaths = []string{"/health", "/metrics"}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
func RegisterRoutes(logger *zap.SugaredLogger, cfg Config, deps Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if deps.Health != nil {
			if err := deps.Health(r.Context()); err != nil {
				logger.Warnw("health check failed", "err", err)
				utilities.WriteJSON(w, http.StatusServiceUnavailable, utilities.Failure{Message: "storage unavailable"})
				return
			}
		}
		utilities.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "status": "ok"})
	})
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	// enrollment
	mux.HandleFunc("POST /api/start_enrollment", deps.Enrollment.Start)
	mux.HandleFunc("POST /api/save_enrollment", deps.Enrollment.Save)
	mux.HandleFunc("DELETE /api/identities/{id}", deps.Enrollment.Delete)

	// matching
	mux.HandleFunc("GET /api/get-all-templates", deps.Templates.List)

	// agent pass-through
	mux.HandleFunc("POST /api/create_template", deps.Agent.CreateTemplate)
	mux.HandleFunc("POST /api/match_templates", deps.Agent.MatchTemplates)
	mux.HandleFunc("POST /api/identify", deps.Agent.Identify)
	mux.HandleFunc("GET /api/device-status", deps.Agent.Status)
	mux.HandleFunc("POST /api/config", deps.Agent.SetConfig)
	mux.HandleFunc("POST /api/init-device", deps.Agent.InitDevice)

	if deps.Events != nil {
		mux.Handle("GET /ws/events", deps.Events)
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		utilities.WriteJSON(w, http.StatusNotFound, utilities.Failure{Message: "endpoint not found"})
	})

	var handler http.Handler = mux
	handler = BodyLimitMiddleware(cfg.MaxBodyBytes)(handler)
	handler = AuthMiddleware(cfg.JWTSecret, publicPaths, logger)(handler)
	handler = CORSMiddleware(cfg.AllowedOrigins)(handler)
	handler = SecurityHeadersMiddleware()(handler)
	handler = RecoverMiddleware(logger)(handler)
	handler = LoggingMiddleware(logger)(handler)
	handler = RequestIDMiddleware()(handler)
	return handler
}
