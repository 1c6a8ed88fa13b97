// Package statusserver is the construction driver's opt-in observability
// side-car: an HTTP /healthz, /status and /metrics endpoint plus a gRPC
// health-checking server, so a supervising process can watch a
// multi-minute construction run the same way a long-lived gRPC+REST
// service exposes its own health and metrics.
package statusserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/therealutkarshpriyadarshi/vector/pkg/observability"
)

// Config configures a Server. PhaseFunc reports the driver's current
// lifecycle phase on demand; it must be safe to call concurrently with
// construction. GRPCAddr is optional; leaving it empty disables the gRPC
// health side-car. JWTSecret is optional; leaving it empty disables
// bearer-token auth on /status and /metrics.
type Config struct {
	HTTPAddr  string
	GRPCAddr  string
	JWTSecret string
	PhaseFunc func() string
	Logger    *observability.Logger

	// RequestTimeout bounds header reads, writes and idle keep-alives on
	// the HTTP listener. Zero leaves net/http's own defaults in place.
	RequestTimeout time.Duration
}

// Server is the status/metrics HTTP server and its optional gRPC health
// side-car.
type Server struct {
	cfg        Config
	httpServer *http.Server
	grpcServer *grpc.Server
	healthSrv  *health.Server
	startTime  time.Time
}

// New constructs a Server. Call Start to begin listening.
func New(cfg Config) *Server {
	s := &Server{cfg: cfg, startTime: time.Now()}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/status", s.authGuard(http.HandlerFunc(s.handleStatus)))
	mux.Handle("/metrics", s.authGuard(promhttp.Handler()))
	s.httpServer = &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	if cfg.RequestTimeout > 0 {
		s.httpServer.ReadHeaderTimeout = cfg.RequestTimeout
		s.httpServer.WriteTimeout = cfg.RequestTimeout
		s.httpServer.IdleTimeout = cfg.RequestTimeout
	}

	return s
}

// Start begins serving HTTP (and, if GRPCAddr is set, gRPC health checks)
// in background goroutines. It returns once both listeners are bound.
func (s *Server) Start() error {
	httpLn, err := net.Listen("tcp", s.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("statusserver: listen %s: %w", s.cfg.HTTPAddr, err)
	}
	go func() {
		if err := s.httpServer.Serve(httpLn); err != nil && err != http.ErrServerClosed {
			s.logError("http server error: %v", err)
		}
	}()

	if s.cfg.GRPCAddr == "" {
		return nil
	}

	grpcLn, err := net.Listen("tcp", s.cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("statusserver: listen %s: %w", s.cfg.GRPCAddr, err)
	}

	s.healthSrv = health.NewServer()
	s.healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	s.grpcServer = grpc.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.healthSrv)

	go func() {
		if err := s.grpcServer.Serve(grpcLn); err != nil {
			s.logError("grpc health server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down both listeners.
func (s *Server) Stop(ctx context.Context) error {
	if s.grpcServer != nil {
		if s.healthSrv != nil {
			s.healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		}
		s.grpcServer.GracefulStop()
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) logError(format string, args ...interface{}) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Errorf(format, args...)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type statusResponse struct {
	Phase         string  `json:"phase"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	phase := "unknown"
	if s.cfg.PhaseFunc != nil {
		phase = s.cfg.PhaseFunc()
	}

	resp := statusResponse{
		Phase:         phase,
		UptimeSeconds: time.Since(s.startTime).Seconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// authGuard wraps next with a bearer-token check when JWTSecret is set;
// otherwise it passes requests through unchanged.
func (s *Server) authGuard(next http.Handler) http.Handler {
	if s.cfg.JWTSecret == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeJSONError(w, "missing or malformed authorization header", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(s.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			writeJSONError(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"error": %q}`, message)
}
