package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/telebill-community/sql-to-jsonsql/lib/billing"
	"github.com/telebill-community/sql-to-jsonsql/lib/jsonsql"
	"github.com/telebill-community/sql-to-jsonsql/lib/sql/parser"
	"github.com/telebill-community/sql-to-jsonsql/lib/store"
	"github.com/telebill-community/sql-to-jsonsql/lib/store/cachestore"
	"github.com/telebill-community/sql-to-jsonsql/lib/store/schemastore"
)

type Config struct {
	ListenAddr    string              `yaml:"listenAddr" json:"listenAddr"`
	Endpoint      string              `yaml:"endpoint" json:"endpoint"`
	APIKey        string              `yaml:"apiKey" json:"apiKey"`
	Dialect       string              `yaml:"dialect" json:"dialect"`
	AutoOrderByID bool                `yaml:"autoOrderById" json:"autoOrderById"`
	CacheDir      string              `yaml:"cacheDir" json:"cacheDir"`
	Tables        []schemastore.Table `yaml:"tables" json:"tables"`
	CORSOrigins   []string            `yaml:"corsOrigins" json:"corsOrigins"`
}

type Server struct {
	api     *billing.API
	handler http.Handler
	sp      *store.Provider
	opts    jsonsql.Options
	log     *zap.Logger
	metrics *serverMetrics
}

type serverMetrics struct {
	registry        *prometheus.Registry
	transpilesTotal *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newServerMetrics() *serverMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &serverMetrics{
		registry: registry,
		transpilesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sql_to_jsonsql_transpiles_total",
			Help: "Transpile attempts by statement type and outcome.",
		}, []string{"statement", "status"}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sql_to_jsonsql_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sql_to_jsonsql_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (m *serverMetrics) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next(rec, r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func NewServer(cfg Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	serverCfg := cfg
	serverCfg.Endpoint = strings.TrimSpace(serverCfg.Endpoint)
	serverCfg.APIKey = strings.TrimSpace(serverCfg.APIKey)
	if serverCfg.Endpoint != "" {
		if _, err := url.Parse(serverCfg.Endpoint); err != nil {
			return nil, fmt.Errorf("invalid endpoint URL: %w", err)
		}
	}

	schemaStore, err := schemastore.New(serverCfg.Tables)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema store: %w", err)
	}
	cacheStore, err := cachestore.New(serverCfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache store: %w", err)
	}
	sp := store.NewStoreProvider(schemaStore, cacheStore)

	dialect := jsonsql.Dialect(strings.ToLower(strings.TrimSpace(serverCfg.Dialect)))
	if dialect == "" {
		dialect = jsonsql.DialectPostgres
	}

	srv := &Server{
		sp:  sp,
		log: logger,
		api: billing.NewBillingAPI(billing.EndpointConfig{
			Endpoint: serverCfg.Endpoint,
			APIKey:   serverCfg.APIKey,
		}),
		opts: jsonsql.Options{
			Dialect:       dialect,
			AutoOrderByID: serverCfg.AutoOrderByID,
			Schema:        schemaStore,
		},
		metrics: newServerMetrics(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", withSecurityHeaders(srv.handleHealth))
	mux.HandleFunc("/api/v1/sql-to-jsonsql", srv.metrics.instrument("query", withSecurityHeaders(srv.handleQuery)))
	mux.HandleFunc("/api/v1/schema", srv.metrics.instrument("schema", withSecurityHeaders(srv.handleSchema)))
	mux.HandleFunc("/api/v1/config", withSecurityHeaders(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		srv.writeJSON(w, http.StatusOK, map[string]any{
			"endpoint":      serverCfg.Endpoint,
			"dialect":       string(dialect),
			"autoOrderById": serverCfg.AutoOrderByID,
		})
	}))
	mux.Handle("/metrics", promhttp.HandlerFor(srv.metrics.registry, promhttp.HandlerOpts{}))

	corsOpts := cors.Options{AllowedMethods: []string{http.MethodGet, http.MethodPost}}
	if len(serverCfg.CORSOrigins) > 0 {
		corsOpts.AllowedOrigins = serverCfg.CORSOrigins
	}
	srv.handler = cors.New(corsOpts).Handler(mux)
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) setHTTPClient(client *http.Client) {
	s.api.SetHTTPClient(client)
}

func withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next(w, r)
	}
}

type queryRequest struct {
	SQL      string `json:"sql"`
	Endpoint string `json:"endpoint,omitempty"`
	APIKey   string `json:"apiKey,omitempty"`
}

type queryResponse struct {
	Method  string          `json:"method,omitempty"`
	JSONSQL map[string]any  `json:"jsonsql,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Error("failed to decode request", zap.Error(err))
		s.writeJSON(w, http.StatusBadRequest, queryResponse{Error: "invalid request payload"})
		return
	}

	sqlText := strings.TrimSpace(req.SQL)
	if sqlText == "" {
		s.writeJSON(w, http.StatusBadRequest, queryResponse{Error: "sql query is required"})
		return
	}

	si, err := jsonsql.TranspileSQL(sqlText, s.opts)
	if err != nil {
		s.log.Warn("transpile failed", zap.String("sql", sqlText), zap.Error(err))
		s.metrics.transpilesTotal.WithLabelValues(statementLabel(si.Type), "error").Inc()
		s.writeError(w, err)
		return
	}
	s.metrics.transpilesTotal.WithLabelValues(string(si.Type), "ok").Inc()

	resp := queryResponse{Method: string(si.Type), JSONSQL: si.Doc}
	data, err := s.api.Execute(r.Context(), si, billing.EndpointConfig{
		Endpoint: req.Endpoint,
		APIKey:   req.APIKey,
	})
	if err != nil {
		s.log.Error("query execution failed", zap.String("method", string(si.Type)), zap.Error(err))
		s.writeError(w, err)
		return
	}
	resp.Data = data
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, map[string]any{"tables": s.sp.SchemaStore().Tables()})
	case http.MethodPost:
		tables, err := s.api.FetchSchema(r.Context(), billing.EndpointConfig{})
		if err != nil {
			s.log.Error("schema sync failed", zap.Error(err))
			s.writeError(w, err)
			return
		}
		if err := s.sp.SchemaStore().Replace(tables); err != nil {
			s.writeJSON(w, http.StatusBadGateway, queryResponse{Error: err.Error()})
			return
		}
		if s.sp.CacheStore() != nil {
			if _, err := s.sp.CacheStore().Save(tables); err != nil {
				s.log.Warn("failed to cache schema", zap.Error(err))
			}
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
	default:
		w.Header().Set("Allow", strings.Join([]string{http.MethodGet, http.MethodPost}, ", "))
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// writeError maps the library error types onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ae *billing.APIError
	var re *billing.RPCError
	var te *jsonsql.TranspileError
	var ce *cachestore.StoreError
	var se *parser.SyntaxError
	switch {
	case errors.As(err, &ae):
		s.writeJSON(w, ae.Code, queryResponse{Error: ae.Message})
	case errors.As(err, &re):
		s.writeJSON(w, http.StatusBadGateway, queryResponse{Error: re.Error()})
	case errors.As(err, &te):
		s.writeJSON(w, http.StatusBadRequest, queryResponse{Error: te.Error()})
	case errors.As(err, &ce):
		s.writeJSON(w, ce.Code, queryResponse{Error: ce.Message})
	case errors.As(err, &se):
		s.writeJSON(w, http.StatusBadRequest, queryResponse{Error: err.Error()})
	default:
		s.writeJSON(w, http.StatusInternalServerError, queryResponse{Error: "query processing failed"})
	}
}

func statementLabel(t jsonsql.StatementType) string {
	if t == "" {
		return "unknown"
	}
	return string(t)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode JSON response", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
