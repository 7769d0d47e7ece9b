// Package http exposes the reconciliation API: charge and payment writes,
// monthly and dimension summaries, and printable report tables.
package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"cuotas/internal/cache"
	"cuotas/internal/core"
	applog "cuotas/internal/log"
	"cuotas/internal/middleware/ratelimit"
	"cuotas/internal/middleware/security"
	"cuotas/internal/services"
)

// Importer pulls charge rows from an external source into the ledger
type Importer interface {
	Import(ctx context.Context, condominiumID string, year int) (int, error)
}

type Server struct {
	http.Server
	ledger      *services.LedgerService
	importer    Importer
	rateLimiter *ratelimit.Limiter
	headers     *security.Headers
	clientIP    *security.ClientIPExtractor

	logger        *applog.Logger
	requestLogger *applog.RequestLogger

	// Aggregated views keyed "condominium:year:view", invalidated by
	// prefix whenever a write touches that scope
	summaryCache *cache.LRUCache[[]core.MonthlyStat]
	reportCache  *cache.LRUCache[core.Table]

	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
// importer may be nil when no external charge source is configured.
func NewServer(addr string, ledger *services.LedgerService, importer Importer) *Server {
	mux := http.NewServeMux()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:        ledger,
		importer:      importer,
		rateLimiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		headers:       security.NewHeaders(security.DefaultHeadersConfig()),
		clientIP:      security.NewClientIPExtractor(),
		logger:        logger,
		requestLogger: applog.NewRequestLogger(logger),
		summaryCache: cache.NewLRUCache[[]core.MonthlyStat](100, 5*time.Minute),
		reportCache:  cache.NewLRUCache[core.Table](200, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/charges", s.withMiddleware(s.handleCharges))
	mux.HandleFunc("/api/payments", s.withMiddleware(s.handleApplyPayment))
	mux.HandleFunc("/api/accounts", s.withMiddleware(s.handleAccounts))

	mux.HandleFunc("/api/summary/monthly", s.withMiddleware(s.handleMonthlySummary))
	mux.HandleFunc("/api/summary/extremes", s.withMiddleware(s.handleMonthExtremes))
	mux.HandleFunc("/api/summary/concepts", s.withMiddleware(s.handleDimension(core.ByConcept)))
	mux.HandleFunc("/api/summary/accounts", s.withMiddleware(s.handleDimension(core.ByAccount)))
	mux.HandleFunc("/api/summary/units", s.withMiddleware(s.handleDimension(core.ByUnit)))

	mux.HandleFunc("/api/reports/monthly", s.withMiddleware(s.handleMonthlyReport))
	mux.HandleFunc("/api/reports/morosity", s.withMiddleware(s.handleMorosityReport))
	mux.HandleFunc("/api/reports/concepts", s.withMiddleware(s.handleConceptReport))
	mux.HandleFunc("/api/reports/accounts", s.withMiddleware(s.handleAccountReport))

	mux.HandleFunc("/api/import/sheets", s.withMiddleware(s.handleSheetsImport))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()

		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) scopePrefix(condominiumID string, year int) string {
	return condominiumID + ":" + strconv.Itoa(year) + ":"
}

func (s *Server) invalidateScope(condominiumID string, year int) {
	prefix := s.scopePrefix(condominiumID, year)
	s.summaryCache.DeletePrefix(prefix)
	s.reportCache.DeletePrefix(prefix)
}
