package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/netgee-k/mt5-v2/internal/ai"
	"github.com/netgee-k/mt5-v2/internal/auth"
	"github.com/netgee-k/mt5-v2/internal/config"
	"github.com/netgee-k/mt5-v2/internal/journal"
	"github.com/netgee-k/mt5-v2/internal/mail"
	"github.com/netgee-k/mt5-v2/internal/market"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server holds the dependencies of all HTTP handlers.
type Server struct {
	log      *zap.Logger
	db       *gorm.DB
	cfg      *config.Config
	auth     *auth.Service
	syncer   *journal.Syncer
	analyzer *ai.Analyzer
	market   *market.Client
	mailer   *mail.Sender // nil when SMTP is not configured
}

// New creates a new Server. mailer may be nil; mail-dependent flows then
// log instead of sending.
func New(log *zap.Logger, db *gorm.DB, cfg *config.Config, authSvc *auth.Service,
	syncer *journal.Syncer, analyzer *ai.Analyzer, marketClient *market.Client,
	mailer *mail.Sender) *Server {
	return &Server{
		log:      log,
		db:       db,
		cfg:      cfg,
		auth:     authSvc,
		syncer:   syncer,
		analyzer: analyzer,
		market:   marketClient,
		mailer:   mailer,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/api/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/verify", s.handleVerifyEmail).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/password-reset/request", s.handlePasswordResetRequest).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/password-reset/confirm", s.handlePasswordResetConfirm).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireAuth)

	api.HandleFunc("/trades", s.handleListTrades).Methods(http.MethodGet)
	api.HandleFunc("/trades/{ticket:[0-9]+}", s.handleGetTrade).Methods(http.MethodGet)
	api.HandleFunc("/symbols", s.handleListSymbols).Methods(http.MethodGet)
	api.HandleFunc("/sync", s.handleSync).Methods(http.MethodPost)

	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/stats/symbols", s.handleSymbolStats).Methods(http.MethodGet)
	api.HandleFunc("/stats/hourly", s.handleHourlyStats).Methods(http.MethodGet)
	api.HandleFunc("/stats/daily", s.handleDailyStats).Methods(http.MethodGet)
	api.HandleFunc("/calendar", s.handleCalendar).Methods(http.MethodGet)

	api.HandleFunc("/badges", s.handleListBadges).Methods(http.MethodGet)
	api.HandleFunc("/badges/evaluate", s.handleEvaluateBadges).Methods(http.MethodPost)

	api.HandleFunc("/reports", s.handleListReports).Methods(http.MethodGet)
	api.HandleFunc("/reports/weekly", s.handleGenerateWeeklyReport).Methods(http.MethodPost)

	api.HandleFunc("/news", s.handleListNews).Methods(http.MethodGet)
	api.HandleFunc("/news/refresh", s.handleRefreshNews).Methods(http.MethodPost)
	api.HandleFunc("/news/{id:[0-9]+}/read", s.handleMarkNewsRead).Methods(http.MethodPost)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "MT5 Trading Journal is running",
	})
}

// badgeThresholds maps the configured badge settings onto the engine's
// threshold set.
func (s *Server) badgeThresholds() journal.Thresholds {
	b := s.cfg.Badges
	return journal.Thresholds{
		WinRate:            b.WinRate,
		ConsistencyOverall: b.ConsistencyOverall,
		ConsistencyRecent:  b.ConsistencyRecent,
		MinTrades:          b.MinTrades,
		HighProfit:         b.HighProfit,
		DisciplineShare:    b.DisciplineShare,
		RewardRiskTarget:   b.RewardRiskTarget,
		RewardRiskShare:    b.RewardRiskShare,
		DrawdownPercent:    b.DrawdownPercent,
	}
}
