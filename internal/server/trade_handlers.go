package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/netgee-k/mt5-v2/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// handleListTrades returns the user's trades, most recent first, with
// optional symbol filter and skip/limit pagination.
func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)
	symbol := r.URL.Query().Get("symbol")

	query := s.db.Where("user_id = ?", uid)
	if symbol != "" {
		query = query.Where("symbol = ?", symbol)
	}

	var total int64
	if err := query.Model(&models.Trade{}).Count(&total).Error; err != nil {
		s.log.Error("Failed to count trades", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to get trades")
		return
	}

	var trades []models.Trade
	if err := query.Order("open_time desc").Offset(skip).Limit(limit).Find(&trades).Error; err != nil {
		s.log.Error("Failed to get trades from database", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to get trades")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"total":  total,
		"trades": trades,
	})
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	ticket, err := strconv.ParseInt(mux.Vars(r)["ticket"], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid ticket")
		return
	}

	var trade models.Trade
	err = s.db.Where("user_id = ? AND ticket = ?", userID(r), ticket).First(&trade).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.writeError(w, http.StatusNotFound, "trade not found")
		return
	}
	if err != nil {
		s.log.Error("Failed to get trade", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to get trade")
		return
	}

	s.writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleListSymbols(w http.ResponseWriter, r *http.Request) {
	var symbols []string
	err := s.db.Model(&models.Trade{}).
		Where("user_id = ?", userID(r)).
		Distinct("symbol").
		Order("symbol").
		Pluck("symbol", &symbols).Error
	if err != nil {
		s.log.Error("Failed to get symbols", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to get symbols")
		return
	}

	s.writeJSON(w, http.StatusOK, symbols)
}

type syncRequest struct {
	Days int `json:"days"`
}

// handleSync pulls the configured history window from the broker terminal
// and reconciles it into the journal.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decodeJSON(r, &req); err != nil && err.Error() != "EOF" {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Days <= 0 {
		req.Days = s.cfg.Journal.SyncDays
	}

	uid := userID(r)
	count, err := s.syncer.Sync(r.Context(), uid, req.Days)
	if err != nil {
		s.log.Error("Sync failed", zap.Uint("user_id", uid), zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "sync failed: "+err.Error())
		return
	}

	var total int64
	s.db.Model(&models.Trade{}).Where("user_id = ?", uid).Count(&total)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"synced":      count,
		"total_in_db": total,
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
