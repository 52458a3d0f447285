package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/netgee-k/mt5-v2/internal/market"
	"github.com/netgee-k/mt5-v2/internal/models"
	"go.uber.org/zap"
)

func (s *Server) handleListNews(w http.ResponseWriter, r *http.Request) {
	var alerts []models.NewsAlert
	err := s.db.Where("user_id = ?", userID(r)).Order("published_at desc").
		Limit(queryInt(r, "limit", s.cfg.Finnhub.MaxArticles)).Find(&alerts).Error
	if err != nil {
		s.log.Error("Failed to get news", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to get news")
		return
	}

	s.writeJSON(w, http.StatusOK, alerts)
}

// handleRefreshNews pulls fresh market news from the news API and stores
// the articles as alerts. With a symbol query parameter it fetches
// company news for that symbol over the last seven days instead.
func (s *Server) handleRefreshNews(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	symbol := r.URL.Query().Get("symbol")
	category := r.URL.Query().Get("category")
	if category == "" {
		category = "general"
	}

	items, err := s.fetchNews(r, symbol, category)
	if err != nil {
		s.log.Warn("News fetch failed", zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "news fetch failed")
		return
	}

	stored := 0
	for _, item := range items {
		alert := models.NewsAlert{
			UserID:      uid,
			Symbol:      firstRelated(item.Related, symbol),
			Title:       item.Headline,
			Summary:     truncate(item.Summary, 200),
			Impact:      item.Impact(),
			Source:      item.Source,
			URL:         item.URL,
			PublishedAt: item.PublishedAt(),
		}
		// Skip articles already stored for this user.
		var count int64
		s.db.Model(&models.NewsAlert{}).
			Where("user_id = ? AND title = ? AND published_at = ?", uid, alert.Title, alert.PublishedAt).
			Count(&count)
		if count > 0 {
			continue
		}
		if err := s.db.Create(&alert).Error; err != nil {
			s.log.Error("Failed to save news alert", zap.Error(err))
			continue
		}
		stored++
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"fetched": len(items), "stored": stored})
}

func (s *Server) fetchNews(r *http.Request, symbol, category string) ([]market.NewsItem, error) {
	limit := s.cfg.Finnhub.MaxArticles
	if symbol != "" {
		to := time.Now().UTC()
		return s.market.GetCompanyNews(r.Context(), symbol, to.AddDate(0, 0, -7), to)
	}
	return s.market.GetMarketNews(r.Context(), category, limit)
}

func (s *Server) handleMarkNewsRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	result := s.db.Model(&models.NewsAlert{}).
		Where("id = ? AND user_id = ?", id, userID(r)).
		Update("is_read", true)
	if result.Error != nil {
		s.log.Error("Failed to mark news read", zap.Error(result.Error))
		s.writeError(w, http.StatusInternalServerError, "update failed")
		return
	}
	if result.RowsAffected == 0 {
		s.writeError(w, http.StatusNotFound, "news alert not found")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"message": "marked as read"})
}

func firstRelated(related, fallback string) string {
	if fallback != "" {
		return fallback
	}
	for i := 0; i < len(related); i++ {
		if related[i] == ',' {
			return related[:i]
		}
	}
	return related
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
