package server

import (
	"net/http"
	"time"

	"github.com/netgee-k/mt5-v2/internal/journal"
	"github.com/netgee-k/mt5-v2/internal/models"
	"go.uber.org/zap"
)

func (s *Server) handleListBadges(w http.ResponseWriter, r *http.Request) {
	var badges []models.Badge
	if err := s.db.Where("user_id = ?", userID(r)).Order("awarded_at desc").Find(&badges).Error; err != nil {
		s.log.Error("Failed to get badges", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to get badges")
		return
	}

	s.writeJSON(w, http.StatusOK, badges)
}

// handleEvaluateBadges runs the badge rules over the user's last 30 days of
// trades and persists any newly qualifying badges. Already-held badges are
// never re-awarded, so repeated calls return an empty result.
func (s *Server) handleEvaluateBadges(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	trades, err := s.loadTrades(uid, time.Now().UTC().AddDate(0, 0, -30), time.Time{})
	if err != nil {
		s.log.Error("Failed to get trades for badge evaluation", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "badge evaluation failed")
		return
	}

	var existing []models.Badge
	if err := s.db.Where("user_id = ?", uid).Find(&existing).Error; err != nil {
		s.log.Error("Failed to get existing badges", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "badge evaluation failed")
		return
	}
	held := make(map[string]bool, len(existing))
	for _, b := range existing {
		held[b.BadgeType] = true
	}

	awards := journal.EvaluateBadges(trades, held, s.badgeThresholds())

	now := time.Now().UTC()
	granted := make([]models.Badge, 0, len(awards))
	for _, a := range awards {
		badge := models.Badge{
			UserID:      uid,
			BadgeType:   a.Type,
			Name:        a.Name,
			Description: a.Description,
			AwardedAt:   now,
		}
		if err := s.db.Create(&badge).Error; err != nil {
			s.log.Error("Failed to save badge",
				zap.String("badge_type", a.Type), zap.Error(err))
			continue
		}
		granted = append(granted, badge)
	}

	if len(granted) > 0 {
		s.log.Info("Awarded badges", zap.Uint("user_id", uid), zap.Int("count", len(granted)))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"awarded": granted})
}
