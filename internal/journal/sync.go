package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/netgee-k/mt5-v2/internal/broker"
	"github.com/netgee-k/mt5-v2/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Syncer pulls closed-deal history from the broker terminal and reconciles
// it into stored trades. One Sync call is a single blocking pass: fetch,
// pair, derive, upsert.
type Syncer struct {
	logger        *zap.Logger
	db            *gorm.DB
	client        broker.HistoryClient
	pipMultiplier float64
}

// NewSyncer creates a new sync service.
func NewSyncer(logger *zap.Logger, db *gorm.DB, client broker.HistoryClient, pipMultiplier float64) *Syncer {
	if pipMultiplier == 0 {
		pipMultiplier = DefaultPipMultiplier
	}
	return &Syncer{
		logger:        logger,
		db:            db,
		client:        client,
		pipMultiplier: pipMultiplier,
	}
}

// Sync fetches the last `days` of deal history for the user and upserts the
// reconciled trades keyed by (user_id, ticket). It returns the number of
// trades written. Malformed deals are skipped with a warning and never fail
// the batch.
func (s *Syncer) Sync(ctx context.Context, userID uint, days int) (int, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)

	deals, err := s.client.HistoryDeals(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("could not fetch deal history: %w", err)
	}
	s.logger.Info("Fetched deals from broker",
		zap.Int("count", len(deals)),
		zap.Time("from", from),
		zap.Time("to", to))

	valid := deals[:0:0]
	for _, d := range deals {
		if d.Price <= 0 || d.Symbol == "" || d.Ticket == 0 {
			s.logger.Warn("Skipping malformed deal",
				zap.Int64("ticket", d.Ticket),
				zap.String("symbol", d.Symbol),
				zap.Float64("price", d.Price))
			continue
		}
		valid = append(valid, d)
	}

	trades := PairDeals(valid)
	now := time.Now().UTC()

	written := 0
	for i := range trades {
		t := trades[i]
		t.UserID = userID
		t.SyncedAt = now
		Derive(&t, s.pipMultiplier)

		if err := s.upsert(&t); err != nil {
			s.logger.Error("Failed to save trade",
				zap.Int64("ticket", t.Ticket),
				zap.Error(err))
			continue
		}
		written++
	}

	s.logger.Info("Sync complete",
		zap.Uint("user_id", userID),
		zap.Int("trades", written))
	return written, nil
}

// upsert inserts the trade or, if the (user_id, ticket) key exists, updates
// the existing row. Raw and derived fields are written together so a resync
// can never pair stale derived values with fresh raw ones.
func (s *Syncer) upsert(t *models.Trade) error {
	var existing models.Trade
	err := s.db.Where("user_id = ? AND ticket = ?", t.UserID, t.Ticket).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(t).Error
	}
	if err != nil {
		return err
	}

	t.ID = existing.ID
	t.CreatedAt = existing.CreatedAt
	return s.db.Save(t).Error
}
