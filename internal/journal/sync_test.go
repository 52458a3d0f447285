package journal

import (
	"context"
	"testing"
	"time"

	"github.com/netgee-k/mt5-v2/internal/broker"
	"github.com/netgee-k/mt5-v2/internal/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeHistoryClient serves a canned deal list without a broker terminal.
type fakeHistoryClient struct {
	deals []broker.Deal
	err   error
}

func (f *fakeHistoryClient) HistoryDeals(_ context.Context, _, _ time.Time) ([]broker.Deal, error) {
	return f.deals, f.err
}

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.Trade{}))
	return db
}

func TestSyncWritesPairedTrades(t *testing.T) {
	open := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Second)
	client := &fakeHistoryClient{deals: []broker.Deal{
		openDeal(101, 555, "EURUSD", "BUY", open, 1.1000),
		closeDeal(102, 555, "EURUSD", "SELL", open.Add(45*time.Minute), 1.1050, 50.0),
	}}

	db := newTestDB(t)
	syncer := NewSyncer(zap.NewNop(), db, client, DefaultPipMultiplier)

	written, err := syncer.Sync(context.Background(), 1, 30)

	assert.NoError(t, err)
	assert.Equal(t, 1, written)

	var stored models.Trade
	assert.NoError(t, db.Where("user_id = ? AND ticket = ?", 1, 102).First(&stored).Error)
	assert.Equal(t, "EURUSD", stored.Symbol)
	assert.Equal(t, 45, *stored.DurationMinutes)
	assert.InDelta(t, 50.0, *stored.Pips, 1e-6)
	assert.True(t, *stored.Win)
}

func TestSyncIsIdempotent(t *testing.T) {
	open := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Second)
	client := &fakeHistoryClient{deals: []broker.Deal{
		openDeal(101, 555, "EURUSD", "BUY", open, 1.1000),
		closeDeal(102, 555, "EURUSD", "SELL", open.Add(time.Hour), 1.1050, 50.0),
	}}

	db := newTestDB(t)
	syncer := NewSyncer(zap.NewNop(), db, client, DefaultPipMultiplier)

	_, err := syncer.Sync(context.Background(), 1, 30)
	assert.NoError(t, err)
	_, err = syncer.Sync(context.Background(), 1, 30)
	assert.NoError(t, err)

	var count int64
	db.Model(&models.Trade{}).Where("user_id = ?", 1).Count(&count)
	assert.Equal(t, int64(1), count, "resync must update, not duplicate")
}

func TestSyncResyncOverwritesDerivedFields(t *testing.T) {
	open := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Second)
	client := &fakeHistoryClient{deals: []broker.Deal{
		openDeal(101, 555, "EURUSD", "BUY", open, 1.1000),
		closeDeal(102, 555, "EURUSD", "SELL", open.Add(time.Hour), 1.1050, 50.0),
	}}

	db := newTestDB(t)
	syncer := NewSyncer(zap.NewNop(), db, client, DefaultPipMultiplier)
	_, err := syncer.Sync(context.Background(), 1, 30)
	assert.NoError(t, err)

	// The broker revises the closing price; the resync must refresh raw and
	// derived fields together.
	client.deals[1].Price = 1.1100
	_, err = syncer.Sync(context.Background(), 1, 30)
	assert.NoError(t, err)

	var stored models.Trade
	assert.NoError(t, db.Where("ticket = ?", 102).First(&stored).Error)
	assert.Equal(t, 1.1100, *stored.ClosePrice)
	assert.InDelta(t, 100.0, *stored.Pips, 1e-6)
}

func TestSyncSkipsMalformedDeals(t *testing.T) {
	open := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Second)
	noSymbol := closeDeal(202, 666, "", "SELL", open, 1.5, 10.0)
	badPrice := closeDeal(203, 667, "GBPUSD", "SELL", open, 0, 10.0)

	client := &fakeHistoryClient{deals: []broker.Deal{
		openDeal(101, 555, "EURUSD", "BUY", open, 1.1000),
		closeDeal(102, 555, "EURUSD", "SELL", open.Add(time.Hour), 1.1050, 50.0),
		noSymbol,
		badPrice,
	}}

	db := newTestDB(t)
	syncer := NewSyncer(zap.NewNop(), db, client, DefaultPipMultiplier)

	written, err := syncer.Sync(context.Background(), 1, 30)

	assert.NoError(t, err)
	assert.Equal(t, 1, written, "malformed deals are dropped, the batch survives")
}

func TestSyncPropagatesFetchErrors(t *testing.T) {
	client := &fakeHistoryClient{err: assert.AnError}
	syncer := NewSyncer(zap.NewNop(), newTestDB(t), client, DefaultPipMultiplier)

	_, err := syncer.Sync(context.Background(), 1, 30)

	assert.ErrorIs(t, err, assert.AnError)
}
