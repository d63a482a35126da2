package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josegonzalez/game-catalog/pkg/catalog"
)

func TestDefaultRecordsNormalize(t *testing.T) {
	want := map[int]int{730: 95, 570: 92, 271590: 89, 1174180: 96, 1172380: 95}

	for _, rec := range DefaultRecords() {
		card := catalog.Normalize(rec)
		require.NotNil(t, card, "app %d", rec.SteamAppID)
		require.NotNil(t, card.Rating)
		assert.Equal(t, want[rec.SteamAppID], *card.Rating, "app %d", rec.SteamAppID)
	}
}

func TestListAppsOrder(t *testing.T) {
	s := New(DefaultRecords()...)

	stubs, err := s.ListApps(context.Background())
	require.NoError(t, err)
	require.Len(t, stubs, 5)
	assert.Equal(t, 730, stubs[0].AppID)
	assert.Equal(t, "Metro Exodus - Gold Edition", stubs[4].Name)
	assert.Equal(t, int64(1), s.ListCalls())
}

func TestFetchDetails(t *testing.T) {
	s := New(DefaultRecords()...)
	ctx := context.Background()

	rec, err := s.FetchDetails(ctx, 570)
	require.NoError(t, err)
	assert.True(t, rec.Success)
	assert.Equal(t, "Dota 2", rec.Name)

	rec.Name = "changed"
	again, _ := s.FetchDetails(ctx, 570)
	assert.Equal(t, "Dota 2", again.Name)

	unknown, err := s.FetchDetails(ctx, 1)
	require.NoError(t, err)
	assert.False(t, unknown.Success)
	assert.Equal(t, int64(3), s.DetailCalls())
}

func TestFailureInjection(t *testing.T) {
	s := New(DefaultRecords()...)
	ctx := context.Background()
	boom := errors.New("boom")

	s.Fail(570, boom)
	_, err := s.FetchDetails(ctx, 570)
	assert.ErrorIs(t, err, boom)

	s.Fail(570, nil)
	_, err = s.FetchDetails(ctx, 570)
	assert.NoError(t, err)

	s.SetListError(boom)
	_, err = s.ListApps(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Heartbeat(ctx), boom)
}

func TestDelayHonorsContext(t *testing.T) {
	s := New(DefaultRecords()...)
	s.SetDelay(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.FetchDetails(ctx, 570)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, catalog.Sources(), Name)
}
