package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/gourmet-house/models"
	"github.com/yeremiapane/gourmet-house/testutil"
)

func TestRaceConflictCarriesCommittedID(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewSubscriberService(store, nil)

	winner := models.Subscriber{Email: "race@example.com", IsActive: true, SubscribedAt: time.Now().UTC()}
	require.NoError(t, store.Create(ctx, &winner))

	conflict := svc.raceConflict(ctx, "race@example.com")
	assert.Equal(t, winner.ID, conflict.SubscriberID)
	assert.ErrorIs(t, conflict, ErrAlreadySubscribed)

	assert.Zero(t, svc.raceConflict(ctx, "gone@example.com").SubscriberID)
}
