package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"questLog/api"
	"questLog/store"
	"questLog/store/storetest"
)

var errStoreDown = errors.New("store unavailable")

func newTestService(t *testing.T) (Service, store.Store) {
	t.Helper()
	db := store.NewMemory()
	return NewService(db), db
}

func seedCampaign(t *testing.T, db store.Store) api.Campaign {
	t.Helper()
	campaign := api.Campaign{
		ID:           db.NewID(store.Campaigns),
		Name:         "Lost Mines",
		OwnerID:      "owner-1",
		CharacterIDs: []string{},
		SessionIDs:   []string{},
		MapIDs:       []string{},
		CreatedAt:    time.Now(),
	}
	require.NoError(t, db.Set(context.Background(), store.Campaigns, campaign.ID, campaign))
	return campaign
}

func getCampaignRecord(t *testing.T, db store.Store, campaignID string) api.Campaign {
	t.Helper()
	doc, err := db.Get(context.Background(), store.Campaigns, campaignID)
	require.NoError(t, err)
	campaign := api.Campaign{}
	require.NoError(t, doc.DataTo(&campaign))
	return campaign
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	campaign := seedCampaign(t, db)

	created, err := svc.Create(ctx, campaign.ID, time.Now(), "We met in a tavern.")
	require.NoError(t, err)
	require.Equal(t, campaign.ID, created.CampaignID)

	got := getCampaignRecord(t, db, campaign.ID)
	require.Equal(t, []string{created.ID}, got.SessionIDs, "session reference is appended to the campaign")
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	campaign := seedCampaign(t, db)

	_, err := svc.Create(ctx, campaign.ID, time.Time{}, "no date")
	require.ErrorIs(t, err, api.ErrInvalidArgument)

	_, err = svc.Create(ctx, "missing", time.Now(), "no campaign")
	require.ErrorIs(t, err, api.ErrNotFound)
}

func TestListByCampaign(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	campaign := seedCampaign(t, db)
	other := seedCampaign(t, db)

	_, err := svc.Create(ctx, campaign.ID, time.Now(), "first")
	require.NoError(t, err)
	_, err = svc.Create(ctx, campaign.ID, time.Now(), "second")
	require.NoError(t, err)
	_, err = svc.Create(ctx, other.ID, time.Now(), "elsewhere")
	require.NoError(t, err)

	sessions, err := svc.ListByCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	campaign := seedCampaign(t, db)

	created, err := svc.Create(ctx, campaign.ID, time.Now(), "short-lived")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, campaign.ID, created.ID))

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, api.ErrNotFound)
	got := getCampaignRecord(t, db, campaign.ID)
	require.Empty(t, got.SessionIDs)
}

func TestDeleteCampaignReadFailure(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemory()
	faulty := storetest.NewFaulty(db)
	svc := NewService(faulty)
	campaign := seedCampaign(t, db)

	created, err := svc.Create(ctx, campaign.ID, time.Now(), "doomed")
	require.NoError(t, err)

	// A transient read failure on the campaign is not the same as the
	// campaign being gone; it must surface, not be swallowed.
	faulty.FailGet[store.Campaigns] = errStoreDown
	err = svc.Delete(ctx, campaign.ID, created.ID)
	var stepErr *api.StepError
	require.ErrorAs(t, err, &stepErr)
	require.Equal(t, "updateCampaignSessionList", stepErr.Step)
	require.ErrorIs(t, err, errStoreDown)

	// The session record itself is already gone; only the list update is
	// outstanding.
	_, err = db.Get(ctx, store.Sessions, created.ID)
	require.ErrorIs(t, err, api.ErrNotFound)
	got := getCampaignRecord(t, db, campaign.ID)
	require.Equal(t, []string{created.ID}, got.SessionIDs, "stale reference remains for the read path to tolerate")
}

func TestDeleteCampaignAlreadyGone(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	campaign := seedCampaign(t, db)

	created, err := svc.Create(ctx, campaign.ID, time.Now(), "orphaned")
	require.NoError(t, err)

	require.NoError(t, db.Delete(ctx, store.Campaigns, campaign.ID))

	require.NoError(t, svc.Delete(ctx, campaign.ID, created.ID), "a genuinely gone campaign is success")
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, api.ErrNotFound)
}

func TestDeleteWrongCampaign(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	campaign := seedCampaign(t, db)
	other := seedCampaign(t, db)

	created, err := svc.Create(ctx, campaign.ID, time.Now(), "stays put")
	require.NoError(t, err)

	err = svc.Delete(ctx, other.ID, created.ID)
	require.ErrorIs(t, err, api.ErrNotFound)

	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
}
