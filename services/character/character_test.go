package character

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"questLog/api"
	"questLog/clients/catalog"
	"questLog/services/gamemap"
	"questLog/store"
	"questLog/utils"
)

const owner = "owner-1"

// fakeCatalog knows a fixed set of skills and spells.
type fakeCatalog struct {
	skills map[string]catalog.Skill
	spells map[string]catalog.Spell
}

var _ catalog.Service = (*fakeCatalog)(nil)

func (f *fakeCatalog) GetSkill(_ context.Context, name string) (*catalog.Skill, error) {
	s, ok := f.skills[name]
	if !ok {
		return nil, fmt.Errorf("skill %q: %w", name, api.ErrNotFound)
	}
	return &s, nil
}

func (f *fakeCatalog) GetSpell(_ context.Context, name string) (*catalog.Spell, error) {
	s, ok := f.spells[name]
	if !ok {
		return nil, fmt.Errorf("spell %q: %w", name, api.ErrNotFound)
	}
	return &s, nil
}

func newTestService(t *testing.T) (Service, store.Store, gamemap.Service) {
	t.Helper()
	db := store.NewMemory()
	maps := gamemap.NewService(db)
	cat := &fakeCatalog{
		skills: map[string]catalog.Skill{
			"Stealth": {Index: "stealth", Name: "Stealth"},
		},
		spells: map[string]catalog.Spell{
			"Fireball": {Index: "fireball", Name: "Fireball", Level: 3},
		},
	}
	return NewService(db, cat, maps), db, maps
}

func createThorn(t *testing.T, svc Service) *api.Character {
	t.Helper()
	created, err := svc.Create(context.Background(), owner, api.CreateCharacterRequest{
		Name:  "Thorn",
		Level: 3,
		Race:  "Half-Orc",
		Class: "Ranger",
		Attributes: api.Attributes{
			Strength: 16, Dexterity: 14, Constitution: 13,
			Intelligence: 10, Wisdom: 12, Charisma: 8,
		},
	})
	require.NoError(t, err)
	return created
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	created := createThorn(t, svc)
	require.NotEmpty(t, created.ID)
	require.Equal(t, owner, created.OwnerID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Thorn", got.Name)
	require.Equal(t, 16, got.Attributes.Strength)
}

func TestCreateDefaultsLevel(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	created, err := svc.Create(ctx, owner, api.CreateCharacterRequest{Name: "Wick"})
	require.NoError(t, err)
	require.Equal(t, 1, created.Level)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	created := createThorn(t, svc)

	updated, err := svc.Update(ctx, created.ID, owner, api.UpdateCharacterRequest{
		Level:      utils.ToPointer(4),
		Background: utils.ToPointer("Outlander"),
	})
	require.NoError(t, err)
	require.Equal(t, 4, updated.Level)
	require.Equal(t, "Outlander", updated.Background)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 4, got.Level)
	require.Equal(t, "Half-Orc", got.Race, "untouched fields survive the merge")
}

func TestUpdateRequiresOwner(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	created := createThorn(t, svc)

	_, err := svc.Update(ctx, created.ID, "someone-else", api.UpdateCharacterRequest{
		Level: utils.ToPointer(20),
	})
	require.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestAddSkill(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	created := createThorn(t, svc)

	updated, err := svc.AddSkill(ctx, created.ID, owner, "Stealth")
	require.NoError(t, err)
	require.Equal(t, []string{"Stealth"}, updated.Skills)

	// Attaching the same skill again is a no-op.
	updated, err = svc.AddSkill(ctx, created.ID, owner, "Stealth")
	require.NoError(t, err)
	require.Equal(t, []string{"Stealth"}, updated.Skills)

	_, err = svc.AddSkill(ctx, created.ID, owner, "Underwater Basket Weaving")
	require.ErrorIs(t, err, api.ErrNotFound)
}

func TestAddSpell(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	created := createThorn(t, svc)

	updated, err := svc.AddSpell(ctx, created.ID, owner, "Fireball")
	require.NoError(t, err)
	require.Equal(t, []string{"Fireball"}, updated.Spells)

	_, err = svc.AddSpell(ctx, created.ID, owner, "Summon Bureaucracy")
	require.ErrorIs(t, err, api.ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	svc, db, maps := newTestService(t)
	created := createThorn(t, svc)

	campaign := api.Campaign{
		ID:           db.NewID(store.Campaigns),
		Name:         "Lost Mines",
		OwnerID:      owner,
		CharacterIDs: []string{created.ID},
		SessionIDs:   []string{},
		MapIDs:       []string{},
		CreatedAt:    time.Now(),
	}
	require.NoError(t, db.Set(ctx, store.Campaigns, campaign.ID, campaign))
	join := api.CampaignCharacter{
		ID:          db.NewID(store.CampaignCharacters),
		CampaignID:  campaign.ID,
		CharacterID: created.ID,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, db.Set(ctx, store.CampaignCharacters, join.ID, join))

	m, err := maps.CreateMap(ctx, campaign.ID, nil, "https://example.com/map.png")
	require.NoError(t, err)
	_, err = maps.PlacePin(ctx, m.ID, utils.ToPointer(5.0), utils.ToPointer(6.0), created.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID, owner))

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, api.ErrNotFound)

	joinDocs, err := db.Query(ctx, store.CampaignCharacters, store.Eq("characterId", created.ID))
	require.NoError(t, err)
	require.Empty(t, joinDocs, "join records are cleaned up")

	doc, err := db.Get(ctx, store.Campaigns, campaign.ID)
	require.NoError(t, err)
	got := api.Campaign{}
	require.NoError(t, doc.DataTo(&got))
	require.Empty(t, got.CharacterIDs, "member arrays are cleaned up")

	afterDelete, err := maps.GetMap(ctx, m.ID)
	require.NoError(t, err)
	require.Empty(t, afterDelete.Pins, "pins are stripped")
}

func TestDeleteRequiresOwner(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	created := createThorn(t, svc)

	err := svc.Delete(ctx, created.ID, "someone-else")
	require.ErrorIs(t, err, api.ErrUnauthorized)

	err = svc.Delete(ctx, "missing", owner)
	require.ErrorIs(t, err, api.ErrNotFound)

	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
}
