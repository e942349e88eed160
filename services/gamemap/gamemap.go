// Package gamemap owns the map records and their embedded pin lists. A pin
// list is always rewritten whole; there is no partial-list update.
package gamemap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"questLog/api"
	"questLog/store"
	"questLog/utils"
)

type Service interface {
	// CreateMap stores a new map for the campaign and appends its reference
	// to the campaign's map list.
	CreateMap(ctx context.Context, campaignID string, sessionID *string, imageURL string) (*api.GameMap, error)

	// GetMap returns the map or api.ErrNotFound.
	GetMap(ctx context.Context, mapID string) (*api.GameMap, error)

	// ListByCampaign returns every map whose campaign reference matches.
	ListByCampaign(ctx context.Context, campaignID string) ([]api.GameMap, error)

	// PlacePin puts a character marker at (x, y). A character occupies at
	// most one pin per map: any existing pin for the character is removed
	// before the new one is appended, so placing implicitly relocates.
	// Returns the resulting pin list.
	PlacePin(ctx context.Context, mapID string, x, y *float64, characterID string) ([]api.Pin, error)

	// RemovePinsForCharacter drops every pin referencing the character from
	// the map. A no-op when no such pin exists, and success when the map
	// itself is already gone.
	RemovePinsForCharacter(ctx context.Context, mapID string, characterID string) error

	// DeleteMap removes the map and strips its reference from the owning
	// campaign's map list.
	DeleteMap(ctx context.Context, campaignID string, mapID string) error
}

type service struct {
	db store.Store
}

var _ Service = (*service)(nil)

func NewService(db store.Store) Service {
	return &service{db: db}
}

func (s *service) CreateMap(ctx context.Context, campaignID string, sessionID *string, imageURL string) (*api.GameMap, error) {
	doc, err := s.db.Get(ctx, store.Campaigns, campaignID)
	if err != nil {
		return nil, err
	}
	campaign := api.Campaign{}
	if err := doc.DataTo(&campaign); err != nil {
		return nil, err
	}

	m := api.GameMap{
		ID:         s.db.NewID(store.Maps),
		CampaignID: campaignID,
		SessionID:  sessionID,
		ImageURL:   imageURL,
		Pins:       []api.Pin{},
		CreatedAt:  time.Now(),
	}
	if err := s.db.Set(ctx, store.Maps, m.ID, m); err != nil {
		return nil, fmt.Errorf("failed to create map: %w", err)
	}

	campaign.MapIDs = append(campaign.MapIDs, m.ID)
	if err := s.db.Set(ctx, store.Campaigns, campaignID, campaign); err != nil {
		// The map record exists but the campaign's list does not show it
		// yet. Left for the caller to retry; the append is idempotent-safe
		// because the read path deduplicates.
		return nil, api.NewStepError("updateCampaignMapList", err)
	}
	return &m, nil
}

func (s *service) GetMap(ctx context.Context, mapID string) (*api.GameMap, error) {
	doc, err := s.db.Get(ctx, store.Maps, mapID)
	if err != nil {
		return nil, err
	}
	m := api.GameMap{}
	if err := doc.DataTo(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *service) ListByCampaign(ctx context.Context, campaignID string) ([]api.GameMap, error) {
	docs, err := s.db.Query(ctx, store.Maps, store.Eq("campaignId", campaignID))
	if err != nil {
		return nil, err
	}
	return utils.DocsToStructs[api.GameMap](docs)
}

func (s *service) PlacePin(ctx context.Context, mapID string, x, y *float64, characterID string) ([]api.Pin, error) {
	if x == nil || y == nil {
		return nil, fmt.Errorf("pin coordinates are required: %w", api.ErrInvalidArgument)
	}

	m, err := s.GetMap(ctx, mapID)
	if err != nil {
		return nil, err
	}

	pins := make([]api.Pin, 0, len(m.Pins)+1)
	for _, pin := range m.Pins {
		if pin.CharacterID != nil && *pin.CharacterID == characterID {
			continue
		}
		pins = append(pins, pin)
	}
	pins = append(pins, api.Pin{X: *x, Y: *y, CharacterID: utils.ToPointer(characterID)})

	m.Pins = pins
	if err := s.db.Set(ctx, store.Maps, mapID, m); err != nil {
		return nil, fmt.Errorf("failed to update pins: %w", err)
	}
	return pins, nil
}

func (s *service) RemovePinsForCharacter(ctx context.Context, mapID string, characterID string) error {
	m, err := s.GetMap(ctx, mapID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			// Already removed counts as removed.
			return nil
		}
		return err
	}

	pins := make([]api.Pin, 0, len(m.Pins))
	for _, pin := range m.Pins {
		if pin.CharacterID != nil && *pin.CharacterID == characterID {
			continue
		}
		pins = append(pins, pin)
	}
	if len(pins) == len(m.Pins) {
		return nil
	}

	m.Pins = pins
	if err := s.db.Set(ctx, store.Maps, mapID, m); err != nil {
		return fmt.Errorf("failed to update pins: %w", err)
	}
	return nil
}

func (s *service) DeleteMap(ctx context.Context, campaignID string, mapID string) error {
	m, err := s.GetMap(ctx, mapID)
	if err != nil {
		return err
	}
	if m.CampaignID != campaignID {
		return fmt.Errorf("map %s does not belong to campaign %s: %w", mapID, campaignID, api.ErrNotFound)
	}

	if err := s.db.Delete(ctx, store.Maps, mapID); err != nil {
		return fmt.Errorf("failed to delete map: %w", err)
	}

	doc, err := s.db.Get(ctx, store.Campaigns, campaignID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			slog.With("campaignId", campaignID).Warn("campaign gone while deleting map, skipping list update")
			return nil
		}
		return api.NewStepError("updateCampaignMapList", err)
	}
	campaign := api.Campaign{}
	if err := doc.DataTo(&campaign); err != nil {
		return api.NewStepError("updateCampaignMapList", err)
	}
	mapIDs := make([]string, 0, len(campaign.MapIDs))
	for _, id := range campaign.MapIDs {
		if id == mapID {
			continue
		}
		mapIDs = append(mapIDs, id)
	}
	campaign.MapIDs = mapIDs
	if err := s.db.Set(ctx, store.Campaigns, campaignID, campaign); err != nil {
		return api.NewStepError("updateCampaignMapList", err)
	}
	return nil
}
