// Package campaign owns the campaign records, the read-side joins that
// resolve a campaign's references into full views, and the deletion fan-out
// for a campaign and everything nested under it.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"questLog/api"
	"questLog/set"
	"questLog/store"
	"questLog/utils"
)

type Service interface {
	// Create stores a new campaign owned by the given subject.
	Create(ctx context.Context, ownerID string, name string, description string) (*api.Campaign, error)

	// Get returns the campaign or api.ErrNotFound.
	Get(ctx context.Context, campaignID string) (*api.Campaign, error)

	// ListByOwner returns every campaign owned by the subject.
	ListByOwner(ctx context.Context, ownerID string) ([]api.Campaign, error)

	// GetDetail resolves the campaign's references into a full view.
	// Dangling references resolve to omission, never a failed read, and the
	// member array is deduplicated on the way out.
	GetDetail(ctx context.Context, campaignID string) (*api.CampaignDetail, error)

	// Delete removes the campaign, then its join records, sessions and maps
	// in that order. Each is a separate bulk delete with no rollback; a
	// failure after the campaign record is gone surfaces as a StepError, and
	// the records a crashed fan-out leaves behind are tolerated by the read
	// paths.
	Delete(ctx context.Context, campaignID string, requesterID string) error
}

type service struct {
	db store.Store
}

var _ Service = (*service)(nil)

func NewService(db store.Store) Service {
	return &service{db: db}
}

func (s *service) Create(ctx context.Context, ownerID string, name string, description string) (*api.Campaign, error) {
	if name == "" {
		return nil, fmt.Errorf("campaign name is required: %w", api.ErrInvalidArgument)
	}
	campaign := api.Campaign{
		ID:           s.db.NewID(store.Campaigns),
		Name:         name,
		Description:  description,
		OwnerID:      ownerID,
		CharacterIDs: []string{},
		SessionIDs:   []string{},
		MapIDs:       []string{},
		CreatedAt:    time.Now(),
	}
	if err := s.db.Set(ctx, store.Campaigns, campaign.ID, campaign); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	return &campaign, nil
}

func (s *service) Get(ctx context.Context, campaignID string) (*api.Campaign, error) {
	doc, err := s.db.Get(ctx, store.Campaigns, campaignID)
	if err != nil {
		return nil, err
	}
	campaign := api.Campaign{}
	if err := doc.DataTo(&campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID string) ([]api.Campaign, error) {
	docs, err := s.db.Query(ctx, store.Campaigns, store.Eq("ownerId", ownerID))
	if err != nil {
		return nil, err
	}
	return utils.DocsToStructs[api.Campaign](docs)
}

func (s *service) GetDetail(ctx context.Context, campaignID string) (*api.CampaignDetail, error) {
	campaign, err := s.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	// The member array may hold duplicates or dangling references while a
	// multi-step mutation is in flight; the view tolerates both.
	characters := make([]api.Character, 0, len(campaign.CharacterIDs))
	seen := set.New[string]()
	for _, id := range campaign.CharacterIDs {
		if seen.Contains(id) {
			continue
		}
		seen.Add(id)
		doc, err := s.db.Get(ctx, store.Characters, id)
		if err != nil {
			if errors.Is(err, api.ErrNotFound) {
				slog.With("campaignId", campaignID, "characterId", id).
					Warn("skipping dangling character reference")
				continue
			}
			return nil, err
		}
		c := api.Character{}
		if err := doc.DataTo(&c); err != nil {
			return nil, err
		}
		characters = append(characters, c)
	}

	sessionDocs, err := s.db.Query(ctx, store.Sessions, store.Eq("campaignId", campaignID))
	if err != nil {
		return nil, err
	}
	sessions, err := utils.DocsToStructs[api.Session](sessionDocs)
	if err != nil {
		return nil, err
	}

	mapDocs, err := s.db.Query(ctx, store.Maps, store.Eq("campaignId", campaignID))
	if err != nil {
		return nil, err
	}
	maps, err := utils.DocsToStructs[api.GameMap](mapDocs)
	if err != nil {
		return nil, err
	}

	return &api.CampaignDetail{
		Campaign:   *campaign,
		Characters: characters,
		Sessions:   sessions,
		Maps:       maps,
	}, nil
}

func (s *service) Delete(ctx context.Context, campaignID string, requesterID string) error {
	campaign, err := s.Get(ctx, campaignID)
	if err != nil {
		return err
	}
	if campaign.OwnerID != requesterID {
		return fmt.Errorf("subject %s does not own campaign %s: %w", requesterID, campaignID, api.ErrUnauthorized)
	}

	if err := s.db.Delete(ctx, store.Campaigns, campaignID); err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	// The campaign record is gone; everything below is cleanup of dependent
	// records. Each bulk delete is individually idempotent, and the read
	// paths tolerate the dangling records a crashed fan-out leaves behind.
	if err := s.deleteAll(ctx, store.CampaignCharacters, campaignID); err != nil {
		return api.NewStepError("deleteJoinRecords", err)
	}
	if err := s.deleteAll(ctx, store.Sessions, campaignID); err != nil {
		return api.NewStepError("deleteSessions", err)
	}
	if err := s.deleteAll(ctx, store.Maps, campaignID); err != nil {
		return api.NewStepError("deleteMaps", err)
	}
	return nil
}

func (s *service) deleteAll(ctx context.Context, collection string, campaignID string) error {
	docs, err := s.db.Query(ctx, collection, store.Eq("campaignId", campaignID))
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := s.db.Delete(ctx, collection, doc.ID()); err != nil {
			return err
		}
	}
	return nil
}
