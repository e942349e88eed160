// Package membership owns the many-to-many relationship between campaigns
// and characters. The relationship is stored twice: as the characterIds
// array embedded in the campaign record and as one join record per edge in
// the campaignCharacters collection. The join record is the authoritative
// edge; the array is a denormalized cache of the same edges.
//
// There is no multi-record transaction. Every operation here is a fixed
// sequence of single-record writes; the ordering is chosen so that a reader
// who observes a join record can assume the array already reflects it.
// Partial completion is visible to concurrent readers and is reconciled by
// caller retry, which is safe because each step is delete-if-exists or
// overwrite-by-id.
package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"questLog/api"
	"questLog/services/gamemap"
	"questLog/store"
	"questLog/utils"
)

type Service interface {
	// AddMember links a character to a campaign. The characterIds array is
	// updated first, then the join record is created. Re-adding an existing
	// member leaves the array untouched but still creates a fresh join
	// record; duplicate join records for one logical edge are tolerated and
	// cleaned up on removal.
	AddMember(ctx context.Context, campaignID string, characterID string) (*api.CampaignCharacter, error)

	// SwapMember replaces one member with another. The join record is
	// rewritten first, then the array slot holding the old character is
	// overwritten in place so unrelated order is preserved. Map pins
	// referencing the old character are deliberately not touched; pins are
	// reconciled only on full removal.
	SwapMember(ctx context.Context, campaignID string, oldCharacterID string, newCharacterID string) (*api.Campaign, error)

	// RemoveMember deletes the join records for the pair, pulls the
	// character out of the campaign's array, then strips any pin
	// referencing the character from every map of the campaign. Three
	// independent writes, no rollback.
	RemoveMember(ctx context.Context, campaignID string, characterID string) (*api.Campaign, error)
}

type service struct {
	db   store.Store
	maps gamemap.Service
}

var _ Service = (*service)(nil)

func NewService(db store.Store, maps gamemap.Service) Service {
	return &service{
		db:   db,
		maps: maps,
	}
}

func (s *service) AddMember(ctx context.Context, campaignID string, characterID string) (*api.CampaignCharacter, error) {
	campaign, err := getCampaign(ctx, s.db, campaignID)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Get(ctx, store.Characters, characterID); err != nil {
		return nil, err
	}

	alreadyMember := false
	for _, id := range campaign.CharacterIDs {
		if id == characterID {
			alreadyMember = true
			break
		}
	}

	// Array first. A reader who sees the join record may assume the array
	// already reflects it.
	if !alreadyMember {
		campaign.CharacterIDs = append(campaign.CharacterIDs, characterID)
		if err := s.db.Set(ctx, store.Campaigns, campaignID, campaign); err != nil {
			return nil, fmt.Errorf("failed to update member list: %w", err)
		}
	}

	join := api.CampaignCharacter{
		ID:          s.db.NewID(store.CampaignCharacters),
		CampaignID:  campaignID,
		CharacterID: characterID,
		CreatedAt:   time.Now(),
	}
	if err := s.db.Set(ctx, store.CampaignCharacters, join.ID, join); err != nil {
		// The array already lists the character; retrying converges because
		// the array write is skipped once the member is present.
		return nil, api.NewStepError("createJoinRecord", err)
	}
	return &join, nil
}

func (s *service) SwapMember(ctx context.Context, campaignID string, oldCharacterID string, newCharacterID string) (*api.Campaign, error) {
	joins, err := s.findJoins(ctx, campaignID, oldCharacterID)
	if err != nil {
		return nil, err
	}
	if len(joins) == 0 {
		return nil, fmt.Errorf("no membership for character %s in campaign %s: %w", oldCharacterID, campaignID, api.ErrNotFound)
	}

	join := joins[0]
	join.CharacterID = newCharacterID
	if err := s.db.Set(ctx, store.CampaignCharacters, join.ID, join); err != nil {
		return nil, fmt.Errorf("failed to rewrite join record: %w", err)
	}

	campaign, err := getCampaign(ctx, s.db, campaignID)
	if err != nil {
		return nil, api.NewStepError("updateMemberArray", err)
	}
	// Positional replace, not remove+append, so unrelated order survives.
	for i, id := range campaign.CharacterIDs {
		if id == oldCharacterID {
			campaign.CharacterIDs[i] = newCharacterID
			break
		}
	}
	if err := s.db.Set(ctx, store.Campaigns, campaignID, campaign); err != nil {
		return nil, api.NewStepError("updateMemberArray", err)
	}
	return campaign, nil
}

func (s *service) RemoveMember(ctx context.Context, campaignID string, characterID string) (*api.Campaign, error) {
	joins, err := s.findJoins(ctx, campaignID, characterID)
	if err != nil {
		return nil, err
	}
	if len(joins) == 0 {
		return nil, fmt.Errorf("no membership for character %s in campaign %s: %w", characterID, campaignID, api.ErrNotFound)
	}

	// Every join record for the pair goes, so duplicate edges from repeated
	// adds never outlive the membership.
	for _, join := range joins {
		if err := s.db.Delete(ctx, store.CampaignCharacters, join.ID); err != nil {
			return nil, api.NewStepError("deleteJoinRecord", err)
		}
	}

	campaign, err := getCampaign(ctx, s.db, campaignID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			// Campaign record gone under us; nothing left to pull the
			// character out of, but the pin cleanup below still applies to
			// any maps the campaign's own fan-out has not reached yet.
			log.Warn().Str("campaignId", campaignID).Msg("campaign missing during member removal")
			campaign = &api.Campaign{
				ID:           campaignID,
				CharacterIDs: []string{},
				SessionIDs:   []string{},
				MapIDs:       []string{},
			}
		} else {
			return nil, api.NewStepError("updateMemberArray", err)
		}
	} else {
		memberIDs := make([]string, 0, len(campaign.CharacterIDs))
		for _, id := range campaign.CharacterIDs {
			if id == characterID {
				continue
			}
			memberIDs = append(memberIDs, id)
		}
		campaign.CharacterIDs = memberIDs
		if err := s.db.Set(ctx, store.Campaigns, campaignID, campaign); err != nil {
			return nil, api.NewStepError("updateMemberArray", err)
		}
	}

	maps, err := s.maps.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, api.NewStepError("removePins", err)
	}
	for _, m := range maps {
		if err := s.maps.RemovePinsForCharacter(ctx, m.ID, characterID); err != nil {
			return nil, api.NewStepError("removePins", err)
		}
	}
	return campaign, nil
}

func (s *service) findJoins(ctx context.Context, campaignID string, characterID string) ([]api.CampaignCharacter, error) {
	docs, err := s.db.Query(ctx, store.CampaignCharacters,
		store.Eq("campaignId", campaignID),
		store.Eq("characterId", characterID),
	)
	if err != nil {
		return nil, err
	}
	return utils.DocsToStructs[api.CampaignCharacter](docs)
}

func getCampaign(ctx context.Context, db store.Store, campaignID string) (*api.Campaign, error) {
	doc, err := db.Get(ctx, store.Campaigns, campaignID)
	if err != nil {
		return nil, err
	}
	campaign := api.Campaign{}
	if err := doc.DataTo(&campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}
