// Package character owns the character records. Characters have an
// independent lifecycle: they can exist unattached to any campaign and they
// survive the campaigns they were members of. Deleting one cascades across
// every campaign that references it.
package character

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"questLog/api"
	"questLog/clients/catalog"
	"questLog/services/gamemap"
	"questLog/set"
	"questLog/store"
	"questLog/utils"
)

type Service interface {
	// Create stores a new character owned by the given subject.
	Create(ctx context.Context, ownerID string, req api.CreateCharacterRequest) (*api.Character, error)

	// Get returns the character or api.ErrNotFound.
	Get(ctx context.Context, characterID string) (*api.Character, error)

	// ListByOwner returns every character owned by the subject.
	ListByOwner(ctx context.Context, ownerID string) ([]api.Character, error)

	// Update applies a partial update as a merge write. Only the owner may
	// update.
	Update(ctx context.Context, characterID string, requesterID string, req api.UpdateCharacterRequest) (*api.Character, error)

	// AddSkill attaches a skill after validating the name against the
	// reference-data catalog.
	AddSkill(ctx context.Context, characterID string, requesterID string, name string) (*api.Character, error)

	// AddSpell attaches a spell after validating the name against the
	// reference-data catalog.
	AddSpell(ctx context.Context, characterID string, requesterID string, name string) (*api.Character, error)

	// Delete removes the character and cascades: every join record for it
	// is deleted, it is pulled out of every campaign's member array, and
	// its pins are stripped from the maps of those campaigns.
	Delete(ctx context.Context, characterID string, requesterID string) error
}

type service struct {
	db      store.Store
	catalog catalog.Service
	maps    gamemap.Service
}

var _ Service = (*service)(nil)

func NewService(db store.Store, catalogService catalog.Service, maps gamemap.Service) Service {
	return &service{
		db:      db,
		catalog: catalogService,
		maps:    maps,
	}
}

func (s *service) Create(ctx context.Context, ownerID string, req api.CreateCharacterRequest) (*api.Character, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("character name is required: %w", api.ErrInvalidArgument)
	}
	character := api.TransformCreateCharacter(ownerID, req)
	character.ID = s.db.NewID(store.Characters)
	if err := s.db.Set(ctx, store.Characters, character.ID, character); err != nil {
		return nil, fmt.Errorf("failed to create character: %w", err)
	}
	return &character, nil
}

func (s *service) Get(ctx context.Context, characterID string) (*api.Character, error) {
	doc, err := s.db.Get(ctx, store.Characters, characterID)
	if err != nil {
		return nil, err
	}
	character := api.Character{}
	if err := doc.DataTo(&character); err != nil {
		return nil, err
	}
	return &character, nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID string) ([]api.Character, error) {
	docs, err := s.db.Query(ctx, store.Characters, store.Eq("ownerId", ownerID))
	if err != nil {
		return nil, err
	}
	return utils.DocsToStructs[api.Character](docs)
}

func (s *service) Update(ctx context.Context, characterID string, requesterID string, req api.UpdateCharacterRequest) (*api.Character, error) {
	character, err := s.getOwned(ctx, characterID, requesterID)
	if err != nil {
		return nil, err
	}
	api.ApplyCharacterUpdate(character, req)
	if err := s.db.Merge(ctx, store.Characters, characterID, utils.UpdateMap(*character)); err != nil {
		return nil, fmt.Errorf("failed to update character: %w", err)
	}
	return character, nil
}

func (s *service) AddSkill(ctx context.Context, characterID string, requesterID string, name string) (*api.Character, error) {
	skill, err := s.catalog.GetSkill(ctx, name)
	if err != nil {
		return nil, err
	}
	character, err := s.getOwned(ctx, characterID, requesterID)
	if err != nil {
		return nil, err
	}
	if set.FromSlice(character.Skills).Contains(skill.Name) {
		return character, nil
	}
	character.Skills = append(character.Skills, skill.Name)
	if err := s.db.Merge(ctx, store.Characters, characterID, map[string]any{"skills": character.Skills}); err != nil {
		return nil, fmt.Errorf("failed to attach skill: %w", err)
	}
	return character, nil
}

func (s *service) AddSpell(ctx context.Context, characterID string, requesterID string, name string) (*api.Character, error) {
	spell, err := s.catalog.GetSpell(ctx, name)
	if err != nil {
		return nil, err
	}
	character, err := s.getOwned(ctx, characterID, requesterID)
	if err != nil {
		return nil, err
	}
	if set.FromSlice(character.Spells).Contains(spell.Name) {
		return character, nil
	}
	character.Spells = append(character.Spells, spell.Name)
	if err := s.db.Merge(ctx, store.Characters, characterID, map[string]any{"spells": character.Spells}); err != nil {
		return nil, fmt.Errorf("failed to attach spell: %w", err)
	}
	return character, nil
}

func (s *service) Delete(ctx context.Context, characterID string, requesterID string) error {
	if _, err := s.getOwned(ctx, characterID, requesterID); err != nil {
		return err
	}

	if err := s.db.Delete(ctx, store.Characters, characterID); err != nil {
		return fmt.Errorf("failed to delete character: %w", err)
	}

	// Collect every campaign that references the character, from the join
	// records and from the member arrays. Either side can briefly know an
	// edge the other does not.
	campaignIDs := set.New[string]()

	joinDocs, err := s.db.Query(ctx, store.CampaignCharacters, store.Eq("characterId", characterID))
	if err != nil {
		return api.NewStepError("deleteJoinRecords", err)
	}
	joins, err := utils.DocsToStructs[api.CampaignCharacter](joinDocs)
	if err != nil {
		return api.NewStepError("deleteJoinRecords", err)
	}
	for _, join := range joins {
		campaignIDs.Add(join.CampaignID)
		if err := s.db.Delete(ctx, store.CampaignCharacters, join.ID); err != nil {
			return api.NewStepError("deleteJoinRecords", err)
		}
	}

	campaignDocs, err := s.db.Query(ctx, store.Campaigns, store.Contains("characterIds", characterID))
	if err != nil {
		return api.NewStepError("updateMemberArrays", err)
	}
	campaigns, err := utils.DocsToStructs[api.Campaign](campaignDocs)
	if err != nil {
		return api.NewStepError("updateMemberArrays", err)
	}
	for _, campaign := range campaigns {
		campaignIDs.Add(campaign.ID)
		memberIDs := make([]string, 0, len(campaign.CharacterIDs))
		for _, id := range campaign.CharacterIDs {
			if id == characterID {
				continue
			}
			memberIDs = append(memberIDs, id)
		}
		campaign.CharacterIDs = memberIDs
		if err := s.db.Set(ctx, store.Campaigns, campaign.ID, campaign); err != nil {
			return api.NewStepError("updateMemberArrays", err)
		}
	}

	for _, campaignID := range campaignIDs.ToSlice() {
		maps, err := s.maps.ListByCampaign(ctx, campaignID)
		if err != nil {
			return api.NewStepError("removePins", err)
		}
		for _, m := range maps {
			if err := s.maps.RemovePinsForCharacter(ctx, m.ID, characterID); err != nil {
				return api.NewStepError("removePins", err)
			}
		}
	}
	return nil
}

func (s *service) getOwned(ctx context.Context, characterID string, requesterID string) (*api.Character, error) {
	character, err := s.Get(ctx, characterID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			slog.With("characterId", characterID).Info("character lookup missed")
		}
		return nil, err
	}
	if character.OwnerID != requesterID {
		return nil, fmt.Errorf("subject %s does not own character %s: %w", requesterID, characterID, api.ErrUnauthorized)
	}
	return character, nil
}
