// Package session owns the dated log entries nested inside a campaign.
package session

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
	// Create stores a new session log for the campaign and appends its
	// reference to the campaign's session list.
	Create(ctx context.Context, campaignID string, date time.Time, logEntry string) (*api.Session, error)

	// Get returns the session or api.ErrNotFound.
	Get(ctx context.Context, sessionID string) (*api.Session, error)

	// ListByCampaign returns every session whose campaign reference matches.
	ListByCampaign(ctx context.Context, campaignID string) ([]api.Session, error)

	// Delete removes the session and strips its reference from the owning
	// campaign's session list.
	Delete(ctx context.Context, campaignID string, sessionID string) error
}

type service struct {
	db store.Store
}

var _ Service = (*service)(nil)

func NewService(db store.Store) Service {
	return &service{db: db}
}

func (s *service) Create(ctx context.Context, campaignID string, date time.Time, logEntry string) (*api.Session, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("session date is required: %w", api.ErrInvalidArgument)
	}
	doc, err := s.db.Get(ctx, store.Campaigns, campaignID)
	if err != nil {
		return nil, err
	}
	campaign := api.Campaign{}
	if err := doc.DataTo(&campaign); err != nil {
		return nil, err
	}

	session := api.Session{
		ID:         s.db.NewID(store.Sessions),
		CampaignID: campaignID,
		Date:       date,
		Log:        logEntry,
		CreatedAt:  time.Now(),
	}
	if err := s.db.Set(ctx, store.Sessions, session.ID, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	campaign.SessionIDs = append(campaign.SessionIDs, session.ID)
	if err := s.db.Set(ctx, store.Campaigns, campaignID, campaign); err != nil {
		return nil, api.NewStepError("updateCampaignSessionList", err)
	}
	return &session, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*api.Session, error) {
	doc, err := s.db.Get(ctx, store.Sessions, sessionID)
	if err != nil {
		return nil, err
	}
	session := api.Session{}
	if err := doc.DataTo(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *service) ListByCampaign(ctx context.Context, campaignID string) ([]api.Session, error) {
	docs, err := s.db.Query(ctx, store.Sessions, store.Eq("campaignId", campaignID))
	if err != nil {
		return nil, err
	}
	return utils.DocsToStructs[api.Session](docs)
}

func (s *service) Delete(ctx context.Context, campaignID string, sessionID string) error {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.CampaignID != campaignID {
		return fmt.Errorf("session %s does not belong to campaign %s: %w", sessionID, campaignID, api.ErrNotFound)
	}

	if err := s.db.Delete(ctx, store.Sessions, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	doc, err := s.db.Get(ctx, store.Campaigns, campaignID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			slog.With("campaignId", campaignID).Warn("campaign gone while deleting session, skipping list update")
			return nil
		}
		return api.NewStepError("updateCampaignSessionList", err)
	}
	campaign := api.Campaign{}
	if err := doc.DataTo(&campaign); err != nil {
		return api.NewStepError("updateCampaignSessionList", err)
	}
	sessionIDs := make([]string, 0, len(campaign.SessionIDs))
	for _, id := range campaign.SessionIDs {
		if id == sessionID {
			continue
		}
		sessionIDs = append(sessionIDs, id)
	}
	campaign.SessionIDs = sessionIDs
	if err := s.db.Set(ctx, store.Campaigns, campaignID, campaign); err != nil {
		return api.NewStepError("updateCampaignSessionList", err)
	}
	return nil
}
