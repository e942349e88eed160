// Package catalog talks to the external reference-data provider for skill
// and spell definitions. Read-only; lookups are by index name.
package catalog

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/context"

	"questLog/api"
)

const (
	getSkill = "/skills/{index}"
	getSpell = "/spells/{index}"
)

type Service interface {
	// GetSkill looks a skill up by name. Returns api.ErrNotFound when the
	// catalog does not know it.
	GetSkill(ctx context.Context, name string) (*Skill, error)
	// GetSpell looks a spell up by name. Returns api.ErrNotFound when the
	// catalog does not know it.
	GetSpell(ctx context.Context, name string) (*Spell, error)
}

type service struct {
	http *resty.Client
}

var _ Service = (*service)(nil)

func NewService(baseURL string) Service {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "questLog-backend")
	return &service{http: client}
}

// toIndex turns a display name into the catalog's index form,
// e.g. "Animal Handling" -> "animal-handling".
func toIndex(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

func (s *service) GetSkill(ctx context.Context, name string) (*Skill, error) {
	result := &Skill{}
	resp, err := s.http.R().
		SetContext(ctx).
		SetPathParam("index", toIndex(name)).
		SetResult(result).
		Get(getSkill)
	if err != nil {
		return nil, fmt.Errorf("failed to reach catalog: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("skill %q: %w", name, api.ErrNotFound)
	}
	if resp.IsError() {
		slog.With("status", resp.StatusCode()).Error("unexpected catalog response for skill lookup")
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode())
	}
	return result, nil
}

func (s *service) GetSpell(ctx context.Context, name string) (*Spell, error) {
	result := &Spell{}
	resp, err := s.http.R().
		SetContext(ctx).
		SetPathParam("index", toIndex(name)).
		SetResult(result).
		Get(getSpell)
	if err != nil {
		return nil, fmt.Errorf("failed to reach catalog: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("spell %q: %w", name, api.ErrNotFound)
	}
	if resp.IsError() {
		slog.With("status", resp.StatusCode()).Error("unexpected catalog response for spell lookup")
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode())
	}
	return result, nil
}
