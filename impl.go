package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"questLog/api"
	"questLog/clients/gcp"
	"questLog/services/campaign"
	"questLog/services/character"
	"questLog/services/gamemap"
	"questLog/services/membership"
	"questLog/services/session"
	"questLog/validator"
)

// Server composes the services into the externally visible operations.
type Server struct {
	CampaignService   campaign.Service
	CharacterService  character.Service
	MembershipService membership.Service
	MapService        gamemap.Service
	SessionService    session.Service
	AssetBucket       string
}

func NewServer(
	campaignService campaign.Service,
	characterService character.Service,
	membershipService membership.Service,
	mapService gamemap.Service,
	sessionService session.Service,
	assetBucket string,
) Server {
	return Server{
		CampaignService:   campaignService,
		CharacterService:  characterService,
		MembershipService: membershipService,
		MapService:        mapService,
		SessionService:    sessionService,
		AssetBucket:       assetBucket,
	}
}

// GetPing (GET /ping)
func (Server) GetPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ping": "pong"})
}

func subject(c *gin.Context) (*validator.Subject, bool) {
	s, ok := validator.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing subject"})
		return nil, false
	}
	return s, true
}

// writeError maps the service error taxonomy onto HTTP statuses. A StepError
// names the failed step so the caller can decide whether a retry is safe.
func writeError(c *gin.Context, err error) {
	var stepErr *api.StepError
	if errors.As(err, &stepErr) {
		slog.With("step", stepErr.Step, "error", stepErr.Err.Error()).Error("multi-step sequence failed mid-flight")
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "a dependent write failed; retry is safe",
			"step":  stepErr.Step,
		})
		return
	}
	switch {
	case errors.Is(err, api.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, api.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, api.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, api.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		slog.With("error", err.Error()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// CreateCampaign (POST /campaigns)
func (s Server) CreateCampaign(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	var req api.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := s.CampaignService.Create(c, sub.ID, req.Name, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListCampaigns (GET /campaigns)
func (s Server) ListCampaigns(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	campaigns, err := s.CampaignService.ListByOwner(c, sub.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

// GetCampaign (GET /campaigns/:campaignId)
func (s Server) GetCampaign(c *gin.Context) {
	detail, err := s.CampaignService.GetDetail(c, c.Param("campaignId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DeleteCampaign (DELETE /campaigns/:campaignId)
func (s Server) DeleteCampaign(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	if err := s.CampaignService.Delete(c, c.Param("campaignId"), sub.ID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddMember (POST /campaigns/:campaignId/members)
func (s Server) AddMember(c *gin.Context) {
	var req api.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	join, err := s.MembershipService.AddMember(c, c.Param("campaignId"), req.CharacterID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, join)
}

// SwapMember (PUT /campaigns/:campaignId/members)
func (s Server) SwapMember(c *gin.Context) {
	var req api.SwapMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := s.MembershipService.SwapMember(c, c.Param("campaignId"), req.OldCharacterID, req.NewCharacterID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// RemoveMember (DELETE /campaigns/:campaignId/members/:characterId)
func (s Server) RemoveMember(c *gin.Context) {
	updated, err := s.MembershipService.RemoveMember(c, c.Param("campaignId"), c.Param("characterId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// CreateSession (POST /campaigns/:campaignId/sessions)
func (s Server) CreateSession(c *gin.Context) {
	var req api.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := s.SessionService.Create(c, c.Param("campaignId"), req.Date, req.Log)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListSessions (GET /campaigns/:campaignId/sessions)
func (s Server) ListSessions(c *gin.Context) {
	sessions, err := s.SessionService.ListByCampaign(c, c.Param("campaignId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// DeleteSession (DELETE /campaigns/:campaignId/sessions/:sessionId)
func (s Server) DeleteSession(c *gin.Context) {
	if err := s.SessionService.Delete(c, c.Param("campaignId"), c.Param("sessionId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateMap (POST /campaigns/:campaignId/maps)
// Multipart form: an image file plus an optional sessionId field. The image
// goes to the asset bucket; the map record stores the returned URL.
func (s Server) CreateMap(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	imageURL, err := gcp.UploadImage(c, s.AssetBucket, "maps", filepath.Ext(fileHeader.Filename), file)
	if err != nil {
		writeError(c, fmt.Errorf("failed to store map image: %w", err))
		return
	}

	var sessionID *string
	if v, ok := c.GetPostForm("sessionId"); ok && v != "" {
		sessionID = &v
	}
	created, err := s.MapService.CreateMap(c, c.Param("campaignId"), sessionID, imageURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListMaps (GET /campaigns/:campaignId/maps)
func (s Server) ListMaps(c *gin.Context) {
	maps, err := s.MapService.ListByCampaign(c, c.Param("campaignId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, maps)
}

// DeleteMap (DELETE /campaigns/:campaignId/maps/:mapId)
func (s Server) DeleteMap(c *gin.Context) {
	if err := s.MapService.DeleteMap(c, c.Param("campaignId"), c.Param("mapId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PlacePin (POST /maps/:mapId/pins)
func (s Server) PlacePin(c *gin.Context) {
	var req api.PlacePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pins, err := s.MapService.PlacePin(c, c.Param("mapId"), req.X, req.Y, req.CharacterID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pins)
}

// CreateCharacter (POST /characters)
func (s Server) CreateCharacter(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	var req api.CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := s.CharacterService.Create(c, sub.ID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListCharacters (GET /characters)
func (s Server) ListCharacters(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	characters, err := s.CharacterService.ListByOwner(c, sub.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, characters)
}

// GetCharacter (GET /characters/:characterId)
func (s Server) GetCharacter(c *gin.Context) {
	character, err := s.CharacterService.Get(c, c.Param("characterId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, character)
}

// UpdateCharacter (PATCH /characters/:characterId)
func (s Server) UpdateCharacter(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	var req api.UpdateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := s.CharacterService.Update(c, c.Param("characterId"), sub.ID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// AddSkill (POST /characters/:characterId/skills)
func (s Server) AddSkill(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	var req api.AttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := s.CharacterService.AddSkill(c, c.Param("characterId"), sub.ID, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// AddSpell (POST /characters/:characterId/spells)
func (s Server) AddSpell(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	var req api.AttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := s.CharacterService.AddSpell(c, c.Param("characterId"), sub.ID, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteCharacter (DELETE /characters/:characterId)
func (s Server) DeleteCharacter(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	if err := s.CharacterService.Delete(c, c.Param("characterId"), sub.ID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
