package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"questLog/clients/catalog"
	"questLog/clients/gcp"
	"questLog/envvars"
	"questLog/services/campaign"
	"questLog/services/character"
	"questLog/services/gamemap"
	"questLog/services/membership"
	"questLog/services/session"
	"questLog/store"
	"questLog/validator"
)

func main() {
	env := envvars.GetEvn()

	firestoreClient := gcp.CreateFirestore(context.Background(), env.ProjectID)
	defer firestoreClient.Close()
	db := store.NewFirestore(firestoreClient)

	catalogService := catalog.NewService(env.CatalogURL)

	mapService := gamemap.NewService(db)
	campaignService := campaign.NewService(db)
	membershipService := membership.NewService(db, mapService)
	characterService := character.NewService(db, catalogService, mapService)
	sessionService := session.NewService(db)

	server := NewServer(
		campaignService,
		characterService,
		membershipService,
		mapService,
		sessionService,
		env.AssetBucket,
	)

	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/ping", server.GetPing)

	authed := r.Group("/")
	authed.Use(validator.Middleware([]byte(env.JWTSecret)))

	authed.POST("/campaigns", server.CreateCampaign)
	authed.GET("/campaigns", server.ListCampaigns)
	authed.GET("/campaigns/:campaignId", server.GetCampaign)
	authed.DELETE("/campaigns/:campaignId", server.DeleteCampaign)

	authed.POST("/campaigns/:campaignId/members", server.AddMember)
	authed.PUT("/campaigns/:campaignId/members", server.SwapMember)
	authed.DELETE("/campaigns/:campaignId/members/:characterId", server.RemoveMember)

	authed.POST("/campaigns/:campaignId/sessions", server.CreateSession)
	authed.GET("/campaigns/:campaignId/sessions", server.ListSessions)
	authed.DELETE("/campaigns/:campaignId/sessions/:sessionId", server.DeleteSession)

	authed.POST("/campaigns/:campaignId/maps", server.CreateMap)
	authed.GET("/campaigns/:campaignId/maps", server.ListMaps)
	authed.DELETE("/campaigns/:campaignId/maps/:mapId", server.DeleteMap)
	authed.POST("/maps/:mapId/pins", server.PlacePin)

	authed.POST("/characters", server.CreateCharacter)
	authed.GET("/characters", server.ListCharacters)
	authed.GET("/characters/:characterId", server.GetCharacter)
	authed.PATCH("/characters/:characterId", server.UpdateCharacter)
	authed.POST("/characters/:characterId/skills", server.AddSkill)
	authed.POST("/characters/:characterId/spells", server.AddSpell)
	authed.DELETE("/characters/:characterId", server.DeleteCharacter)

	s := &http.Server{
		Handler: r,
		Addr:    "0.0.0.0:8080",
	}

	slog.Info("Starting HTTP server on port 8080")
	log.Fatal(s.ListenAndServe())
}
