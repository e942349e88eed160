package envvars

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	ProjectID   = "GCP_PROJECT_ID"
	Environment = "ENVIRONMENT"
	AssetBucket = "ASSET_BUCKET"
	CatalogURL  = "CATALOG_URL"
	JWTSecret   = "JWT_SECRET"
)

const (
	ProductionEnv = "production"
	DevEnv        = "dev"

	defaultAssetBucket = "questlog-assets"
	defaultCatalogURL  = "https://www.dnd5eapi.co/api"
)

type Env struct {
	ProjectID   string
	Environment string
	AssetBucket string
	CatalogURL  string
	JWTSecret   string
}

func GetEvn() Env {
	// Missing .env is fine; real environments set the variables directly.
	_ = godotenv.Load()

	projectID, ok := os.LookupEnv(ProjectID)
	if !ok {
		log.Fatalf("%s required", ProjectID)
	}
	secret, ok := os.LookupEnv(JWTSecret)
	if !ok {
		log.Fatalf("%s required", JWTSecret)
	}
	environment, ok := os.LookupEnv(Environment)
	if !ok {
		environment = DevEnv
	}
	bucket, ok := os.LookupEnv(AssetBucket)
	if !ok {
		bucket = defaultAssetBucket
	}
	catalogURL, ok := os.LookupEnv(CatalogURL)
	if !ok {
		catalogURL = defaultCatalogURL
	}
	return Env{
		ProjectID:   projectID,
		Environment: environment,
		AssetBucket: bucket,
		CatalogURL:  catalogURL,
		JWTSecret:   secret,
	}
}

func IsProd(env Env) bool {
	return env.Environment == ProductionEnv
}

func IsDev(env Env) bool {
	return env.Environment == DevEnv
}
