package envvars

import (
	"os"
	"reflect"
	"testing"
)

func TestGetEvn(t *testing.T) {
	// Backup and defer restore of environment variables
	backup := os.Environ()
	defer func() {
		os.Clearenv()
		for _, env := range backup {
			pair := splitEnv(env)
			os.Setenv(pair[0], pair[1])
		}
	}()

	t.Run("all env vars set", func(t *testing.T) {
		os.Clearenv()
		os.Setenv(ProjectID, "test_project")
		os.Setenv(JWTSecret, "test_secret")
		os.Setenv(Environment, "production")
		os.Setenv(AssetBucket, "test_bucket")
		os.Setenv(CatalogURL, "http://localhost:9999/api")

		expected := Env{
			ProjectID:   "test_project",
			Environment: ProductionEnv,
			AssetBucket: "test_bucket",
			CatalogURL:  "http://localhost:9999/api",
			JWTSecret:   "test_secret",
		}

		if got := GetEvn(); !reflect.DeepEqual(got, expected) {
			t.Errorf("GetEvn() = %v, want %v", got, expected)
		}
	})

	t.Run("optional values default", func(t *testing.T) {
		os.Clearenv()
		os.Setenv(ProjectID, "test_project")
		os.Setenv(JWTSecret, "test_secret")

		got := GetEvn()
		if got.Environment != DevEnv {
			t.Errorf("Expected environment to default to dev, got %s", got.Environment)
		}
		if got.AssetBucket != defaultAssetBucket {
			t.Errorf("Expected asset bucket to default, got %s", got.AssetBucket)
		}
		if got.CatalogURL != defaultCatalogURL {
			t.Errorf("Expected catalog url to default, got %s", got.CatalogURL)
		}
	})
}

func TestIsProd(t *testing.T) {
	tests := []struct {
		name string
		env  Env
		want bool
	}{
		{"production env", Env{Environment: ProductionEnv}, true},
		{"dev env", Env{Environment: DevEnv}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsProd(tt.env); got != tt.want {
				t.Errorf("IsProd() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDev(t *testing.T) {
	tests := []struct {
		name string
		env  Env
		want bool
	}{
		{"production env", Env{Environment: ProductionEnv}, false},
		{"dev env", Env{Environment: DevEnv}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDev(tt.env); got != tt.want {
				t.Errorf("IsDev() = %v, want %v", got, tt.want)
			}
		})
	}
}

func splitEnv(env string) []string {
	var s []string
	for i := 0; i < len(env); i++ {
		if env[i] == '=' {
			s = append(s, env[:i])
			s = append(s, env[i+1:])
			return s
		}
	}
	// Return slice with empty strings if no '=' is found
	return []string{"", ""}
}
