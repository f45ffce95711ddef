package config

import "testing"

func TestLoadRequiresOnlyAccessSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kronus_test")
	t.Setenv("JWT_ACCESS_SECRET", "test-secret")
	t.Setenv("JWT_REFRESH_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.JWTAccessSecret != "test-secret" {
		t.Errorf("access secret = %q", cfg.JWTAccessSecret)
	}
}

func TestLoadFailsWithoutAccessSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kronus_test")
	t.Setenv("JWT_ACCESS_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_ACCESS_SECRET is missing")
	}
}

func TestLoadRejectsCredentialedWildcardCORS(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kronus_test")
	t.Setenv("JWT_ACCESS_SECRET", "test-secret")
	t.Setenv("CORS_ALLOW_ALL", "true")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for wildcard CORS with credentials")
	}
}
