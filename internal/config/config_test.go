package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := Config{
		HTTP:  HTTPConfig{Port: 8080},
		Cache: CacheConfig{Driver: CacheNone},
		Embedding: EmbeddingConfig{
			Budget: BudgetConfig{
				DailyTokenLimit: 1000000,
				Action:          "invalid_action",
			},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `embedding.budget.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	validActions := []string{"", "warn", "reject"}

	for _, action := range validActions {
		t.Run("action="+action, func(t *testing.T) {
			cfg := Config{
				HTTP:      HTTPConfig{Port: 8080},
				Cache:     CacheConfig{Driver: CacheNone},
				Embedding: EmbeddingConfig{Budget: BudgetConfig{Action: action}},
			}

			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_CacheDriver(t *testing.T) {
	tests := []struct {
		name    string
		cache   CacheConfig
		wantErr bool
	}{
		{"none", CacheConfig{Driver: CacheNone}, false},
		{"badger", CacheConfig{Driver: CacheBadger}, false},
		{"redis with addrs", CacheConfig{Driver: CacheRedis, Addrs: []string{"localhost:6379"}}, false},
		{"redis without addrs", CacheConfig{Driver: CacheRedis}, true},
		{"unknown", CacheConfig{Driver: "memcached"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{HTTP: HTTPConfig{Port: 8080}, Cache: tt.cache}
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("CAREFINDER_TEST_KEY", "sk-test")

	cfg, err := Parse([]byte(`
embedding:
  api_key: ${CAREFINDER_TEST_KEY}
  base_url: ${CAREFINDER_TEST_UNSET:-https://api.example.com/v1}
retrieval:
  rank_by_distance: true
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("api_key = %q", cfg.Embedding.APIKey)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("llm.api_key should inherit embedding key, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.BaseURL != "https://api.example.com/v1" {
		t.Errorf("llm.base_url = %q", cfg.LLM.BaseURL)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("llm.provider should inherit embedding provider, got %q", cfg.LLM.Provider)
	}
	if cfg.HTTP.Port != 8000 {
		t.Errorf("http.port = %d, want 8000", cfg.HTTP.Port)
	}
	if cfg.Embedding.Dimensions != 3072 || cfg.Embedding.BatchSize != 100 {
		t.Errorf("embedding defaults = %d/%d", cfg.Embedding.Dimensions, cfg.Embedding.BatchSize)
	}
	if cfg.Retrieval.TopK != 10 || cfg.Retrieval.Oversample != 2 || !cfg.Retrieval.RankByDistance {
		t.Errorf("retrieval = %+v", cfg.Retrieval)
	}
	if cfg.Retrieval.ActiveStatus != "정상" {
		t.Errorf("active_status = %q", cfg.Retrieval.ActiveStatus)
	}
	if cfg.Cache.Driver != CacheNone {
		t.Errorf("cache.driver = %q", cfg.Cache.Driver)
	}
	if cfg.Embedding.Budget.Enabled() {
		t.Error("budget should be disabled by default")
	}
}

func TestParse_LLMProviderOverride(t *testing.T) {
	cfg, err := Parse([]byte(`
embedding:
  provider: openai
llm:
  provider: azure
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Provider != "azure" {
		t.Errorf("llm.provider = %q, want azure", cfg.LLM.Provider)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("embedding.provider = %q", cfg.Embedding.Provider)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CAREFINDER_DOTENV_TEST=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CAREFINDER_DOTENV_TEST", "")
	_ = os.Unsetenv("CAREFINDER_DOTENV_TEST")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("CAREFINDER_DOTENV_TEST"); got != "from-file" {
		t.Errorf("CAREFINDER_DOTENV_TEST = %q", got)
	}
}
