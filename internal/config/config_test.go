package config

import "testing"

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("CAL_EVENT_TYPE_ID", "")
	t.Setenv("PHONE_COUNTRY_PREFIX", "")

	cfg := FromEnv()
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %q, want %q", cfg.Port, DefaultPort)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", cfg.Model, DefaultModel)
	}
	if cfg.CountryPrefix != DefaultCountryPrefix {
		t.Errorf("CountryPrefix = %q, want %q", cfg.CountryPrefix, DefaultCountryPrefix)
	}
	if cfg.CalEventTypeID != 0 {
		t.Errorf("CalEventTypeID = %d, want 0", cfg.CalEventTypeID)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LLM_MODEL", "llama-3.3-70b-versatile")
	t.Setenv("CAL_EVENT_TYPE_ID", "1234")
	t.Setenv("GROQ_API_KEY", "gk_test")

	cfg := FromEnv()
	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Model != "llama-3.3-70b-versatile" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.CalEventTypeID != 1234 {
		t.Errorf("CalEventTypeID = %d", cfg.CalEventTypeID)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateRequiresProviderKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	cfg := FromEnv()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate must fail without a provider key")
	}
}
