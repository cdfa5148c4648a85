package config

import (
	"os"
	"testing"
	"time"
)

func TestOverlapPolicy_Default(t *testing.T) {
	os.Unsetenv(EnvOverlapPolicy)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OverlapPolicy() != "" {
		t.Errorf("default OverlapPolicy = %q, want empty", cfg.OverlapPolicy())
	}
}

func TestOverlapPolicy_FromEnv(t *testing.T) {
	os.Setenv(EnvOverlapPolicy, "snap")
	defer os.Unsetenv(EnvOverlapPolicy)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OverlapPolicy() != "snap" {
		t.Errorf("OverlapPolicy = %q, want %q", cfg.OverlapPolicy(), "snap")
	}
}

func TestAutosaveInterval_FromEnv(t *testing.T) {
	os.Setenv(EnvAutosaveSeconds, "5")
	defer os.Unsetenv(EnvAutosaveSeconds)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AutosaveInterval() != 5*time.Second {
		t.Errorf("AutosaveInterval = %v, want 5s", cfg.AutosaveInterval())
	}
}

func TestAutosaveInterval_Invalid(t *testing.T) {
	os.Setenv(EnvAutosaveSeconds, "0")
	defer os.Unsetenv(EnvAutosaveSeconds)

	if _, err := New(); err == nil {
		t.Fatal("expected error for zero autosave interval")
	}
}

func TestPort_Invalid(t *testing.T) {
	os.Setenv(EnvPort, "99999")
	defer os.Unsetenv(EnvPort)

	if _, err := New(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}
