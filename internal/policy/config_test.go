package policy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ReviewThreshold != 0.90 {
		t.Errorf("expected ReviewThreshold=0.90, got %v", cfg.ReviewThreshold)
	}
	if len(cfg.HighScrutinyOrigins) != 1 || cfg.HighScrutinyOrigins[0] != "CN" {
		t.Errorf("expected high scrutiny origins [CN], got %v", cfg.HighScrutinyOrigins)
	}
	if cfg.Stub.HSCode != "8471.30.01" {
		t.Errorf("expected stub HS code 8471.30.01, got %s", cfg.Stub.HSCode)
	}
	if cfg.Stub.DutyRate != 0.05 {
		t.Errorf("expected stub duty rate 0.05, got %v", cfg.Stub.DutyRate)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/policy.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.ReviewThreshold != DefaultReviewThreshold {
		t.Errorf("expected default threshold, got %v", cfg.ReviewThreshold)
	}
}

func TestLoadConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	os.WriteFile(path, []byte("review_threshold: 0.75\n"), 0644)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ReviewThreshold != 0.75 {
		t.Errorf("expected threshold 0.75, got %v", cfg.ReviewThreshold)
	}
	// Unspecified fields keep defaults
	if cfg.Stub.HSCode != "8471.30.01" {
		t.Errorf("expected default HS code, got %s", cfg.Stub.HSCode)
	}
	if !cfg.IsHighScrutiny("cn") {
		t.Error("expected CN to remain high scrutiny")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	os.WriteFile(path, []byte("review_threshold: [not a number\n"), 0644)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadConfigThresholdOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	os.WriteFile(path, []byte("review_threshold: 1.5\n"), 0644)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for threshold > 1")
	}
	if !strings.Contains(err.Error(), "review_threshold") {
		t.Errorf("expected error to mention review_threshold, got %v", err)
	}
}

func TestLoadConfigWithHashChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	os.WriteFile(a, []byte("review_threshold: 0.80\n"), 0644)
	os.WriteFile(b, []byte("review_threshold: 0.85\n"), 0644)

	_, ha, err := LoadConfigWithHash(a)
	if err != nil {
		t.Fatal(err)
	}
	_, hb, err := LoadConfigWithHash(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha == hb {
		t.Error("expected different hashes for different content")
	}
	if !strings.HasPrefix(ha, "sha256:") {
		t.Errorf("expected sha256: prefix, got %s", ha)
	}
}

func TestLoadConfigWithHashDefaultsHashEmptyInput(t *testing.T) {
	_, h1, _ := LoadConfigWithHash("")
	_, h2, _ := LoadConfigWithHash("/nonexistent/policy.yaml")
	if h1 != h2 {
		t.Errorf("expected identical default hashes, got %s and %s", h1, h2)
	}
	// sha256 of empty input
	if h1 != "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("unexpected default hash %s", h1)
	}
}

func TestDefaultConfigYAMLParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	os.WriteFile(path, []byte(DefaultConfigYAML()), 0644)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("default YAML does not load: %v", err)
	}
	def := DefaultConfig()
	if cfg.ReviewThreshold != def.ReviewThreshold || cfg.Stub != def.Stub {
		t.Errorf("default YAML diverges from DefaultConfig: %+v", cfg)
	}
}
