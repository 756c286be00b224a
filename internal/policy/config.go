package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultReviewThreshold is the lowest acceptable lower bound of the
// confidence interval before a classification must go to a human.
const DefaultReviewThreshold = 0.90

// Stub holds the placeholder classification emitted for every product.
// It is not tariff logic; it exists so the review workflow has something to carry.
type Stub struct {
	HSCode   string  `yaml:"hs_code"`
	DutyRate float64 `yaml:"duty_rate"`
}

// Config holds all configurable review-policy parameters.
type Config struct {
	ReviewThreshold     float64  `yaml:"review_threshold"`
	HighScrutinyOrigins []string `yaml:"high_scrutiny_origins"`
	Stub                Stub     `yaml:"stub"`
}

// DefaultConfig returns the built-in policy.
func DefaultConfig() *Config {
	return &Config{
		ReviewThreshold:     DefaultReviewThreshold,
		HighScrutinyOrigins: []string{"CN"},
		Stub: Stub{
			HSCode:   "8471.30.01",
			DutyRate: 0.05,
		},
	}
}

// IsHighScrutiny reports whether the origin country is on the scrutiny list.
// Comparison ignores case and surrounding whitespace.
func (c *Config) IsHighScrutiny(origin string) bool {
	origin = strings.ToUpper(strings.TrimSpace(origin))
	for _, o := range c.HighScrutinyOrigins {
		if strings.ToUpper(strings.TrimSpace(o)) == origin {
			return true
		}
	}
	return false
}

// Validate rejects thresholds and rates outside [0,1].
func (c *Config) Validate() error {
	if c.ReviewThreshold < 0 || c.ReviewThreshold > 1 {
		return fmt.Errorf("review_threshold must be within [0,1], got %v", c.ReviewThreshold)
	}
	if c.Stub.DutyRate < 0 || c.Stub.DutyRate > 1 {
		return fmt.Errorf("stub.duty_rate must be within [0,1], got %v", c.Stub.DutyRate)
	}
	if strings.TrimSpace(c.Stub.HSCode) == "" {
		return fmt.Errorf("stub.hs_code must not be empty")
	}
	return nil
}

// LoadConfig loads policy configuration from a YAML file.
// Empty path or missing file returns defaults. Invalid YAML returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// LoadConfigWithHash loads policy configuration and returns its SHA-256 hash.
// The hash is computed over the raw YAML bytes on disk.
// When no file exists (defaults used), the hash is the SHA-256 of empty input.
func LoadConfigWithHash(path string) (*Config, string, error) {
	if path == "" {
		return DefaultConfig(), hashBytes(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), hashBytes(nil), nil
		}
		return nil, "", fmt.Errorf("failed to read policy config: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse policy config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid policy config: %w", err)
	}

	return cfg, hashBytes(data), nil
}

func hashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}

// DefaultConfigYAML returns a commented YAML string for init-policy.
func DefaultConfigYAML() string {
	return `# tariffwatch review policy
#
# A classification goes to human review when any of these hold:
#   - description shorter than 30 characters
#   - no material composition
#   - intended use shorter than 8 characters
#   - confidence interval lower bound below review_threshold

review_threshold: 0.90

# Origins that add a fixed risk penalty.
high_scrutiny_origins:
  - CN

# Placeholder classification. Not tariff logic.
stub:
  hs_code: "8471.30.01"
  duty_rate: 0.05
`
}
