package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model.
// It captures credentials, limits, scoring floors, and engagement strategy.
type Config struct {
	Account     AccountConfig     `yaml:"account"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Limits      LimitsConfig      `yaml:"limits"`
	Behavior    BehaviorConfig    `yaml:"behavior"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	LLM         LLMConfig         `yaml:"llm"`
	Storage     StorageConfig     `yaml:"storage"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type AccountConfig struct {
	Username string   `yaml:"username"`
	Niche    []string `yaml:"niche"`
	Topics   []string `yaml:"topics"`
}

type CredentialsConfig struct {
	// X/Twitter API bearer token. If empty, read from env X_BEARER_TOKEN.
	BearerToken string `yaml:"bearerToken"`
	// User-auth token for write actions (post/like/follow). If empty, read X_USER_TOKEN.
	UserToken string `yaml:"userToken"`
}

// LimitsConfig holds the per-action daily ceilings enforced by ratelimit.
type LimitsConfig struct {
	LikesPerDay     int `yaml:"likesPerDay"`
	RetweetsPerDay  int `yaml:"retweetsPerDay"`
	FollowsPerDay   int `yaml:"followsPerDay"`
	UnfollowsPerDay int `yaml:"unfollowsPerDay"`
	PostsPerDay     int `yaml:"postsPerDay"`
	RepliesPerDay   int `yaml:"repliesPerDay"`
}

// Ceiling returns the configured daily ceiling for an action kind, 0 if unknown.
func (l LimitsConfig) Ceiling(action string) int {
	switch action {
	case "like":
		return l.LikesPerDay
	case "retweet":
		return l.RetweetsPerDay
	case "follow":
		return l.FollowsPerDay
	case "unfollow":
		return l.UnfollowsPerDay
	case "post":
		return l.PostsPerDay
	case "reply":
		return l.RepliesPerDay
	}
	return 0
}

type BehaviorConfig struct {
	MinDelaySeconds      int   `yaml:"minDelaySeconds"`
	MaxDelaySeconds      int   `yaml:"maxDelaySeconds"`
	MaxResearchQueries   int   `yaml:"maxResearchQueries"`
	MaxResultsPerQuery   int   `yaml:"maxResultsPerQuery"`
	MaxSearchCallsPerRun int   `yaml:"maxSearchCallsPerRun"`
	ReplyTargetsPerTopic int   `yaml:"replyTargetsPerTopic"`
	LikeTargetsPerTopic  int   `yaml:"likeTargetsPerTopic"`
	MaxTopicsPerRun      int   `yaml:"maxTopicsPerRun"`
	UnfollowAfterDays    int   `yaml:"unfollowAfterDays"`
	PeakPostingHours     []int `yaml:"peakPostingHours"`
	DryRun               bool  `yaml:"dryRun"`
}

type ScoringConfig struct {
	// Minimum authenticity score treated as a real account.
	AuthenticityFloor float64 `yaml:"authenticityFloor"`
	// Minimum candidate score for a tweet to stay in the research pool.
	CandidateFloor float64 `yaml:"candidateFloor"`
	// Minimum quality score for a generated draft to be publishable.
	DraftFloor float64 `yaml:"draftFloor"`
	// Minimum follow-worthiness score for a follow target.
	FollowFloor float64 `yaml:"followFloor"`
	MaxDrafts   int     `yaml:"maxDrafts"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai" or "none"
	Model    string `yaml:"model"`
	// If empty, read from env OPENAI_API_KEY.
	APIKey string `yaml:"apiKey"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // optional log file, stdout always on
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // e.g. ":9090"; empty disables the server
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Account: AccountConfig{
			Niche:  []string{"technology"},
			Topics: []string{"golang", "distributed systems", "observability"},
		},
		Limits: LimitsConfig{
			LikesPerDay:     150,
			RetweetsPerDay:  30,
			FollowsPerDay:   100,
			UnfollowsPerDay: 50,
			PostsPerDay:     5,
			RepliesPerDay:   50,
		},
		Behavior: BehaviorConfig{
			MinDelaySeconds:      2,
			MaxDelaySeconds:      5,
			MaxResearchQueries:   2,
			MaxResultsPerQuery:   10,
			MaxSearchCallsPerRun: 20,
			ReplyTargetsPerTopic: 2,
			LikeTargetsPerTopic:  2,
			MaxTopicsPerRun:      4,
			UnfollowAfterDays:    30,
			PeakPostingHours:     []int{9, 13, 19},
		},
		Scoring: ScoringConfig{
			AuthenticityFloor: 40,
			CandidateFloor:    40,
			DraftFloor:        50,
			FollowFloor:       30,
			MaxDrafts:         2,
		},
		LLM:     LLMConfig{Provider: "none", Model: "gpt-4o"},
		Storage: StorageConfig{DBPath: "./growthbot.db"},
		Logging: LoggingConfig{Level: "info"},
		Metrics: MetricsConfig{Addr: ""},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.Credentials.BearerToken == "" {
		c.Credentials.BearerToken = os.Getenv("X_BEARER_TOKEN")
	}
	if c.Credentials.UserToken == "" {
		c.Credentials.UserToken = os.Getenv("X_USER_TOKEN")
	}
	if c.Account.Username == "" {
		c.Account.Username = os.Getenv("ACCOUNT_USERNAME")
	}
	if c.LLM.APIKey == "" && c.LLM.Provider == "openai" {
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if v := os.Getenv("DRY_RUN_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Behavior.DryRun = b
		}
	}
}

// Validate checks startup preconditions. Errors here are fatal; nothing else is.
func (c Config) Validate() error {
	if c.Account.Username == "" {
		return errors.New("account.username is required")
	}
	if c.Credentials.BearerToken == "" {
		return errors.New("credentials.bearerToken is required (or env X_BEARER_TOKEN)")
	}
	for action, ceiling := range map[string]int{
		"likesPerDay":     c.Limits.LikesPerDay,
		"retweetsPerDay":  c.Limits.RetweetsPerDay,
		"followsPerDay":   c.Limits.FollowsPerDay,
		"unfollowsPerDay": c.Limits.UnfollowsPerDay,
		"postsPerDay":     c.Limits.PostsPerDay,
		"repliesPerDay":   c.Limits.RepliesPerDay,
	} {
		if ceiling <= 0 {
			return fmt.Errorf("limits.%s must be positive", action)
		}
	}
	if c.Behavior.MinDelaySeconds < 0 || c.Behavior.MaxDelaySeconds < c.Behavior.MinDelaySeconds {
		return errors.New("behavior delay bounds invalid: need 0 <= min <= max")
	}
	if c.Storage.DBPath == "" {
		return errors.New("storage.dbPath is required")
	}
	return nil
}

// Load reads YAML config from path and resolves env fallbacks.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
