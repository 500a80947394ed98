package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Default()
	cfg.Account.Username = "growthbot_acct"
	cfg.Credentials.BearerToken = "tok"
	return cfg
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	missing := validConfig()
	missing.Account.Username = ""
	assert.Error(t, missing.Validate())

	noToken := validConfig()
	noToken.Credentials.BearerToken = ""
	assert.Error(t, noToken.Validate())

	badLimit := validConfig()
	badLimit.Limits.PostsPerDay = 0
	assert.Error(t, badLimit.Validate())

	badDelay := validConfig()
	badDelay.Behavior.MinDelaySeconds = 10
	badDelay.Behavior.MaxDelaySeconds = 2
	assert.Error(t, badDelay.Validate())

	noDB := validConfig()
	noDB.Storage.DBPath = ""
	assert.Error(t, noDB.Validate())
}

func TestCeiling(t *testing.T) {
	l := Default().Limits
	assert.Equal(t, 150, l.Ceiling("like"))
	assert.Equal(t, 30, l.Ceiling("retweet"))
	assert.Equal(t, 100, l.Ceiling("follow"))
	assert.Equal(t, 50, l.Ceiling("unfollow"))
	assert.Equal(t, 5, l.Ceiling("post"))
	assert.Equal(t, 50, l.Ceiling("reply"))
	assert.Equal(t, 0, l.Ceiling("unknown"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "growthbot.yaml")
	want := validConfig()
	want.Account.Topics = []string{"caching", "queues"}
	want.Behavior.DryRun = true
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want.Account.Topics, got.Account.Topics)
	assert.Equal(t, want.Limits, got.Limits)
	assert.True(t, got.Behavior.DryRun)
}

func TestResolveEnv(t *testing.T) {
	t.Setenv("X_BEARER_TOKEN", "env-bearer")
	t.Setenv("ACCOUNT_USERNAME", "env-user")
	t.Setenv("DRY_RUN_MODE", "true")

	cfg := Default()
	cfg.ResolveEnv()
	assert.Equal(t, "env-bearer", cfg.Credentials.BearerToken)
	assert.Equal(t, "env-user", cfg.Account.Username)
	assert.True(t, cfg.Behavior.DryRun)

	// Explicit values win over the environment.
	cfg = Default()
	cfg.Credentials.BearerToken = "explicit"
	cfg.ResolveEnv()
	assert.Equal(t, "explicit", cfg.Credentials.BearerToken)
}

func TestResolveEnvLLMKeyOnlyForOpenAI(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := Default() // provider "none"
	cfg.ResolveEnv()
	assert.Empty(t, cfg.LLM.APIKey)

	cfg = Default()
	cfg.LLM.Provider = "openai"
	cfg.ResolveEnv()
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
}
