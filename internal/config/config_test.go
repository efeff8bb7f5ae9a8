package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 39.90, cfg.PriceDefault)
	assert.Equal(t, 12, cfg.PriceRefreshCycles)
	assert.Equal(t, 3, cfg.BotRepliesPerPost)
	assert.Equal(t, 5*time.Minute, cfg.BotInterval)
	assert.False(t, cfg.BotPostResponse)
	assert.Equal(t, DefaultPriceURL, cfg.PriceURL)
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PRICE_DEFAULT", "42,50")
	t.Setenv("BOT_INTERVAL_SEC", "10")
	t.Setenv("BOT_POST_RESPONSE", "yes")
	t.Setenv("BOT_REPLIES_PER_POST", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 42.5, cfg.PriceDefault)
	assert.Equal(t, 10*time.Second, cfg.BotInterval)
	assert.True(t, cfg.BotPostResponse)
	assert.Equal(t, 3, cfg.BotRepliesPerPost)
}

func TestLoadRejectsNonPositivePrice(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PRICE_DEFAULT", "0")
	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPrice))
}

func TestRequireReddit(t *testing.T) {
	cfg := Config{RedditClientID: "id", RedditClientSecret: "secret", RedditUsername: "bot", RedditSubreddit: "czech"}
	err := cfg.RequireReddit()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDDIT_PASSWORD")

	cfg.RedditPassword = "pw"
	assert.NoError(t, cfg.RequireReddit())
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
