package root

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dinerozz/nudge-engine/config"
	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:     "local",
		Storage: config.StorageConfig{Driver: "memory"},
		Auth:    config.AuthConfig{JWTSecret: "cli-secret"},
		Engine: config.EngineConfig{
			SamplingInterval:  time.Hour,
			AnalysisInterval:  time.Hour,
			ActivityRetention: time.Hour,
			DefaultPersona:    "drill_sergeant",
		},
	}
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	cmd := GetRootCmd(cfg, zap.NewNop())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	out, err := run(t, testConfig(), "token", "--user", "u9")
	require.NoError(t, err)

	claims, err := utils.ValidateToken("cli-secret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u9", utils.SubjectFromClaims(claims))
}

func TestTokenCommandNeedsSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = ""

	_, err := run(t, cfg, "token", "--user", "u9")
	assert.Error(t, err)
}

func TestAnalyzeCommand(t *testing.T) {
	out, err := run(t, testConfig(), "analyze", "--user", "u1")
	require.NoError(t, err)

	var result entity.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, entity.ActivityIdle, result.Context.CurrentActivity)
}

func TestAnalyzeCommandRequiresUser(t *testing.T) {
	_, err := run(t, testConfig(), "analyze")
	assert.Error(t, err)
}
