package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/alanyang/iobos/internal/domain/auth"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(env(map[string]string{"JWT_SECRET": "s"}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "data/agent-prompts.json", cfg.PromptsPath)
	assert.Equal(t, cfg.PromptsPath, cfg.StaticPath)
	assert.Equal(t, domainauth.RoleUser, cfg.LoginRole)
	assert.False(t, cfg.LoginConfigured())
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := LoadConfig(env(map[string]string{
		"JWT_SECRET":            "s",
		"PORT":                  "9000",
		"TOKEN_TTL":             "90m",
		"PROMPTS_PATH":          "/tmp/p.json",
		"STATIC_PROMPTS_PATH":   "/tmp/static.json",
		"LOGIN_EMAIL":           "ops@iobos.test",
		"LOGIN_PASSWORD":        "pw",
		"LOGIN_INVITATION_CODE": "IOBOS2024",
		"LOGIN_ROLE":            "admin",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "/tmp/static.json", cfg.StaticPath)
	assert.Equal(t, domainauth.RoleAdmin, cfg.LoginRole)
	assert.True(t, cfg.LoginConfigured())
}

func TestLoadConfig_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {},
		"bad ttl":        {"JWT_SECRET": "s", "TOKEN_TTL": "soon"},
		"negative ttl":   {"JWT_SECRET": "s", "TOKEN_TTL": "-1h"},
		"unknown role":   {"JWT_SECRET": "s", "LOGIN_ROLE": "root"},
		"lowercase code": {"JWT_SECRET": "s", "LOGIN_INVITATION_CODE": "abcdefgh"},
		"too long code":  {"JWT_SECRET": "s", "LOGIN_INVITATION_CODE": "ABCDEFGHIJKLM"},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(env(m))
			assert.Error(t, err)
		})
	}
}
