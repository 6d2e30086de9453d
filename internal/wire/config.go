package wire

import (
	"fmt"
	"time"

	domainauth "github.com/alanyang/iobos/internal/domain/auth"
	authsvc "github.com/alanyang/iobos/internal/service/auth"
)

// Config is read once from the environment at startup.
type Config struct {
	Port           string
	JWTSecret      string
	TokenTTL       time.Duration
	PromptsPath    string
	StaticPath     string
	DatabaseURL    string
	LoginEmail     string
	LoginPassword  string
	InvitationCode string
	LoginRole      domainauth.Role
}

// LoadConfig reads the configuration through getenv (os.Getenv in production).
func LoadConfig(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:           getenv("PORT"),
		JWTSecret:      getenv("JWT_SECRET"),
		TokenTTL:       authsvc.DefaultTokenTTL,
		PromptsPath:    getenv("PROMPTS_PATH"),
		StaticPath:     getenv("STATIC_PROMPTS_PATH"),
		DatabaseURL:    getenv("DATABASE_URL"),
		LoginEmail:     getenv("LOGIN_EMAIL"),
		LoginPassword:  getenv("LOGIN_PASSWORD"),
		InvitationCode: getenv("LOGIN_INVITATION_CODE"),
		LoginRole:      domainauth.RoleUser,
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET not set")
	}
	if v := getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("invalid TOKEN_TTL %q", v)
		}
		cfg.TokenTTL = ttl
	}
	if cfg.PromptsPath == "" {
		cfg.PromptsPath = "data/agent-prompts.json"
	}
	if cfg.StaticPath == "" {
		cfg.StaticPath = cfg.PromptsPath
	}
	if v := getenv("LOGIN_ROLE"); v != "" {
		role, ok := domainauth.ParseRole(v)
		if !ok {
			return Config{}, fmt.Errorf("invalid LOGIN_ROLE %q", v)
		}
		cfg.LoginRole = role
	}
	if cfg.InvitationCode != "" && !authsvc.ValidInvitationCode(cfg.InvitationCode) {
		return Config{}, fmt.Errorf("LOGIN_INVITATION_CODE must be 8-12 uppercase letters or digits")
	}
	return cfg, nil
}

// LoginConfigured reports whether the login account is fully configured.
func (c Config) LoginConfigured() bool {
	return c.LoginEmail != "" && c.LoginPassword != "" && c.InvitationCode != ""
}
