package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug        bool   `mapstructure:"debug"`
		TestMode     bool   `mapstructure:"testMode"`
		Env          string `mapstructure:"env"`
		Build        string `mapstructure:"build"`
		AppName      string `mapstructure:"appName"`
		WorkDir      string `mapstructure:"workDir"`
		RollbarToken string `mapstructure:"rollbarToken"`

		Server   ServerConfig   `mapstructure:"server"`
		Auth     AuthConfig     `mapstructure:"auth"`
		Upstream UpstreamConfig `mapstructure:"upstream"`
		Redis    RedisConfig    `mapstructure:"redis"`
	}

	ServerConfig struct {
		Host            string        `mapstructure:"host"`
		DebugHost       string        `mapstructure:"debugHost"`
		FrontendURL     string        `mapstructure:"frontendURL"`
		DisableReqLogs  bool          `mapstructure:"disableReqLogs"`
		ReadTimeout     time.Duration `mapstructure:"readTimeout"`
		WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	}

	// AuthConfig describes the external identity provider and the session cookies.
	AuthConfig struct {
		AuthorizationURL   string `mapstructure:"authorizationURL"`
		TokenURL           string `mapstructure:"tokenURL"`
		ClientID           string `mapstructure:"clientID"`
		ClientSecret       string `mapstructure:"clientSecret"`
		RedirectURI        string `mapstructure:"redirectURI"`
		Scope              string `mapstructure:"scope"`
		AccessCookie       string `mapstructure:"accessCookie"`
		RefreshCookie      string `mapstructure:"refreshCookie"`
		CookieSecure       bool   `mapstructure:"cookieSecure"`
		PublicKey          string `mapstructure:"publicKey"`
		PolicyFile         string `mapstructure:"policyFile"`
		SessionExpiredPath string `mapstructure:"sessionExpiredPath"`
		UnauthorizedPath   string `mapstructure:"unauthorizedPath"`
	}

	UpstreamConfig struct {
		CourseAPI string        `mapstructure:"courseAPI"`
		GorioAPI  string        `mapstructure:"gorioAPI"`
		RMIAPI    string        `mapstructure:"rmiAPI"`
		SearchAPI string        `mapstructure:"searchAPI"`
		Timeout   time.Duration `mapstructure:"timeout"`
	}

	RedisConfig struct {
		URL     string        `mapstructure:"url"`
		CNAETTL time.Duration `mapstructure:"cnaeTTL"`
	}
)

// Deployed reports whether conf describes a shared environment rather than a developer machine.
func (conf *Config) Deployed() bool {
	return conf.Env == "QA" || conf.Env == "PROD"
}

// Warnings lists settings that are tolerable locally but unsafe once deployed.
func (conf *Config) Warnings() []string {
	var warnings []string
	if conf.Deployed() && conf.Auth.PublicKey == "" {
		warnings = append(warnings, "auth.publicKey is not set: token signatures are not verified and pages trust the token's roles")
	}
	return warnings
}

// NewConfig loads the configuration from defaults, the optional `config/.env.<env>` file and the
// environment (keys are prefixed with the env name, e.g. PROD_AUTH_CLIENTID).
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "GO Rio Admin")
	v.SetDefault("workDir", Getwd())
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.frontendURL", "")
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("auth.authorizationURL", "https://auth-idrio.rio.gov.br/auth/realms/idrio_cidadao/protocol/openid-connect/auth")
	v.SetDefault("auth.tokenURL", "https://auth-idrio.rio.gov.br/auth/realms/idrio_cidadao/protocol/openid-connect/token")
	v.SetDefault("auth.clientID", "gorio-admin")
	v.SetDefault("auth.clientSecret", "")
	v.SetDefault("auth.redirectURI", "http://localhost:8000/auth/callback")
	v.SetDefault("auth.scope", "openid profile email")
	v.SetDefault("auth.accessCookie", "access_token")
	v.SetDefault("auth.refreshCookie", "refresh_token")
	v.SetDefault("auth.cookieSecure", false)
	v.SetDefault("auth.publicKey", "") // PEM; empty leaves signature checks to the upstream APIs
	v.SetDefault("auth.policyFile", "")
	v.SetDefault("auth.sessionExpiredPath", "/session-expired")
	v.SetDefault("auth.unauthorizedPath", "/unauthorized")

	v.SetDefault("upstream.courseAPI", "http://localhost:8081")
	v.SetDefault("upstream.gorioAPI", "http://localhost:8082")
	v.SetDefault("upstream.rmiAPI", "http://localhost:8083")
	v.SetDefault("upstream.searchAPI", "http://localhost:8084")
	v.SetDefault("upstream.timeout", 10*time.Second)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.cnaeTTL", 24*time.Hour)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
		v.SetDefault("auth.cookieSecure", true)
	}
	v.SetDefault("env", env)
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(v.GetString("workDir"), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	// AutomaticEnv only applies to Get calls; bind every known key so Unmarshal sees env overrides too.
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key)
	}

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		log.Fatalf("config.Unmarshal: %v", err)
	}
	return conf
}
