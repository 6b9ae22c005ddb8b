package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// ServerConfig holds configuration variables for the server.
type ServerConfig struct {
	Scheme string
	Host   string
	Port   string
}

// URL returns the main gateway URL for the server.
func (s *ServerConfig) URL() string {
	host := s.Host
	includePort := func() bool {
		if s.Port == "" {
			return false
		}
		if s.Scheme == "http" {
			return s.Port != "80"
		}
		// s.Scheme == "https"
		return s.Port != "443"
	}()
	if includePort {
		host = fmt.Sprintf("%s:%s", host, s.Port)
	}
	uri := url.URL{
		Scheme: s.Scheme,
		Host:   host,
	}
	return uri.String()
}

// Addr returns the host:port pair to bind the listener to.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// DatabaseConfig holds configuration variables for the embedded database.
type DatabaseConfig struct {
	Dir string // Path to store data in
}

// SessionConfig holds settings for the session cookie.
type SessionConfig struct {
	Secret     string
	CookieName string

	// GeneratedSecret is true when no secret was configured and a random
	// one was minted at startup. Sessions then die with the process.
	GeneratedSecret bool
}

// ProviderConfig holds the client credentials for one OAuth provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
}

// Enabled reports whether credentials have been configured for the provider.
func (p *ProviderConfig) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// OAuthConfig holds configuration for all third-party providers.
type OAuthConfig struct {
	Google   ProviderConfig
	Facebook ProviderConfig
}

// PasswordConfig holds password-hashing settings.
type PasswordConfig struct {
	Cost int
}

// Config holds configuration information for the program.
type Config struct {
	Server   *ServerConfig
	Database *DatabaseConfig
	Session  *SessionConfig
	OAuth    *OAuthConfig
	Password *PasswordConfig
}

func setConfigDefaults() {
	viper.SetDefault("server", map[string]interface{}{
		"scheme": "http",
		"host":   "localhost",
		"port":   "3000",
	})
	viper.SetDefault("database.dir", "")
	viper.SetDefault("session", map[string]interface{}{
		"secret":     "",
		"cookieName": "hushboard_session",
	})
	viper.SetDefault("oauth.google", map[string]interface{}{
		"clientID":     "",
		"clientSecret": "",
	})
	viper.SetDefault("oauth.facebook", map[string]interface{}{
		"clientID":     "",
		"clientSecret": "",
	})
	viper.SetDefault("password.cost", bcrypt.DefaultCost)
}

// LoadConfig loads the config file from disk, falling back to defaults
// and HUSHBOARD_* environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath("/etc/hushboard/")
	viper.AddConfigPath("$HOME/.hushboard")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	setConfigDefaults()

	viper.SetEnvPrefix("hushboard")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "reading config file")
		}
		// No configuration found. Run with defaults.
	}

	var config Config
	err = viper.Unmarshal(&config)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}

	if config.Database == nil {
		config.Database = &DatabaseConfig{}
	}
	if config.Database.Dir == "" {
		dir, err := getDataDirectory()
		if err != nil {
			return nil, err
		}
		config.Database.Dir = dir
	}

	if config.Session == nil {
		config.Session = &SessionConfig{CookieName: "hushboard_session"}
	}
	if config.Session.Secret == "" {
		secret, err := generateSessionSecret()
		if err != nil {
			return nil, err
		}
		config.Session.Secret = secret
		config.Session.GeneratedSecret = true
	}

	if config.OAuth == nil {
		config.OAuth = &OAuthConfig{}
	}
	if config.Password == nil {
		config.Password = &PasswordConfig{Cost: bcrypt.DefaultCost}
	}

	return &config, nil
}

// getDataDirectory locates a writable directory for the embedded database.
func getDataDirectory() (string, error) {
	// Prefer /var/lib
	dataDir := "/var/lib/hushboard"
	if _, err := os.Stat(dataDir); err == nil {
		return dataDir, nil
	} else if os.IsNotExist(err) {
		// For non-sudo users, this is not possible
		if err := os.MkdirAll(dataDir, 0770); err == nil {
			return dataDir, nil
		}
	} else {
		return "", err
	}

	// Check home directory
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "retrieving home directory")
	}
	dataDir = filepath.Join(home, ".hushboard", "data")
	if _, err := os.Stat(dataDir); err == nil {
		return dataDir, nil
	} else if os.IsNotExist(err) {
		if err := os.MkdirAll(dataDir, 0770); err == nil {
			return dataDir, nil
		}
	} else {
		return "", err
	}

	return "", errors.New("could not locate viable storage dir")
}

func generateSessionSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generating session secret")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
