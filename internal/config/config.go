package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Root              string
	ListenAddr        string
	DBURI             string
	HgBin             string
	HgUpstream        string
	HgListen          string
	HgStyle           string
	HgRefreshInterval int
	HgWatch           bool
	AuthCredentials   string
	AuthRealm         string
	MaxUploadBytes    int64
	LogLevel          string
	LogFormat         string
	LogFile           string
}

// Load reads the configuration from the environment. HGDESK_ROOT is resolved
// first so that <root>/_web/.env can supply the remaining variables;
// variables already set in the process take precedence over the file.
func Load() (*Config, error) {
	root, err := expandHome(getEnv("HGDESK_ROOT", "~/.hgweb"))
	if err != nil {
		return nil, err
	}

	envFile := filepath.Join(root, "_web", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := &Config{
		Root:              root,
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		DBURI:             getEnv("DB_URI", "sqlite://"+filepath.Join(root, "_web", "hgdesk.db")),
		HgBin:             getEnv("HG_BIN", "hg"),
		HgUpstream:        getEnv("HG_UPSTREAM", ""),
		HgListen:          getEnv("HG_LISTEN", "127.0.0.1:8001"),
		HgStyle:           getEnv("HG_STYLE", "monoblue"),
		HgRefreshInterval: getEnvInt("HG_REFRESH_INTERVAL", 0),
		HgWatch:           getEnv("HG_WATCH", "1") == "1",
		AuthCredentials:   getEnv("AUTH_CREDENTIALS", ""),
		AuthRealm:         getEnv("AUTH_REALM", "hgdesk"),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_MB", 50)) << 20,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		LogFile:           getEnv("LOG_FILE", ""),
	}
	return cfg, nil
}

func (c *Config) WebDir() string       { return filepath.Join(c.Root, "_web") }
func (c *Config) RepoDir() string      { return filepath.Join(c.Root, "_hg") }
func (c *Config) FilesDir() string     { return filepath.Join(c.Root, "_files") }
func (c *Config) HgConfigPath() string { return filepath.Join(c.WebDir(), "hgweb.config") }

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return n
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
