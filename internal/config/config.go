package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jimezsa/leadscout/internal/models"
	"github.com/joho/godotenv"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName         = "leadscout"
	ConfigFileName  = "config.json"
	ProxiesFileName = "proxies.txt"
	EnvFileName     = ".env"
)

// Config contains scrape defaults. Secrets are read from the environment
// only and never written to the file.
type Config struct {
	DefaultLimit int    `json:"default_limit"`
	Headless     bool   `json:"headless"`
	ExportDir    string `json:"export_dir"`
	BrowserPath  string `json:"browser_path"`
	GeminiModel  string `json:"gemini_model"`
	JitterMinMS  int    `json:"jitter_min_ms"`
	JitterMaxMS  int    `json:"jitter_max_ms"`
}

func DefaultConfig() Config {
	return Config{
		DefaultLimit: 20,
		Headless:     true,
		ExportDir:    ".",
		GeminiModel:  "gemini-2.5-flash",
		JitterMinMS:  2000,
		JitterMaxMS:  4000,
	}
}

// JitterRange returns the inter-profile delay bounds.
func (c Config) JitterRange() (time.Duration, time.Duration) {
	lo := time.Duration(c.JitterMinMS) * time.Millisecond
	hi := time.Duration(c.JitterMaxMS) * time.Millisecond
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func ProxiesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProxiesFileName), nil
}

// Load reads the config file, then applies LEADSCOUT_* environment
// overrides.
func Load() (Config, error) {
	cfg := DefaultConfig()
	path, err := ConfigPath()
	if err != nil {
		return applyEnv(cfg), err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return applyEnv(cfg), nil
	}

	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	cfg.DefaultLimit = envInt("LEADSCOUT_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.Headless = envBool("LEADSCOUT_HEADLESS", cfg.Headless)
	cfg.ExportDir = envString("LEADSCOUT_EXPORT_DIR", cfg.ExportDir)
	cfg.BrowserPath = envString("LEADSCOUT_BROWSER_PATH", envString("CHROME_PATH", cfg.BrowserPath))
	cfg.GeminiModel = envString("GEMINI_MODEL", cfg.GeminiModel)
	cfg.JitterMinMS = envInt("LEADSCOUT_JITTER_MIN_MS", cfg.JitterMinMS)
	cfg.JitterMaxMS = envInt("LEADSCOUT_JITTER_MAX_MS", cfg.JitterMaxMS)
	return cfg
}

// LoadDotEnv loads .env from the working directory and then from the
// config directory. Variables already set in the process win.
func LoadDotEnv() ([]string, error) {
	candidates := []string{EnvFileName}
	if dir, err := ConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, EnvFileName))
	}

	var loaded []string
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, err
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// Credentials returns the login pair from LINKEDIN_EMAIL and
// LINKEDIN_PASSWORD.
func Credentials() models.Credentials {
	return models.Credentials{
		Identity: strings.TrimSpace(os.Getenv("LINKEDIN_EMAIL")),
		Secret:   os.Getenv("LINKEDIN_PASSWORD"),
	}
}

func GeminiAPIKey() string {
	return strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
}

// Init writes default config.json and proxies.txt if they don't already exist.
func Init() ([]string, error) {
	var created []string

	dir, err := ConfigDir()
	if err != nil {
		return created, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return created, err
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(configPath, DefaultConfig()); err != nil {
			return created, err
		}
		created = append(created, configPath)
	}

	proxiesPath := filepath.Join(dir, ProxiesFileName)
	if _, err := os.Stat(proxiesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(proxiesPath, []byte(""), 0o644); err != nil {
			return created, err
		}
		created = append(created, proxiesPath)
	}

	return created, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func LoadProxies(flagValue string) ([]string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return splitCSV(flagValue), nil
	}

	if env := strings.TrimSpace(os.Getenv("LEADSCOUT_PROXIES")); env != "" {
		return splitCSV(env), nil
	}

	path, err := ProxiesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
