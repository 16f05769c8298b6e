package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache backends.
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendMemory = "memory"
)

// Config holds application configuration.
type Config struct {
	// CacheTTLSeconds is how long compiled CSS stays cached.
	CacheTTLSeconds int `json:"cache_ttl_seconds"`

	// CacheBackend selects the cache store: "sqlite" (persistent transients
	// in the base directory) or "memory" (process-local).
	CacheBackend string `json:"cache_backend,omitempty"`

	// AnimationsFile is an optional YAML catalog of extra animation definitions.
	// Entries overwrite built-in animations with the same name.
	AnimationsFile string `json:"animations_file,omitempty"`

	// EditorToken guards CSS generation and previews over HTTP.
	// Empty means the endpoints are open (local use).
	EditorToken string `json:"editor_token,omitempty"`

	// AdminToken guards cache clearing over HTTP.
	// Empty means cache clearing over HTTP is always forbidden.
	AdminToken string `json:"admin_token,omitempty"`

	// PreviewRateLimit is the number of preview requests allowed per second.
	PreviewRateLimit float64 `json:"preview_rate_limit,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// DebugMode forces debug logging regardless of LogLevel.
	DebugMode bool `json:"debug_mode,omitempty"`

	// Client defaults, used when an element does not carry its own settings.
	DefaultSpeed  int    `json:"default_speed,omitempty"`
	DefaultCursor string `json:"default_cursor,omitempty"`
	DefaultLoop   bool   `json:"default_loop,omitempty"`

	// EnableAccessibility honors the reduced-motion preference and sets ARIA attributes.
	// Pointer so an explicit false survives merging over the default.
	EnableAccessibility *bool `json:"enable_accessibility,omitempty"`

	// EnablePerformanceOptimization starts animations lazily when they become visible.
	EnablePerformanceOptimization *bool `json:"enable_performance_optimization,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of tool type names to disable entirely.
	// Known types: "animation", "cache".
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		CacheTTLSeconds:               3600,
		CacheBackend:                  CacheBackendSQLite,
		PreviewRateLimit:              5,
		LogLevel:                      "info",
		DefaultSpeed:                  100,
		DefaultCursor:                 "|",
		EnableAccessibility:           boolPtr(true),
		EnablePerformanceOptimization: boolPtr(true),
	}
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// AccessibilityEnabled reports whether reduced-motion and ARIA handling is on.
func (c *Config) AccessibilityEnabled() bool {
	return c.EnableAccessibility == nil || *c.EnableAccessibility
}

// LazyStartEnabled reports whether animations wait for visibility before starting.
func (c *Config) LazyStartEnabled() bool {
	return c.EnablePerformanceOptimization == nil || *c.EnablePerformanceOptimization
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.shogun.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.shogun) and repo (.shogun) directories.
// Repo config is found by walking upward from startDir to find the nearest .shogun/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .shogun/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".shogun", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.CacheTTLSeconds = firstInt(overlay.CacheTTLSeconds, base.CacheTTLSeconds)
	result.CacheBackend = firstString(overlay.CacheBackend, base.CacheBackend)
	result.AnimationsFile = firstString(overlay.AnimationsFile, base.AnimationsFile)
	result.EditorToken = firstString(overlay.EditorToken, base.EditorToken)
	result.AdminToken = firstString(overlay.AdminToken, base.AdminToken)
	result.LogLevel = firstString(overlay.LogLevel, base.LogLevel)
	result.DefaultSpeed = firstInt(overlay.DefaultSpeed, base.DefaultSpeed)
	result.DefaultCursor = firstString(overlay.DefaultCursor, base.DefaultCursor)
	result.DBMaxOpenConns = firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	result.PreviewRateLimit = overlay.PreviewRateLimit
	if result.PreviewRateLimit == 0 {
		result.PreviewRateLimit = base.PreviewRateLimit
	}

	// Tri-state booleans: overlay wins if set
	result.EnableAccessibility = overlay.EnableAccessibility
	if result.EnableAccessibility == nil {
		result.EnableAccessibility = base.EnableAccessibility
	}
	result.EnablePerformanceOptimization = overlay.EnablePerformanceOptimization
	if result.EnablePerformanceOptimization == nil {
		result.EnablePerformanceOptimization = base.EnablePerformanceOptimization
	}

	// Booleans: overlay wins if true, else base
	result.DebugMode = base.DebugMode || overlay.DebugMode
	result.DefaultLoop = base.DefaultLoop || overlay.DefaultLoop

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func firstInt(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

func firstString(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func boolPtr(b bool) *bool { return &b }

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
