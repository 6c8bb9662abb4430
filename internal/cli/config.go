package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	apperr "github.com/matzehuels/sceneforest/pkg/errors"
)

// Cache backends accepted in [CacheConfig].
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

const configFile = "config.toml"

// Config holds the settings read from config.toml.
//
// Example:
//
//	[cache]
//	backend = "redis"
//	ttl = "72h"
//
//	[redis]
//	addr = "cache.internal:6379"
//
//	[scene]
//	base = "world"
//	coerce_affine = true
type Config struct {
	Cache CacheConfig `toml:"cache"`
	Redis RedisConfig `toml:"redis"`
	Scene SceneConfig `toml:"scene"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Backend string        `toml:"backend"` // file, redis or none
	Dir     string        `toml:"dir"`     // file backend directory; XDG default when empty
	TTL     time.Duration `toml:"ttl"`     // artifact lifetime such as "72h"; 0 keeps entries forever
}

// RedisConfig locates the Redis server used by the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// SceneConfig holds forest validation policies applied when loading scenes.
type SceneConfig struct {
	Base         string `toml:"base"`          // base frame for files that do not name one
	CoerceAffine bool   `toml:"coerce_affine"` // repair bad bottom rows instead of rejecting
	StrictRemove bool   `toml:"strict_remove"` // removing a missing edge is an error
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Backend: backendFile,
			TTL:     7 * 24 * time.Hour,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Scene: SceneConfig{Base: "world"},
	}
}

// LoadConfig reads path over the defaults. An empty path means the XDG
// location, which may be absent; an explicit path must exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, configFile)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return cfg, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "config %s not found", path)
			}
			return DefaultConfig(), nil
		}
		return cfg, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "parse config %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, apperr.New(apperr.ErrCodeInvalidInput, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	cfg.Cache.Backend = strings.ToLower(cfg.Cache.Backend)
	if err := apperr.ValidateFormat(cfg.Cache.Backend, backendFile, backendRedis, backendNone); err != nil {
		return cfg, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "config %s: cache.backend", path)
	}
	return cfg, nil
}

// writeConfig saves cfg to path, creating parent directories.
func writeConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
