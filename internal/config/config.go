package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// DefaultCacheFile is where the last snapshot lands when Redis is not
// available and no explicit file path was configured.
const DefaultCacheFile = "/tmp/last_prices.json"

// DefaultCacheKey is the Redis key holding the last snapshot.
const DefaultCacheKey = "gold:last"

// FilePathMode records how the fallback cache file path was obtained.
// The distinction matters for the dual-write rule: a successful Redis
// save skips the file write unless the path was explicitly requested.
type FilePathMode int

const (
	FilePathUnset FilePathMode = iota
	FilePathDefault
	FilePathExplicit
)

type Redis struct {
	URL      string
	Host     string
	Port     int
	Username string
	Password string
	CacheKey string
}

// Configured reports whether a primary backend was requested at all.
func (r Redis) Configured() bool {
	return r.URL != "" || r.Host != ""
}

type Cache struct {
	Redis    Redis
	File     string
	FileMode FilePathMode
}

type Config struct {
	BotToken string
	DataDir  string
	AdminIDs []int64
	Debug    bool

	Cache Cache
}

func DefaultDataDir() string {
	if v := os.Getenv("GVB_DATA_DIR"); v != "" {
		return v
	}
	return "/var/lib/gold-price-bot"
}

func DefaultConfigPath() string {
	if v := os.Getenv("GVB_CONFIG"); v != "" {
		return v
	}
	return "/etc/gold-price-bot/config.yaml"
}

// Load resolves configuration from an optional config file plus the
// environment. Environment values win. The recognized cache options keep
// their historic names (REDIS_URL, PRICE_CACHE_FILE, ...) so existing
// deployments carry over unchanged.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.cache_key", DefaultCacheKey)

	bind := func(key string, envs ...string) {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
	bind("bot_token", "BOT_TOKEN", "GVB_BOT_TOKEN")
	bind("data_dir", "DATA_DIR", "GVB_DATA_DIR")
	bind("admin_ids", "GVB_ADMIN_IDS")
	bind("debug", "GVB_DEBUG")
	bind("redis.url", "REDIS_URL")
	bind("redis.host", "REDIS_HOST")
	bind("redis.port", "REDIS_PORT")
	bind("redis.username", "REDIS_USERNAME")
	bind("redis.password", "REDIS_PASSWORD")
	bind("redis.cache_key", "REDIS_CACHE_KEY")
	bind("cache_file", "PRICE_CACHE_FILE")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := Config{
		BotToken: v.GetString("bot_token"),
		DataDir:  filepath.Clean(v.GetString("data_dir")),
		AdminIDs: parseIDList(v.GetString("admin_ids")),
		Debug:    v.GetBool("debug"),
		Cache: Cache{
			Redis: Redis{
				URL:      v.GetString("redis.url"),
				Host:     v.GetString("redis.host"),
				Port:     v.GetInt("redis.port"),
				Username: v.GetString("redis.username"),
				Password: v.GetString("redis.password"),
				CacheKey: v.GetString("redis.cache_key"),
			},
		},
	}

	// Three-valued file path resolution: an empty value means nobody asked
	// for a file, so the fixed default is used and a successful Redis save
	// will not duplicate the snapshot on disk.
	if file := v.GetString("cache_file"); file != "" {
		cfg.Cache.File = file
		cfg.Cache.FileMode = FilePathExplicit
	} else {
		cfg.Cache.File = DefaultCacheFile
		cfg.Cache.FileMode = FilePathDefault
	}

	return cfg, nil
}

func parseIDList(s string) []int64 {
	var out []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err == nil {
			out = append(out, id)
		}
	}
	return out
}
