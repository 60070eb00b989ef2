// Package config loads knitout settings from defaults, an optional YAML
// file, a .env file and KNITOUT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/knitout/internal/adapters/s3"
	"github.com/aretw0/knitout/internal/logging"
	"github.com/aretw0/knitout/pkg/generator"
	"github.com/aretw0/knitout/pkg/machine"
	"github.com/aretw0/knitout/pkg/persistence/middleware"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is read when no file is named and it exists.
	DefaultFile = "knitout.yaml"
	// EnvPrefix starts every environment override.
	EnvPrefix = "KNITOUT_"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreS3     = "s3"
)

// Config is the full set of knitout settings.
type Config struct {
	Machine   machine.Config `mapstructure:"machine" yaml:"machine"`
	Generator Generator      `mapstructure:"generator" yaml:"generator"`
	Server    Server         `mapstructure:"server" yaml:"server"`
	Store     Store          `mapstructure:"store" yaml:"store"`
	Cache     Cache          `mapstructure:"cache" yaml:"cache"`
	Lock      Lock           `mapstructure:"lock" yaml:"lock"`
	Log       Log            `mapstructure:"log" yaml:"log"`
}

// Generator holds the defaults handed to every compilation.
type Generator struct {
	Carrier  []int `mapstructure:"carrier" yaml:"carrier"`
	Outhook  bool  `mapstructure:"outhook" yaml:"outhook"`
	Drop     bool  `mapstructure:"drop" yaml:"drop"`
	Comments bool  `mapstructure:"comments" yaml:"comments"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Store selects where compiled artifacts are kept.
type Store struct {
	Kind  string    `mapstructure:"kind" yaml:"kind"`
	Path  string    `mapstructure:"path" yaml:"path"`
	Redis Redis     `mapstructure:"redis" yaml:"redis"`
	S3    s3.Config `mapstructure:"s3" yaml:"s3"`
	// EncryptionKey is a base64 AES-256 key. When set, program text is
	// encrypted at rest.
	EncryptionKey string `mapstructure:"encryption_key" yaml:"encryption_key,omitempty"`
	// FallbackKeys are older keys still accepted for decryption.
	FallbackKeys []string `mapstructure:"fallback_keys" yaml:"fallback_keys,omitempty"`
}

// Redis locates the redis server used by the redis store and locker.
type Redis struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// Cache sizes the in-process compile cache. Zero disables it.
type Cache struct {
	Size int `mapstructure:"size" yaml:"size"`
}

// Lock bounds how long one compilation may hold its input's lock.
type Lock struct {
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// Log configures the application logger.
type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Machine:   machine.DefaultConfig(),
		Generator: Generator{Carrier: []int{machine.DefaultCarrier}, Outhook: true},
		Server:    Server{Addr: ":8080"},
		Store: Store{
			Kind:  StoreMemory,
			Path:  ".knitout/artifacts",
			Redis: Redis{Addr: "localhost:6379", TTL: 24 * time.Hour},
			S3:    s3.Config{Region: "us-east-1", Bucket: "knitout-artifacts", UseSSL: true},
		},
		Cache: Cache{Size: 128},
		Lock:  Lock{TTL: 30 * time.Second},
		Log:   Log{Level: "info", Format: "text"},
	}
}

// Load builds the configuration. path names a YAML file; when empty,
// DefaultFile is read if present. envFile names a dotenv file whose
// values never replace variables already set; a missing one is ignored.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	required := path != ""
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if err := decode(raw, &cfg); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
	case required || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	if err := decode(FromEnv(os.Environ()), &cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(raw map[string]any, cfg *Config) error {
	if len(raw) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		ZeroFields:       true, // lists replace the defaults rather than merging into them
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Keys lists every setting that can be overridden from the environment,
// as dotted paths.
var Keys = []string{
	"machine.name", "machine.gauge", "machine.width", "machine.carriers", "machine.position",
	"generator.carrier", "generator.outhook", "generator.drop", "generator.comments",
	"server.addr",
	"store.kind", "store.path",
	"store.redis.addr", "store.redis.password", "store.redis.db", "store.redis.ttl",
	"store.s3.endpoint", "store.s3.region", "store.s3.access_key", "store.s3.secret_key",
	"store.s3.bucket", "store.s3.prefix", "store.s3.use_ssl",
	"store.encryption_key", "store.fallback_keys",
	"cache.size",
	"lock.ttl",
	"log.level", "log.format",
}

// EnvName is the variable overriding a dotted key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// FromEnv collects the overrides found in environ ("KEY=value" pairs) as
// a nested map ready to decode.
func FromEnv(environ []string) map[string]any {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, EnvPrefix) {
			vars[k] = v
		}
	}
	out := make(map[string]any)
	for _, key := range Keys {
		v, ok := vars[EnvName(key)]
		if !ok {
			continue
		}
		parts := strings.Split(key, ".")
		m := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := m[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				m[p] = next
			}
			m = next
		}
		m[parts[len(parts)-1]] = v
	}
	return out
}

// Validate checks the settings are usable together.
func (c *Config) Validate() error {
	if err := c.Machine.Validate(); err != nil {
		return err
	}
	if _, err := machine.NewCarrier(c.Generator.Carrier...); err != nil {
		return fmt.Errorf("generator carrier: %w", err)
	}
	switch c.Store.Kind {
	case StoreMemory, StoreFile, StoreRedis, StoreS3:
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
	if c.Store.EncryptionKey != "" {
		if _, err := middleware.ParseKeys(c.Store.EncryptionKey, c.Store.FallbackKeys...); err != nil {
			return fmt.Errorf("store encryption: %w", err)
		}
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache size must not be negative, got %d", c.Cache.Size)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// GeneratorOptions turns the machine and generator sections into options.
func (c *Config) GeneratorOptions() ([]generator.Option, error) {
	carrier, err := machine.NewCarrier(c.Generator.Carrier...)
	if err != nil {
		return nil, err
	}
	return []generator.Option{
		generator.WithMachineConfig(c.Machine),
		generator.WithCarrier(carrier),
		generator.WithOuthook(c.Generator.Outhook),
		generator.WithDropOnFinish(c.Generator.Drop),
		generator.WithComments(c.Generator.Comments),
	}, nil
}
