// Package secondbrain provides the SecondBrain service application.
package secondbrain

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/secondbrain-io/secondbrain/pkg/component/extractor"
	"github.com/secondbrain-io/secondbrain/pkg/component/groq"
	"github.com/secondbrain-io/secondbrain/pkg/component/mongodb"
	"github.com/secondbrain-io/secondbrain/pkg/component/vectorindex"
	logopts "github.com/secondbrain-io/secondbrain/pkg/options/logger"
)

// Options contains all SecondBrain service options.
type Options struct {
	// Server contains HTTP server configuration.
	Server *ServerOptions `json:"server" mapstructure:"server"`

	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Mongo contains MongoDB configuration.
	Mongo *mongodb.Options `json:"mongo" mapstructure:"mongo"`

	// Extractor contains extraction service configuration.
	Extractor *extractor.Options `json:"extractor" mapstructure:"extractor"`

	// Index contains vector index service configuration.
	Index *vectorindex.Options `json:"index" mapstructure:"index"`

	// Groq contains completion API configuration.
	Groq *groq.Options `json:"groq" mapstructure:"groq"`

	// Ingest contains ingestion pipeline configuration.
	Ingest *IngestOptions `json:"ingest" mapstructure:"ingest"`

	// Chat contains chat pipeline configuration.
	Chat *ChatOptions `json:"chat" mapstructure:"chat"`

	// Cache contains chat result cache configuration.
	Cache *CacheOptions `json:"cache" mapstructure:"cache"`
}

// ServerOptions configures the HTTP server.
type ServerOptions struct {
	// Addr is the listen address.
	Addr string `json:"addr" mapstructure:"addr"`

	// JWTKey is the shared HS256 key used to verify bearer tokens
	// issued by the identity service.
	JWTKey string `json:"-" mapstructure:"jwt-key"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// IngestOptions configures the ingestion pipeline.
type IngestOptions struct {
	// ProcessTimeout bounds background processing of one document.
	ProcessTimeout time.Duration `json:"process-timeout" mapstructure:"process-timeout"`

	// Workers is the background pool capacity.
	Workers int `json:"workers" mapstructure:"workers"`
}

// ChatOptions configures the chat pipeline.
type ChatOptions struct {
	// TopK is how many chunks to retrieve per question.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// SystemPrompt overrides the default completion instruction.
	SystemPrompt string `json:"system-prompt" mapstructure:"system-prompt"`
}

// CacheOptions configures the chat result cache.
type CacheOptions struct {
	// Enabled turns the Redis cache on.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// TTL is the cache entry lifetime.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`

	// KeyPrefix namespaces cache keys.
	KeyPrefix string `json:"key-prefix" mapstructure:"key-prefix"`

	// Redis contains Redis connection configuration.
	Redis *RedisOptions `json:"redis" mapstructure:"redis"`
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Host         string `json:"host" mapstructure:"host"`
	Port         int    `json:"port" mapstructure:"port"`
	Password     string `json:"-" mapstructure:"password"`
	Database     int    `json:"database" mapstructure:"database"`
	PoolSize     int    `json:"pool-size" mapstructure:"pool-size"`
	MinIdleConns int    `json:"min-idle-conns" mapstructure:"min-idle-conns"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Server: &ServerOptions{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log:       logopts.NewOptions(),
		Mongo:     mongodb.NewOptions(),
		Extractor: extractor.NewOptions(),
		Index:     vectorindex.NewOptions(),
		Groq:      groq.NewOptions(),
		Ingest: &IngestOptions{
			ProcessTimeout: 5 * time.Minute,
			Workers:        50,
		},
		Chat: &ChatOptions{
			TopK: 5,
		},
		Cache: &CacheOptions{
			Enabled:   false,
			TTL:       1 * time.Hour,
			KeyPrefix: "secondbrain:chat:",
			Redis: &RedisOptions{
				Host:         "localhost",
				Port:         6379,
				Database:     0,
				PoolSize:     10,
				MinIdleConns: 5,
			},
		},
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Server.Addr, "server.addr", o.Server.Addr, "HTTP listen address.")
	fs.StringVar(&o.Server.JWTKey, "server.jwt-key", o.Server.JWTKey,
		"Shared HS256 key for verifying bearer tokens.")
	fs.DurationVar(&o.Server.ShutdownTimeout, "server.shutdown-timeout", o.Server.ShutdownTimeout,
		"Graceful shutdown timeout.")

	o.Log.AddFlags(fs)
	o.Mongo.AddFlags(fs, "mongo")
	o.Extractor.AddFlags(fs, "extractor")
	o.Index.AddFlags(fs, "index")
	o.Groq.AddFlags(fs, "groq")

	fs.DurationVar(&o.Ingest.ProcessTimeout, "ingest.process-timeout", o.Ingest.ProcessTimeout,
		"Timeout for background processing of one document.")
	fs.IntVar(&o.Ingest.Workers, "ingest.workers", o.Ingest.Workers,
		"Background worker pool capacity.")

	fs.IntVar(&o.Chat.TopK, "chat.top-k", o.Chat.TopK,
		"Number of chunks retrieved per question.")
	fs.StringVar(&o.Chat.SystemPrompt, "chat.system-prompt", o.Chat.SystemPrompt,
		"Override for the completion system prompt.")

	fs.BoolVar(&o.Cache.Enabled, "cache.enabled", o.Cache.Enabled, "Enable chat result cache.")
	fs.DurationVar(&o.Cache.TTL, "cache.ttl", o.Cache.TTL, "Cache TTL duration.")
	fs.StringVar(&o.Cache.KeyPrefix, "cache.key-prefix", o.Cache.KeyPrefix, "Cache key prefix.")
	fs.StringVar(&o.Cache.Redis.Host, "cache.redis.host", o.Cache.Redis.Host, "Redis host.")
	fs.IntVar(&o.Cache.Redis.Port, "cache.redis.port", o.Cache.Redis.Port, "Redis port.")
	fs.StringVar(&o.Cache.Redis.Password, "cache.redis.password", o.Cache.Redis.Password, "Redis password.")
	fs.IntVar(&o.Cache.Redis.Database, "cache.redis.database", o.Cache.Redis.Database, "Redis database number.")
	fs.IntVar(&o.Cache.Redis.PoolSize, "cache.redis.pool-size", o.Cache.Redis.PoolSize, "Redis connection pool size.")
	fs.IntVar(&o.Cache.Redis.MinIdleConns, "cache.redis.min-idle-conns", o.Cache.Redis.MinIdleConns, "Redis minimum idle connections.")
}

// Validate validates the options.
func (o *Options) Validate() error {
	if o.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if o.Server.JWTKey == "" {
		return fmt.Errorf("server.jwt-key is required")
	}
	if err := o.Log.Validate(); err != nil {
		return err
	}
	for _, errs := range [][]error{
		o.Mongo.Validate(),
		o.Extractor.Validate(),
		o.Index.Validate(),
		o.Groq.Validate(),
	} {
		if len(errs) > 0 {
			return errs[0]
		}
	}
	if o.Ingest.Workers <= 0 {
		return fmt.Errorf("ingest.workers must be positive")
	}
	if o.Chat.TopK <= 0 {
		return fmt.Errorf("chat.top-k must be positive")
	}
	return nil
}

// Complete completes the options.
func (o *Options) Complete() error {
	return nil
}
