package mongodb

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options defines configuration for the MongoDB client.
type Options struct {
	// URI is the full MongoDB connection string. When set it takes
	// precedence over the discrete Host/Port/credentials fields.
	URI string `json:"uri,omitempty" mapstructure:"uri"`

	Host     string `json:"host,omitempty" mapstructure:"host"`
	Port     int    `json:"port,omitempty" mapstructure:"port"`
	Username string `json:"username,omitempty" mapstructure:"username"`
	Password string `json:"-" mapstructure:"password"`
	Database string `json:"database,omitempty" mapstructure:"database"`

	// AuthSource is the database to authenticate against.
	AuthSource string `json:"auth-source,omitempty" mapstructure:"auth-source"`

	// ReplicaSet is the replica set name, if any.
	ReplicaSet string `json:"replica-set,omitempty" mapstructure:"replica-set"`

	MaxPoolSize            uint64        `json:"max-pool-size,omitempty" mapstructure:"max-pool-size"`
	MinPoolSize            uint64        `json:"min-pool-size,omitempty" mapstructure:"min-pool-size"`
	MaxConnIdleTime        time.Duration `json:"max-conn-idle-time,omitempty" mapstructure:"max-conn-idle-time"`
	ConnectTimeout         time.Duration `json:"connect-timeout,omitempty" mapstructure:"connect-timeout"`
	ServerSelectionTimeout time.Duration `json:"server-selection-timeout,omitempty" mapstructure:"server-selection-timeout"`
}

// NewOptions returns options with sensible defaults for local development.
func NewOptions() *Options {
	return &Options{
		Host:                   "127.0.0.1",
		Port:                   27017,
		Database:               "secondbrain",
		MaxPoolSize:            100,
		MinPoolSize:            10,
		MaxConnIdleTime:        5 * time.Minute,
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 10 * time.Second,
	}
}

// Validate verifies the options.
func (o *Options) Validate() []error {
	var errs []error

	if o.URI == "" {
		if o.Host == "" {
			errs = append(errs, fmt.Errorf("mongodb host cannot be empty"))
		}
		if o.Port <= 0 || o.Port > 65535 {
			errs = append(errs, fmt.Errorf("mongodb port %d is invalid", o.Port))
		}
	}

	if o.MinPoolSize > o.MaxPoolSize && o.MaxPoolSize > 0 {
		errs = append(errs, fmt.Errorf("mongodb min-pool-size cannot exceed max-pool-size"))
	}

	return errs
}

// AddFlags adds MongoDB flags to the given flag set under the namePrefix.
func (o *Options) AddFlags(fs *pflag.FlagSet, namePrefix string) {
	fs.StringVar(&o.URI, namePrefix+".uri", o.URI,
		"MongoDB connection URI. Overrides host/port/credentials when set.")
	fs.StringVar(&o.Host, namePrefix+".host", o.Host, "MongoDB server host.")
	fs.IntVar(&o.Port, namePrefix+".port", o.Port, "MongoDB server port.")
	fs.StringVar(&o.Username, namePrefix+".username", o.Username, "MongoDB username.")
	fs.StringVar(&o.Password, namePrefix+".password", o.Password, "MongoDB password.")
	fs.StringVar(&o.Database, namePrefix+".database", o.Database, "MongoDB database name.")
	fs.StringVar(&o.AuthSource, namePrefix+".auth-source", o.AuthSource,
		"Database to authenticate against.")
	fs.StringVar(&o.ReplicaSet, namePrefix+".replica-set", o.ReplicaSet,
		"Replica set name.")
	fs.Uint64Var(&o.MaxPoolSize, namePrefix+".max-pool-size", o.MaxPoolSize,
		"Maximum number of connections in the pool.")
	fs.Uint64Var(&o.MinPoolSize, namePrefix+".min-pool-size", o.MinPoolSize,
		"Minimum number of connections in the pool.")
	fs.DurationVar(&o.MaxConnIdleTime, namePrefix+".max-conn-idle-time", o.MaxConnIdleTime,
		"Maximum idle time for a pooled connection.")
	fs.DurationVar(&o.ConnectTimeout, namePrefix+".connect-timeout", o.ConnectTimeout,
		"Timeout for establishing connections.")
	fs.DurationVar(&o.ServerSelectionTimeout, namePrefix+".server-selection-timeout", o.ServerSelectionTimeout,
		"Timeout for selecting a server.")
}
