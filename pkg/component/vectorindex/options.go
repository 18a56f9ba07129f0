package vectorindex

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options defines configuration for the vector index service client.
type Options struct {
	// Endpoint is the base URL of the vector index service.
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`

	// Timeout bounds a single index call.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions returns options with defaults for local development.
func NewOptions() *Options {
	return &Options{
		Endpoint: "http://127.0.0.1:8000",
		Timeout:  30 * time.Second,
	}
}

// Validate verifies the options.
func (o *Options) Validate() []error {
	var errs []error
	if o.Endpoint == "" {
		errs = append(errs, fmt.Errorf("vector index endpoint cannot be empty"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("vector index timeout must be positive"))
	}
	return errs
}

// AddFlags adds vector index flags to the given flag set.
func (o *Options) AddFlags(fs *pflag.FlagSet, namePrefix string) {
	fs.StringVar(&o.Endpoint, namePrefix+".endpoint", o.Endpoint,
		"Base URL of the vector index service.")
	fs.DurationVar(&o.Timeout, namePrefix+".timeout", o.Timeout,
		"Timeout for a single vector index call.")
}
