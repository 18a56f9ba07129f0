package extractor

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options defines configuration for the extraction service client.
type Options struct {
	// Endpoint is the base URL of the extraction service.
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`

	// Timeout bounds a single extraction call. Extraction of large
	// documents can be slow, so the default is generous.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions returns options with defaults for local development.
func NewOptions() *Options {
	return &Options{
		Endpoint: "http://127.0.0.1:8000",
		Timeout:  120 * time.Second,
	}
}

// Validate verifies the options.
func (o *Options) Validate() []error {
	var errs []error
	if o.Endpoint == "" {
		errs = append(errs, fmt.Errorf("extractor endpoint cannot be empty"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("extractor timeout must be positive"))
	}
	return errs
}

// AddFlags adds extractor flags to the given flag set.
func (o *Options) AddFlags(fs *pflag.FlagSet, namePrefix string) {
	fs.StringVar(&o.Endpoint, namePrefix+".endpoint", o.Endpoint,
		"Base URL of the extraction service.")
	fs.DurationVar(&o.Timeout, namePrefix+".timeout", o.Timeout,
		"Timeout for a single extraction call.")
}
