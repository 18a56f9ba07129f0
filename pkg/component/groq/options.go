package groq

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options defines configuration for the Groq completion client.
type Options struct {
	// Endpoint is the base URL of the Groq API.
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`

	// APIKey is the server-level default key. A key supplied with an
	// individual request takes precedence over this one.
	APIKey string `json:"-" mapstructure:"api-key"`

	// Model is the chat model to use for completions.
	Model string `json:"model" mapstructure:"model"`

	// Timeout bounds a single completion call.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions returns options with defaults. The API key has no default;
// without one, every request must carry its own key.
func NewOptions() *Options {
	return &Options{
		Endpoint: "https://api.groq.com",
		Model:    "llama-3.1-8b-instant",
		Timeout:  60 * time.Second,
	}
}

// Validate verifies the options.
func (o *Options) Validate() []error {
	var errs []error
	if o.Endpoint == "" {
		errs = append(errs, fmt.Errorf("groq endpoint cannot be empty"))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("groq model cannot be empty"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("groq timeout must be positive"))
	}
	return errs
}

// AddFlags adds Groq flags to the given flag set.
func (o *Options) AddFlags(fs *pflag.FlagSet, namePrefix string) {
	fs.StringVar(&o.Endpoint, namePrefix+".endpoint", o.Endpoint,
		"Base URL of the Groq API.")
	fs.StringVar(&o.APIKey, namePrefix+".api-key", o.APIKey,
		"Server-level default API key. Request-supplied keys take precedence.")
	fs.StringVar(&o.Model, namePrefix+".model", o.Model,
		"Chat model used for completions.")
	fs.DurationVar(&o.Timeout, namePrefix+".timeout", o.Timeout,
		"Timeout for a single completion call.")
}
