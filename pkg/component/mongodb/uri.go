package mongodb

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildURI constructs a MongoDB connection URI from the options.
// If opts.URI is already set, it is returned unchanged.
func BuildURI(opts *Options) string {
	if opts.URI != "" {
		return opts.URI
	}

	var sb strings.Builder
	sb.WriteString("mongodb://")

	if opts.Username != "" {
		sb.WriteString(url.QueryEscape(opts.Username))
		if opts.Password != "" {
			sb.WriteString(":")
			sb.WriteString(url.QueryEscape(opts.Password))
		}
		sb.WriteString("@")
	}

	sb.WriteString(fmt.Sprintf("%s:%d", opts.Host, opts.Port))

	if opts.Database != "" {
		sb.WriteString("/")
		sb.WriteString(opts.Database)
	}

	params := url.Values{}
	if opts.AuthSource != "" {
		params.Set("authSource", opts.AuthSource)
	}
	if opts.ReplicaSet != "" {
		params.Set("replicaSet", opts.ReplicaSet)
	}
	if len(params) > 0 {
		sb.WriteString("?")
		sb.WriteString(params.Encode())
	}

	return sb.String()
}
