// Package config loads application configuration into Reflectable values:
// a file picked apart by its extension, followed by dotted-path overrides,
// followed by a required-member completeness check. It is the intended
// front end for types whose members carry Required markers.
package config

import (
	"os"

	reflectable "github.com/reoring/reflectable"
	"github.com/reoring/reflectable/codec"
)

// Option adjusts a single Load call.
type Option func(*options)

type options struct {
	overrides     []string
	requiredCheck bool
}

// WithOverrides appends dotted-path overrides ("server.port.8080") applied
// after the file, in order. Overrides can satisfy required members.
func WithOverrides(paths ...string) Option {
	return func(o *options) { o.overrides = append(o.overrides, paths...) }
}

// WithoutRequiredCheck skips the completeness check, for callers layering
// several sources before checking on their own.
func WithoutRequiredCheck() Option {
	return func(o *options) { o.requiredCheck = false }
}

// Load reads the file at path and loads it into cfg. The codec comes from
// the file extension (".json", ".yaml", ".yml", ".cbor"). Members absent
// from the file keep their current values, so cfg's initial state is the
// defaults. Missing required members surface as one required issue each,
// named after the member.
func Load(path string, cfg reflectable.Reflectable, opts ...Option) error {
	c, err := codec.ForPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return LoadBytes(c, data, cfg, opts...)
}

// LoadBytes is Load over in-memory data with an explicit codec.
func LoadBytes(c codec.Codec, data []byte, cfg reflectable.Reflectable, opts ...Option) error {
	o := options{requiredCheck: true}
	for _, f := range opts {
		f(&o)
	}
	tree, err := c.Decode(data)
	if err != nil {
		return err
	}
	tr := reflectable.NewTracker(cfg)
	if err := reflectable.LoadTracked(tr, tree, cfg); err != nil {
		return err
	}
	for _, p := range o.overrides {
		if err := reflectable.LoadPathTracked(tr, p, cfg); err != nil {
			return err
		}
	}
	if o.requiredCheck {
		if missing := tr.Missing(); len(missing) > 0 {
			var iss reflectable.Issues
			for _, name := range missing {
				iss = reflectable.AppendIssues(iss, reflectable.Issue{
					Path: "/" + name, Code: reflectable.CodeRequired, Message: "required member missing",
				})
			}
			return iss
		}
	}
	return nil
}
