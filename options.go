package relflow

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/albertocavalcante/go-relflow/rewrite"
	"github.com/albertocavalcante/go-relflow/versionmap"
)

// DefaultSuffix is the release branch version suffix used unless WithSuffix
// overrides it.
const DefaultSuffix = "release"

// Option configures a Flow.
type Option func(*flowConfig) error

// flowConfig holds all flow configuration.
type flowConfig struct {
	resolver           versionmap.Resolver
	consistent         bool
	updateDependencies bool
	suffix             string
	tagFormat          string
	staging            bool
	dryRun             bool
	rng                *rand.Rand

	// logger is the structured logger for progress and change output.
	// If nil, logging is disabled.
	logger *slog.Logger
}

// WithResolver sets the resolver deciding release, hotfix and development
// versions. The default is a zero versionmap.DefaultResolver.
func WithResolver(r versionmap.Resolver) Option {
	return func(c *flowConfig) error {
		if r == nil {
			return errors.New("resolver must not be nil")
		}
		c.resolver = r
		return nil
	}
}

// WithConsistent asserts that all modules share one version. Only the root
// module is resolved and lookups of other modules fall back to its version.
func WithConsistent(consistent bool) Option {
	return func(c *flowConfig) error {
		c.consistent = consistent
		return nil
	}
}

// WithUpdateDependencies controls whether references to reactor modules in
// dependency sections are rewritten. Enabled by default.
func WithUpdateDependencies(update bool) Option {
	return func(c *flowConfig) error {
		c.updateDependencies = update
		return nil
	}
}

// WithSuffix sets the release branch version suffix: with "release", release
// 1.0 is worked on as 1.0-release-SNAPSHOT. An empty suffix yields
// 1.0-SNAPSHOT.
func WithSuffix(suffix string) Option {
	return func(c *flowConfig) error {
		c.suffix = suffix
		return nil
	}
}

// WithTagFormat sets the SCM tag template, see rewrite.ScmTag.
func WithTagFormat(format string) Option {
	return func(c *flowConfig) error {
		c.tagFormat = format
		return nil
	}
}

// WithStaging defers persistence until every module of a pass has been
// rewritten, so a failing module leaves all descriptors on disk untouched.
func WithStaging(staging bool) Option {
	return func(c *flowConfig) error {
		c.staging = staging
		return nil
	}
}

// WithDryRun rewrites documents in memory only. It takes precedence over
// WithStaging.
func WithDryRun(dryRun bool) Option {
	return func(c *flowConfig) error {
		c.dryRun = dryRun
		return nil
	}
}

// WithRand sets the random source for throw-away cache keys.
func WithRand(r *rand.Rand) Option {
	return func(c *flowConfig) error {
		c.rng = r
		return nil
	}
}

// WithLogger sets a structured logger for progress output. Change
// descriptions are logged at debug level. If not set, logging is disabled.
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "relflow")
//	flow, err := relflow.New(relflow.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *flowConfig) error {
		c.logger = l
		return nil
	}
}

// validate checks the configuration for logical consistency.
func (c *flowConfig) validate() error {
	if strings.HasPrefix(c.suffix, "-") {
		return errors.New("suffix must not start with '-'")
	}
	if strings.ContainsAny(c.suffix, " \t\n") {
		return errors.New("suffix must not contain whitespace")
	}
	if !strings.Contains(c.tagFormat, "version}") {
		return errors.New("tag format must reference ${version}")
	}
	return nil
}

// log returns the configured logger, or a no-op logger if none was set.
func (c *flowConfig) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// newFlowConfig applies opts over the defaults and validates the result.
func newFlowConfig(opts ...Option) (*flowConfig, error) {
	c := &flowConfig{
		resolver:           versionmap.DefaultResolver{},
		updateDependencies: true,
		suffix:             DefaultSuffix,
		tagFormat:          rewrite.DefaultTagFormat,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.tagFormat == "" {
		c.tagFormat = rewrite.DefaultTagFormat
	}
	if c.rng == nil {
		seed := uint64(time.Now().UnixNano())
		c.rng = rand.New(rand.NewPCG(seed, seed>>32))
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}
