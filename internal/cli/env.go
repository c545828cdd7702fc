// Package cli implements the regiongraph commands on top of pkg/pipeline.
// The cobra wiring lives in cmd/regiongraph; everything here takes plain
// writers so it can be driven from tests.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/regiongraph/internal/config"
	"github.com/aretw0/regiongraph/internal/logging"
	"github.com/aretw0/regiongraph/pkg/adapters/memory"
	"github.com/aretw0/regiongraph/pkg/adapters/redis"
	"github.com/aretw0/regiongraph/pkg/observability"
	"github.com/aretw0/regiongraph/pkg/pipeline"
	"github.com/aretw0/regiongraph/pkg/ports"
)

// redisPrefix namespaces every key the binary writes.
const redisPrefix = "regiongraph:"

// Env holds the collaborators shared by one command invocation.
type Env struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *observability.Metrics

	cache  ports.ClauseCache
	locker ports.DistributedLocker
	redis  *redis.Cache
}

// NewEnv builds the logger, metrics and cache for cfg. Logs go to logOut.
// With a redis URL the clause cache and output lock are shared through
// redis; otherwise both are process-local.
func NewEnv(cfg config.Config, logOut io.Writer) (*Env, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	env := &Env{
		Config:  cfg,
		Logger:  logging.NewWithWriter(logOut, level),
		Metrics: observability.NewMetrics(),
		cache:   memory.NewCache(),
		locker:  memory.NewLocker(),
	}
	if cfg.RedisURL != "" {
		rc, err := redis.New(cfg.RedisURL, redis.WithPrefix(redisPrefix+"dnf:"))
		if err != nil {
			return nil, err
		}
		env.redis = rc
		env.cache = rc
		env.locker = redis.NewLocker(rc.Client(), redisPrefix)
		env.Logger.Debug("using redis clause cache")
	}
	return env, nil
}

// PipelineOptions returns the options every command passes to the pipeline.
func (e *Env) PipelineOptions(extra ...pipeline.Option) []pipeline.Option {
	opts := []pipeline.Option{
		pipeline.WithLogger(e.Logger),
		pipeline.WithCache(e.cache),
		pipeline.WithLocker(e.locker),
		pipeline.WithLifecycleHooks(e.Metrics.Hooks()),
	}
	return append(opts, extra...)
}

// Close flushes the metrics textfile, if configured, and releases redis.
func (e *Env) Close() error {
	var errs []error
	if e.Config.MetricsFile != "" {
		if err := e.Metrics.WriteToTextfile(e.Config.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	if e.redis != nil {
		if err := e.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
