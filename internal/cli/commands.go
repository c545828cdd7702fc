package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/regiongraph/internal/adapters/http"
	"github.com/aretw0/regiongraph/internal/presentation/tui"
	"github.com/aretw0/regiongraph/internal/validator"
	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/export"
	"github.com/aretw0/regiongraph/pkg/pipeline"
)

// ErrInvalid is returned by Validate when problems were found.
var ErrInvalid = errors.New("validation failed")

const shutdownTimeout = 5 * time.Second

// Build runs the pipeline and prints a summary of the finalized graph.
// A skipped run is reported but is not an error.
func Build(ctx context.Context, env *Env, out io.Writer) error {
	res, err := pipeline.Run(ctx, env.Config.Config, env.PipelineOptions()...)
	if errors.Is(err, pipeline.ErrSkipped) {
		fmt.Fprintln(out, "Region extraction not requested; nothing to do.")
		return nil
	}
	if err != nil {
		return err
	}

	rendered, err := tui.NewRenderer(out)(tui.Summary(refOf(env.Config.Config), res.World))
	if err != nil {
		return err
	}
	fmt.Fprint(out, rendered)
	for _, path := range res.Outputs {
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	return nil
}

// Graph builds the graph without exporting and writes it as Mermaid to out.
func Graph(ctx context.Context, env *Env, out io.Writer) error {
	cfg := env.Config.Config
	cfg.OutputDir = ""
	cfg.Jobs = []string{pipeline.JobRegions}

	res, err := pipeline.Run(ctx, cfg, env.PipelineOptions()...)
	if err != nil {
		return err
	}
	kept, err := pipeline.ReadKeepSet(cfg.EmptyRegionsToKeepPath)
	if err != nil {
		return err
	}
	return export.Mermaid{Kept: kept}.Export(ctx, out, cfg.RefName, res.World)
}

// Validate normalizes every logic object, builds the graph without
// exporting and reports unsatisfiable objects and unreachable regions.
// It returns ErrInvalid when anything was reported.
func Validate(ctx context.Context, env *Env, out io.Writer) error {
	cfg := env.Config.Config
	cfg.OutputDir = ""
	cfg.Jobs = []string{pipeline.JobRegions}

	p := pipeline.New(env.PipelineOptions()...)
	objs, src, err := p.Objects(ctx, cfg)
	if err != nil {
		return err
	}
	env.Logger.Info("definitions normalized", "source", src, "objects", len(objs))

	problems := validator.CheckObjects(objs)
	res, err := pipeline.Run(ctx, cfg, env.PipelineOptions(pipeline.WithSource(loadedSource{src, objs}))...)
	if err != nil {
		return err
	}
	problems = append(problems, validator.CheckGraph(res.World)...)

	rendered, err := tui.NewRenderer(out)(tui.Findings("Validation", problems))
	if err != nil {
		return err
	}
	fmt.Fprint(out, rendered)
	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, &validator.AggregateError{Errors: problems})
	}
	return nil
}

// Serve builds the graph once and serves it on ln until ctx is done.
func Serve(ctx context.Context, env *Env, ln net.Listener) error {
	cfg := env.Config.Config
	cfg.OutputDir = ""

	res, err := pipeline.Run(ctx, cfg, env.PipelineOptions()...)
	if err != nil {
		return err
	}
	kept, err := pipeline.ReadKeepSet(cfg.EmptyRegionsToKeepPath)
	if err != nil {
		return err
	}

	server := httpAdapter.NewServer(
		httpAdapter.WithLogger(env.Logger),
		httpAdapter.WithMetrics(env.Metrics.Handler()),
	)
	server.Publish(refOf(cfg), res.World, kept)
	return serveUntilDone(ctx, env, &http.Server{Handler: server.Handler()}, ln)
}

func serveUntilDone(ctx context.Context, env *Env, srv *http.Server, ln net.Listener) error {
	serverErrors := make(chan error, 1)
	go func() {
		env.Logger.Info("serving region graph", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			env.Logger.Warn("graceful shutdown did not complete", "err", err)
			return srv.Close()
		}
		env.Logger.Info("server stopped")
		return nil
	}
}

func refOf(cfg pipeline.Config) string {
	if cfg.RefName == "" {
		return pipeline.DefaultRefName
	}
	return cfg.RefName
}

// loadedSource replays objects that were already normalized.
type loadedSource struct {
	name string
	objs []domain.LogicObjectDefinition
}

func (s loadedSource) Name() string { return s.name }

func (s loadedSource) Load(ctx context.Context) ([]domain.LogicObjectDefinition, error) {
	return s.objs, ctx.Err()
}
