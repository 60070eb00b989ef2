package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/knitout"
	"github.com/aretw0/knitout/internal/config"
	"github.com/aretw0/knitout/internal/presentation/graph"
	"github.com/aretw0/knitout/internal/presentation/tui"
	"github.com/aretw0/knitout/pkg/generator"
	"github.com/aretw0/knitout/pkg/knitgraph"
)

// newEngine opens a pattern file with the configured machine.
func newEngine(path string, cfg *config.Config, logger *slog.Logger) (*knitout.Engine, error) {
	genOpts, err := cfg.GeneratorOptions()
	if err != nil {
		return nil, err
	}
	return knitout.New(path, knitout.WithLogger(logger), knitout.WithGeneratorOptions(genOpts...))
}

// RunValidate compiles every file without keeping the result and reports
// one line per file. It fails if any file does.
func RunValidate(ctx context.Context, paths []string, cfg *config.Config, logger *slog.Logger, s Streams) error {
	var errs []error
	for _, path := range paths {
		eng, err := newEngine(path, cfg, logger)
		if err == nil {
			var p *generator.Program
			if p, err = eng.Compile(ctx); err == nil {
				st := p.Stats()
				tui.Status(s.Err, true, fmt.Sprintf("%s: %d courses, %d instructions, %d transfers",
					path, p.Courses.Len(), st.Instructions, st.Xfers))
				continue
			}
		}
		tui.Status(s.Err, false, fmt.Sprintf("%s: %v", path, err))
		errs = append(errs, fmt.Errorf("%s: %w", path, err))
	}
	return errors.Join(errs...)
}

// RunCourses prints the course decomposition of a pattern, one course per
// line in needle order.
func RunCourses(path string, cfg *config.Config, logger *slog.Logger, s Streams) error {
	eng, err := newEngine(path, cfg, logger)
	if err != nil {
		return err
	}
	g, courses, err := eng.Inspect()
	if err != nil {
		return err
	}
	for c, loops := range courses.Loops {
		ids := make([]string, len(loops))
		yarns := make(map[string]bool)
		var names []string
		for i, id := range loops {
			ids[i] = fmt.Sprint(id)
			if l, ok := g.Loop(id); ok && !yarns[l.Yarn()] {
				yarns[l.Yarn()] = true
				names = append(names, l.Yarn())
			}
		}
		fmt.Fprintf(s.Out, "course %d (%s): %s\n", c, strings.Join(names, ","), strings.Join(ids, " "))
	}
	return nil
}

// RunGraph prints the knit graph as a Mermaid diagram. With overlay, the
// pattern is compiled and loops are labelled with their needles; a loop
// the compile fails on is highlighted and the drawing is still printed.
func RunGraph(ctx context.Context, path string, overlay bool, cfg *config.Config, logger *slog.Logger, s Streams) error {
	eng, err := newEngine(path, cfg, logger)
	if err != nil {
		return err
	}
	g, courses, err := eng.Inspect()
	if err != nil {
		return err
	}
	if !overlay {
		fmt.Fprint(s.Out, graph.GenerateMermaid(g, courses, nil))
		return nil
	}

	var ov graph.Overlay
	p, genErr := eng.Compile(ctx)
	if genErr == nil {
		ov.Formed = p.Formed
	} else {
		var ge *generator.GenerationError
		if errors.As(genErr, &ge) && ge.Loop != nil {
			ov.Highlight = []knitgraph.LoopID{*ge.Loop}
		}
	}
	fmt.Fprint(s.Out, graph.GenerateMermaid(g, courses, &ov))
	return genErr
}
