package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/knitout/internal/presentation/tui"
	"github.com/aretw0/knitout/internal/service"
	"github.com/aretw0/knitout/pkg/pattern"
)

// CompileOptions control where a program is read from and written to.
type CompileOptions struct {
	// Path is the pattern file. "-" reads the document from In.
	Path string
	// Format is the encoding of a document read from In.
	Format string
	// Output is the knitout file. Empty writes to Out.
	Output string
	// Report prints a summary to Err.
	Report bool
}

// ReadDocument loads the pattern named by opts.
func ReadDocument(opts CompileOptions, in io.Reader) (pattern.Document, error) {
	if opts.Path != "-" {
		return pattern.Load(opts.Path)
	}
	format, err := pattern.ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return pattern.Parse(data, format)
}

// RunCompile compiles one pattern file and writes the program.
func RunCompile(ctx context.Context, b *Backend, opts CompileOptions, s Streams) (*service.Result, error) {
	doc, err := ReadDocument(opts, s.In)
	if err != nil {
		return nil, err
	}
	res, err := b.Compiler.CompilePattern(ctx, doc)
	if err != nil {
		return nil, err
	}
	return res, writeResult(res, opts, s)
}

// RunSwatch compiles a built-in swatch. params holds raw flag values and
// is parsed against the swatch's schema.
func RunSwatch(ctx context.Context, b *Backend, name string, params map[string]string, opts CompileOptions, s Streams) (*service.Result, error) {
	sw, err := b.Compiler.Registry().Lookup(name)
	if err != nil {
		return nil, err
	}
	values, err := sw.Params.Parse(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrInvalidInput, err)
	}
	res, err := b.Compiler.CompileSwatch(ctx, name, values)
	if err != nil {
		return nil, err
	}
	return res, writeResult(res, opts, s)
}

func writeResult(res *service.Result, opts CompileOptions, s Streams) error {
	if opts.Output != "" {
		if err := res.Program.WriteFile(opts.Output); err != nil {
			return err
		}
	} else if _, err := res.Program.WriteTo(s.Out); err != nil {
		return err
	}

	if opts.Report {
		fmt.Fprint(s.Err, renderMarkdown(s.Err, tui.Report(res.Artifact.Name, res.Program)))
		if res.Cached {
			printSystemMessage(s.Err, "Served from cache as '%s'.", res.Artifact.ID)
		}
	}
	if opts.Output != "" {
		printSystemMessage(s.Err, "Wrote %s (%d instructions).", opts.Output, res.Artifact.Stats.Instructions)
	}
	return nil
}

// RunSwatchList prints the registered swatches and their parameters.
func RunSwatchList(b *Backend, s Streams) {
	for _, sw := range b.Compiler.Registry().List() {
		fmt.Fprintf(s.Out, "%-16s %s\n", sw.Name, sw.Description)
		for _, name := range sw.Params.Names() {
			p := sw.Params[name]
			fmt.Fprintf(s.Out, "    %-14s %-10s default %v", name, p.Type.Name(), p.Default)
			if p.Doc != "" {
				fmt.Fprintf(s.Out, "  %s", p.Doc)
			}
			fmt.Fprintln(s.Out)
		}
	}
}
