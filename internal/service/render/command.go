package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jefftt/s3edit/internal/logger"
	"github.com/jefftt/s3edit/internal/service/common"
)

var errFormulaRequired = errors.New("formula path or url is required")

// Options are inputs accepted by the render entry point.
type Options struct {
	// Formula is a local YAML path or an http(s) URL.
	Formula string
	// Output is the Ruby file to write. Out is used when empty.
	Output string
	// Out receives the formula when Output is empty.
	Out io.Writer
	// Client downloads remote formulas. A default client is used when nil.
	Client *common.Client
}

// Run renders the formula as a Homebrew Ruby formula.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "render")

	if opts == nil || opts.Formula == "" {
		return errFormulaRequired
	}

	client := opts.Client
	if client == nil {
		client = common.NewClient()
	}

	f, err := common.LoadFormula(ctx, client, opts.Formula)
	if err != nil {
		return fmt.Errorf("load formula: %w", err)
	}

	if err = f.Validate(); err != nil {
		return fmt.Errorf("invalid formula: %w", err)
	}

	if opts.Output == "" {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}

		return f.RenderRuby(out)
	}

	file, err := os.Create(filepath.Clean(opts.Output))
	if err != nil {
		return err
	}

	if err = f.RenderRuby(file); err != nil {
		_ = file.Close()

		return err
	}

	if err = file.Close(); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Formula rendered", "path", opts.Output)

	return nil
}
