package secretreplace

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/grezar/secretreplace/provider/awsssm"
	"github.com/grezar/secretreplace/reporting"
	"github.com/grezar/secretreplace/roles"
	"github.com/grezar/secretreplace/secrets"
	"github.com/pkg/errors"
)

var warning = color.New(color.FgYellow)

func init() {
	// The warning is always wrapped in escape codes, also when piped.
	warning.EnableColor()
}

type Options struct {
	Filename string
	// Env fixes the environment of references that do not name one. When
	// empty the environment is taken from the parameter path.
	Env       string
	RolesFile string
	Region    string
	Rate      int
	DryRun    bool
	Report    bool
	Stdout    io.Writer

	// Fetcher replaces the parameter store client stack when set. RolesFile,
	// Region and Rate only configure that stack and are ignored with it.
	Fetcher secrets.Fetcher
}

type Runner struct {
	filename string
	renderer *secrets.Renderer
	report   bool
	stdout   io.Writer
}

func NewRunner(opts Options) (*Runner, error) {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		table := roles.DefaultTable()
		if opts.RolesFile != "" {
			var err error
			table, err = roles.Load(opts.RolesFile)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to load roles from %s", opts.RolesFile)
			}
		}
		resolver := &awsssm.Resolver{
			Table:  table,
			Region: opts.Region,
		}
		fetcher = awsssm.NewFetcher(resolver, opts.Rate)
	}

	envFn := secrets.EnvFromPath
	if opts.Env != "" {
		envFn = secrets.FixedEnv(roles.Environment(opts.Env))
	}

	return &Runner{
		filename: opts.Filename,
		renderer: &secrets.Renderer{
			Fetcher: fetcher,
			Env:     envFn,
			DryRun:  opts.DryRun,
			Out:     stdout,
		},
		report: opts.Report,
		stdout: stdout,
	}, nil
}

// Run renders the template once. A missing template only prints a warning;
// every other failure is returned to the caller.
func (r *Runner) Run(ctx context.Context) error {
	res, err := r.renderer.RenderFile(ctx, r.filename)
	if err != nil {
		var merr *secrets.MissingFileError
		if errors.As(err, &merr) {
			fmt.Fprintln(r.stdout, warning.Sprint(merr.Error()))
			return nil
		}
		return err
	}

	if r.report && len(res.Substitutions) > 0 {
		reporting.Render(r.stdout, res)
	}
	return nil
}
