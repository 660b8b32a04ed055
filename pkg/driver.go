package grc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// DriverError is implemented by every error the driver reports to the user.
type DriverError interface {
	error
	String() string
}

type Driver struct {
	Getwd func() (string, error)

	cfg      *Config
	builder  *Builder
	executor *Executor
	logger   *slog.Logger
}

func NewDriver(cfg *Config, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}

	return &Driver{
		Getwd:    os.Getwd,
		cfg:      cfg,
		builder:  NewBuilder(cfg.Tools),
		executor: NewExecutor(cfg.InstallDir, logger),
		logger:   logger,
	}
}

// SetStreams replaces the standard streams handed to the outer stages.
func (d *Driver) SetStreams(stdin io.Reader, stdout, stderr io.Writer) {
	d.executor.Stdin = stdin
	d.executor.Stdout = stdout
	d.executor.Stderr = stderr
}

func (d *Driver) Run(ctx context.Context, args []string) (int, error) {
	req, err := ParseArgs(args)
	if err != nil {
		return 2, err
	}

	p, err := d.Plan(req)
	if err != nil {
		return exitStatus(err), err
	}

	d.logger.Debug("running pipeline", "mode", p.Mode, "pipeline", p.String())
	return d.executor.Run(ctx, p)
}

// Plan builds the pipeline for req and checks that its inputs exist.
func (d *Driver) Plan(req *Request) (*Pipeline, error) {
	var wd string
	if req.Mode() == ModeBuild {
		var err error
		if wd, err = d.Getwd(); err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
	}

	p, err := d.builder.Build(req, wd)
	if err != nil {
		return nil, err
	}

	if p.Mode != ModeBuild {
		return p, nil
	}

	d.logger.Debug("resolved paths", "input", p.Paths.Input, "base", p.Paths.Base)

	if err := p.Paths.Verify(); err != nil {
		return nil, err
	}

	if err := checkFile(d.runtimePath()); err != nil {
		return nil, err
	}

	return p, nil
}

func (d *Driver) runtimePath() string {
	if filepath.IsAbs(d.cfg.Tools.Runtime) {
		return d.cfg.Tools.Runtime
	}

	return filepath.Join(d.cfg.InstallDir, d.cfg.Tools.Runtime)
}

func exitStatus(err error) int {
	switch err.(type) {
	case *MalformedFlagError, *UnknownFlagError, *MissingInputError:
		return 2
	default:
		return 1
	}
}
