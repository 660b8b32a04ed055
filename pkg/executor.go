package grc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// Exit statuses reported for stages that never ran, matching sh.
const (
	ExitRedirectFailed = 1
	ExitNotExecutable  = 126
	ExitNotFound       = 127
)

type Executor struct {
	InstallDir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	logger *slog.Logger
}

func NewExecutor(installDir string, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		InstallDir: installDir,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		logger:     logger,
	}
}

// Run executes every job of the pipeline in order, even after failures, and
// returns the status of the last stage. A non-zero status comes with a
// *SubprocessError describing that stage.
func (e *Executor) Run(ctx context.Context, p *Pipeline) (int, error) {
	last := p.Last()
	if last == nil {
		return 0, nil
	}

	var code int
	for _, job := range p.Jobs {
		var err error
		code, err = e.runJob(ctx, job)
		if err != nil {
			return 1, err
		}
	}

	if code != 0 {
		return code, &SubprocessError{Stage: *last, Code: code}
	}

	return 0, nil
}

type process struct {
	stage  Stage
	cmd    *exec.Cmd
	code   int
	closer []io.Closer
}

func (e *Executor) runJob(ctx context.Context, job Job) (int, error) {
	if len(job) == 0 {
		return 0, nil
	}

	procs := make([]*process, len(job))
	for i, stage := range job {
		procs[i] = &process{stage: stage, cmd: e.command(ctx, stage)}
	}

	// Parent copies of pipe ends are closed once every stage has started so
	// readers see EOF when their writer exits.
	var pipes []io.Closer
	defer func() {
		for _, c := range pipes {
			_ = c.Close()
		}
	}()

	for i := 0; i < len(procs)-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			return 0, fmt.Errorf("creating pipe: %w", err)
		}

		pipes = append(pipes, r, w)
		procs[i].cmd.Stdout = w
		procs[i+1].cmd.Stdin = r
	}

	procs[0].cmd.Stdin = e.Stdin
	procs[len(procs)-1].cmd.Stdout = e.Stdout

	for _, p := range procs {
		e.start(p)
	}

	for _, c := range pipes {
		_ = c.Close()
	}
	pipes = nil

	for _, p := range procs {
		e.wait(p)
	}

	return procs[len(procs)-1].code, nil
}

func (e *Executor) command(ctx context.Context, s Stage) *exec.Cmd {
	program := s.Program
	if s.Local && !filepath.IsAbs(program) {
		program = filepath.Join(e.InstallDir, program)
	}

	cmd := exec.CommandContext(ctx, program, s.Args...)
	cmd.Dir = e.InstallDir
	cmd.Stderr = e.Stderr

	return cmd
}

func (e *Executor) start(p *process) {
	if err := e.redirect(p); err != nil {
		e.fail(p, ExitRedirectFailed, err)
		return
	}

	e.logger.Debug("starting stage", "stage", p.stage.String())

	if err := p.cmd.Start(); err != nil {
		code := ExitNotExecutable
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			code = ExitNotFound
		}

		e.fail(p, code, err)
	}
}

func (e *Executor) redirect(p *process) error {
	if p.stage.Stdin != "" {
		f, err := os.Open(e.resolve(p.stage.Stdin))
		if err != nil {
			return err
		}

		p.closer = append(p.closer, f)
		p.cmd.Stdin = f
	}

	if p.stage.Stdout != "" {
		f, err := os.OpenFile(e.resolve(p.stage.Stdout), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
		if err != nil {
			return err
		}

		p.closer = append(p.closer, f)
		p.cmd.Stdout = f
	}

	return nil
}

// Redirect targets are relative to the directory the stages run in.
func (e *Executor) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(e.InstallDir, path)
}

func (e *Executor) fail(p *process, code int, err error) {
	p.cmd = nil
	p.code = code

	serr := &SubprocessError{Stage: p.stage, Code: code, Err: err}
	fmt.Fprintln(e.Stderr, "grc:", serr)
	e.release(p)
}

func (e *Executor) wait(p *process) {
	if p.cmd == nil {
		return
	}
	defer e.release(p)

	err := p.cmd.Wait()
	p.code = exitCode(p.cmd.ProcessState, err)

	e.logger.Debug("stage finished", "program", p.stage.Program, "code", p.code)
}

func (e *Executor) release(p *process) {
	for _, c := range p.closer {
		_ = c.Close()
	}

	p.closer = nil
}

func exitCode(state *os.ProcessState, err error) int {
	if state == nil {
		if err != nil {
			return 1
		}

		return 0
	}

	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}

	return state.ExitCode()
}

type SubprocessError struct {
	Stage Stage
	Code  int
	Err   error // Set when the stage could not be started
}

func (e SubprocessError) String() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Stage.Program, e.Err)
	}

	return fmt.Sprintf("%s exited with status %d", e.Stage.Program, e.Code)
}

func (e *SubprocessError) Error() string {
	return e.String()
}

func (e *SubprocessError) Unwrap() error {
	return e.Err
}
