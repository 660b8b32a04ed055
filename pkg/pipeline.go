package grc

import (
	"fmt"
	"path/filepath"
	"strings"
)

type Mode uint8

const (
	ModeBuild Mode = iota
	ModeInteractive
	ModeAssembly
)

func (m Mode) String() string {
	switch m {
	case ModeBuild:
		return "build"
	case ModeInteractive:
		return "interactive"
	case ModeAssembly:
		return "assembly"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Stage is a single external invocation. Empty Stdin or Stdout means the
// stream is inherited from the previous or next stage, or from the driver
// at the ends of a job.
type Stage struct {
	Program string
	Args    []string
	Local   bool // Relative Program lives in the install directory
	Stdin   string
	Stdout  string
}

// Job is a list of stages connected by pipes.
type Job []Stage

type Pipeline struct {
	Mode  Mode
	Paths *Paths
	Jobs  []Job
}

// Last returns the stage whose status becomes the status of the pipeline.
func (p *Pipeline) Last() *Stage {
	if len(p.Jobs) == 0 {
		return nil
	}

	job := p.Jobs[len(p.Jobs)-1]
	if len(job) == 0 {
		return nil
	}

	return &job[len(job)-1]
}

func (p *Pipeline) String() string {
	jobs := make([]string, 0, len(p.Jobs))
	for _, job := range p.Jobs {
		stages := make([]string, 0, len(job))
		for _, s := range job {
			stages = append(stages, s.String())
		}

		jobs = append(jobs, strings.Join(stages, " | "))
	}

	return strings.Join(jobs, "; ")
}

func (s Stage) String() string {
	var b strings.Builder
	if s.Local && !filepath.IsAbs(s.Program) {
		b.WriteString("./")
	}
	b.WriteString(shellQuote(s.Program))

	for _, arg := range s.Args {
		b.WriteByte(' ')
		b.WriteString(shellQuote(arg))
	}

	if s.Stdin != "" {
		b.WriteString(" < ")
		b.WriteString(shellQuote(s.Stdin))
	}

	if s.Stdout != "" {
		b.WriteString(" > ")
		b.WriteString(shellQuote(s.Stdout))
	}

	return b.String()
}

const shellSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./=+,:@%"

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}

	if strings.Trim(s, shellSafe) == "" {
		return s
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

type Toolchain struct {
	FrontEnd string
	Compiler string
	CC       string
	Runtime  string
}

func DefaultToolchain() Toolchain {
	return Toolchain{
		FrontEnd: "grc",
		Compiler: "llc",
		CC:       "clang",
		Runtime:  "libgrc/libgrc.a",
	}
}

type Builder struct {
	tools Toolchain
}

func NewBuilder(tools Toolchain) *Builder {
	return &Builder{tools: tools}
}

// Mode reports the mode a request selects. Only ModeBuild looks at the
// working directory.
func (r *Request) Mode() Mode {
	switch {
	case r.Flags.Has(FlagInteractive):
		return ModeInteractive
	case r.Flags.Has(FlagAssembly):
		return ModeAssembly
	default:
		return ModeBuild
	}
}

func (b *Builder) Build(req *Request, wd string) (*Pipeline, error) {
	switch req.Mode() {
	case ModeInteractive:
		return b.interactive(req), nil
	case ModeAssembly:
		return b.assembly(req), nil
	default:
		return b.build(req, wd)
	}
}

func (b *Builder) interactive(req *Request) *Pipeline {
	return &Pipeline{
		Mode: ModeInteractive,
		Jobs: []Job{{b.frontEnd(req)}},
	}
}

func (b *Builder) assembly(req *Request) *Pipeline {
	return &Pipeline{
		Mode: ModeAssembly,
		Jobs: []Job{{
			b.frontEnd(req),
			{Program: b.tools.Compiler},
		}},
	}
}

func (b *Builder) build(req *Request, wd string) (*Pipeline, error) {
	if !req.HasInput() {
		return nil, &MissingInputError{}
	}

	paths, err := ResolvePaths(req.Input, wd)
	if err != nil {
		return nil, err
	}

	frontEnd := b.frontEnd(req)
	frontEnd.Stdin = paths.Input
	frontEnd.Stdout = paths.IR()

	return &Pipeline{
		Mode:  ModeBuild,
		Paths: paths,
		Jobs: []Job{
			{frontEnd},
			{{
				Program: b.tools.CC,
				Args:    []string{"-S", paths.IR(), "-o", paths.Assembly()},
			}},
			{{
				Program: b.tools.CC,
				Args:    []string{"-Wall", "-o", paths.Executable(), paths.Assembly(), b.tools.Runtime},
			}},
		},
	}, nil
}

func (b *Builder) frontEnd(req *Request) Stage {
	s := Stage{
		Program: b.tools.FrontEnd,
		Local:   true,
	}

	if opt := req.Flags.Get(FlagOptimization); opt != "" {
		s.Args = []string{opt}
	}

	return s
}

type MissingInputError struct{}

func (e MissingInputError) String() string {
	return "no input file"
}

func (e *MissingInputError) Error() string {
	return e.String()
}
