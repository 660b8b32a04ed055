package grc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Paths locates the input of a full build and the artifacts it produces.
// Artifacts always live in the caller's working directory, never next to
// the input.
type Paths struct {
	Input string
	Base  string
}

func ResolvePaths(input, wd string) (*Paths, error) {
	if !filepath.IsAbs(wd) {
		return nil, &PathResolutionError{Path: wd, Reason: "working directory is not absolute"}
	}

	name := filepath.Base(input)
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}

	if name == "" || name == string(filepath.Separator) {
		return nil, &PathResolutionError{Path: input, Reason: "cannot derive an output name"}
	}

	if !filepath.IsAbs(input) {
		input = filepath.Join(wd, input)
	}

	return &Paths{
		Input: filepath.Clean(input),
		Base:  filepath.Join(wd, name),
	}, nil
}

func (p *Paths) IR() string {
	return p.Base + ".ll"
}

func (p *Paths) Assembly() string {
	return p.Base + ".s"
}

func (p *Paths) Executable() string {
	return p.Base
}

func (p *Paths) Verify() error {
	return checkFile(p.Input)
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &PathResolutionError{Path: path, Reason: "no such file"}
		}

		return &PathResolutionError{Path: path, Reason: err.Error()}
	}

	if info.IsDir() {
		return &PathResolutionError{Path: path, Reason: "is a directory"}
	}

	return nil
}

type PathResolutionError struct {
	Path   string
	Reason string
}

func (e PathResolutionError) String() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *PathResolutionError) Error() string {
	return e.String()
}
