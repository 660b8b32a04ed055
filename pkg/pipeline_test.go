package grc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	cases := []struct {
		name   string
		args   []string
		wd     string
		expect *Pipeline
	}{
		{
			"full build",
			[]string{"-O2", "/tmp/a.src"},
			"/work",
			&Pipeline{
				Mode:  ModeBuild,
				Paths: &Paths{Input: "/tmp/a.src", Base: "/work/a"},
				Jobs: []Job{
					{{Program: "grc", Args: []string{"-O2"}, Local: true, Stdin: "/tmp/a.src", Stdout: "/work/a.ll"}},
					{{Program: "clang", Args: []string{"-S", "/work/a.ll", "-o", "/work/a.s"}}},
					{{Program: "clang", Args: []string{"-Wall", "-o", "/work/a", "/work/a.s", "libgrc/libgrc.a"}}},
				},
			},
		},
		{
			"full build without optimization",
			[]string{"../other/x.src"},
			"/home/u/proj",
			&Pipeline{
				Mode:  ModeBuild,
				Paths: &Paths{Input: "/home/u/other/x.src", Base: "/home/u/proj/x"},
				Jobs: []Job{
					{{Program: "grc", Local: true, Stdin: "/home/u/other/x.src", Stdout: "/home/u/proj/x.ll"}},
					{{Program: "clang", Args: []string{"-S", "/home/u/proj/x.ll", "-o", "/home/u/proj/x.s"}}},
					{{Program: "clang", Args: []string{"-Wall", "-o", "/home/u/proj/x", "/home/u/proj/x.s", "libgrc/libgrc.a"}}},
				},
			},
		},
		{
			"interactive",
			[]string{"-O2", "-i"},
			"/work",
			&Pipeline{
				Mode: ModeInteractive,
				Jobs: []Job{
					{{Program: "grc", Args: []string{"-O2"}, Local: true}},
				},
			},
		},
		{
			"interactive ignores input",
			[]string{"-i", "-f", "ignored.grc"},
			"/work",
			&Pipeline{
				Mode: ModeInteractive,
				Jobs: []Job{
					{{Program: "grc", Local: true}},
				},
			},
		},
		{
			"assembly",
			[]string{"-f", "-O1"},
			"/work",
			&Pipeline{
				Mode: ModeAssembly,
				Jobs: []Job{
					{
						{Program: "grc", Args: []string{"-O1"}, Local: true},
						{Program: "llc"},
					},
				},
			},
		},
	}

	b := NewBuilder(DefaultToolchain())
	for _, c := range cases {
		req, err := ParseArgs(c.args)
		require.NoError(t, err, c.name)

		p, err := b.Build(req, c.wd)
		require.NoError(t, err, c.name)

		if diff := cmp.Diff(c.expect, p, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%s: pipeline mismatch (-want +got):\n%s", c.name, diff)
		}
	}
}

func TestBuilderMissingInput(t *testing.T) {
	b := NewBuilder(DefaultToolchain())

	for _, args := range [][]string{nil, {"-O2"}, {"-O1", "-O3"}} {
		req, err := ParseArgs(args)
		require.NoError(t, err)

		p, err := b.Build(req, "/work")
		assert.IsType(t, &MissingInputError{}, err, "args: %q", args)
		assert.Nil(t, p)
	}
}

func TestBuilderToolchain(t *testing.T) {
	b := NewBuilder(Toolchain{
		FrontEnd: "bin/grc",
		Compiler: "/opt/llvm/bin/llc",
		CC:       "cc",
		Runtime:  "/usr/lib/libgrc.a",
	})

	p, err := b.Build(&Request{Input: "a.grc"}, "/w")
	require.NoError(t, err)
	assert.Equal(t, "bin/grc", p.Jobs[0][0].Program)
	assert.Equal(t, "cc", p.Last().Program)
	assert.Equal(t, "/usr/lib/libgrc.a", p.Last().Args[4])

	req, err := ParseArgs([]string{"-f"})
	require.NoError(t, err)

	p, err = b.Build(req, "/w")
	require.NoError(t, err)
	assert.Equal(t, "/opt/llvm/bin/llc", p.Last().Program)
}

func TestPipelineString(t *testing.T) {
	b := NewBuilder(DefaultToolchain())

	req, err := ParseArgs([]string{"-O2", "my prog.grc"})
	require.NoError(t, err)

	p, err := b.Build(req, "/work")
	require.NoError(t, err)

	assert.Equal(t,
		"./grc -O2 < '/work/my prog.grc' > '/work/my prog.ll'; "+
			"clang -S '/work/my prog.ll' -o '/work/my prog.s'; "+
			"clang -Wall -o '/work/my prog' '/work/my prog.s' libgrc/libgrc.a",
		p.String())

	req, err = ParseArgs([]string{"-f"})
	require.NoError(t, err)

	p, err = b.Build(req, "/work")
	require.NoError(t, err)
	assert.Equal(t, "./grc | llc", p.String())
}

func TestStageStringLocal(t *testing.T) {
	assert.Equal(t, "./grc -O2", Stage{Program: "grc", Args: []string{"-O2"}, Local: true}.String())
	assert.Equal(t, "/opt/grc/bin/grc -O2", Stage{Program: "/opt/grc/bin/grc", Args: []string{"-O2"}, Local: true}.String())
	assert.Equal(t, "llc", Stage{Program: "llc"}.String())
}

func TestRequestMode(t *testing.T) {
	cases := []struct {
		args   []string
		expect Mode
	}{
		{[]string{"a.grc"}, ModeBuild},
		{[]string{"-O2"}, ModeBuild},
		{[]string{"-i"}, ModeInteractive},
		{[]string{"-f", "-i"}, ModeInteractive},
		{[]string{"-f", "x.ll"}, ModeAssembly},
	}

	for _, c := range cases {
		req, err := ParseArgs(c.args)
		require.NoError(t, err)
		assert.Equal(t, c.expect, req.Mode(), "args: %q", c.args)
	}
}

func TestShellQuote(t *testing.T) {
	cases := []struct {
		in     string
		expect string
	}{
		{"", "''"},
		{"/tmp/a.src", "/tmp/a.src"},
		{"a b", "'a b'"},
		{"it's", `'it'\''s'`},
		{"$(rm -rf /)", "'$(rm -rf /)'"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expect, shellQuote(c.in))
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "build", ModeBuild.String())
	assert.Equal(t, "interactive", ModeInteractive.String())
	assert.Equal(t, "assembly", ModeAssembly.String())
	assert.Equal(t, "Mode(9)", Mode(9).String())
}

func TestPipelineLast(t *testing.T) {
	assert.Nil(t, (&Pipeline{}).Last())
	assert.Nil(t, (&Pipeline{Jobs: []Job{{}}}).Last())
}
