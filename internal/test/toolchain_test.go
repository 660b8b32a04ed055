package test

import (
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelloModule(t *testing.T) {
	mod := HelloModule("hi")

	names := make(map[string]bool)
	for _, f := range mod.Funcs {
		names[f.Name()] = true
	}

	for _, rf := range runtimeFuncs() {
		assert.True(t, names[rf.name], "missing runtime declaration %s", rf.name)
	}

	require.True(t, names["main"])
	assert.Len(t, mod.Funcs, len(runtimeFuncs())+1)

	out := mod.String()
	assert.Contains(t, out, "declare void @writeString(i8*")
	assert.Contains(t, out, `c"hi\00"`)
	assert.Contains(t, out, "define i32 @main()")
}

func TestWriteFakeToolchain(t *testing.T) {
	dir := WriteFakeToolchain(t)

	cmd := exec.Command(dir+"/grc", "-O1")
	cmd.Stdin = strings.NewReader("")
	out, err := cmd.Output()
	require.NoError(t, err)

	assert.Equal(t, HelloModule("hello").String()+"\n", string(out))
	assert.Equal(t, "-O1\n", ReadArgs(t, dir, "grc"))
}
