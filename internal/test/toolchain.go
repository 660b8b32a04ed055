package test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

type runtimeFunc struct {
	name   string
	ret    types.Type
	params []*ir.Param
}

// Runtime library ABI the front-end links against.
func runtimeFuncs() []runtimeFunc {
	str := types.I8Ptr

	return []runtimeFunc{
		{"writeInteger", types.Void, []*ir.Param{ir.NewParam("n", types.I32)}},
		{"writeChar", types.Void, []*ir.Param{ir.NewParam("c", types.I8)}},
		{"writeString", types.Void, []*ir.Param{ir.NewParam("s", str)}},
		{"readInteger", types.I32, nil},
		{"readChar", types.I8, nil},
		{"readString", types.Void, []*ir.Param{ir.NewParam("n", types.I32), ir.NewParam("s", str)}},
		{"ascii", types.I32, []*ir.Param{ir.NewParam("c", types.I8)}},
		{"chr", types.I8, []*ir.Param{ir.NewParam("n", types.I32)}},
		{"strlen", types.I32, []*ir.Param{ir.NewParam("s", str)}},
		{"strcmp", types.I32, []*ir.Param{ir.NewParam("s1", str), ir.NewParam("s2", str)}},
		{"strcpy", types.Void, []*ir.Param{ir.NewParam("trg", str), ir.NewParam("src", str)}},
		{"strcat", types.Void, []*ir.Param{ir.NewParam("trg", str), ir.NewParam("src", str)}},
	}
}

// HelloModule returns the IR a front-end would emit for a program that
// prints msg through the runtime library.
func HelloModule(msg string) *ir.Module {
	mod := ir.NewModule()

	runtime := make(map[string]*ir.Func)
	for _, rf := range runtimeFuncs() {
		runtime[rf.name] = mod.NewFunc(rf.name, rf.ret, rf.params...)
	}

	data := constant.NewCharArrayFromString(msg + "\x00")
	glob := mod.NewGlobalDef(".str", data)

	zero := constant.NewInt(types.I32, 0)
	addr := constant.NewGetElementPtr(data.Typ, glob, zero, zero)

	main := mod.NewFunc("main", types.I32)
	b := main.NewBlock("")
	b.NewCall(runtime["writeString"], addr)
	b.NewRet(zero)

	return mod
}

// WriteTool installs an executable shell script called name in dir.
func WriteTool(t testing.TB, dir, name, script string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}

	return path
}

// WriteFakeToolchain installs a front-end, llc, clang and the runtime
// archive in a fresh directory and returns it. Every tool appends its
// arguments to <tool>.args in that directory.
func WriteFakeToolchain(t testing.TB) string {
	t.Helper()

	dir := t.TempDir()
	log := func(name string) string {
		return `echo "$@" >> '` + filepath.Join(dir, name+".args") + "'\n"
	}

	WriteTool(t, dir, "grc", log("grc")+
		"cat > /dev/null\n"+
		"cat <<'EOF'\n"+HelloModule("hello").String()+"\nEOF\n")

	WriteTool(t, dir, "bin/llc", log("llc")+
		"echo '\t.text'\n"+
		"cat\n")

	WriteTool(t, dir, "bin/clang", log("clang")+`
if [ "$1" = "-S" ]; then
	cp "$2" "$4"
else
	printf '#!/bin/sh\n' > "$3"
	chmod +x "$3"
fi
`)

	WriteTool(t, dir, "libgrc/libgrc.a", "")

	return dir
}

// ReadArgs returns what the named fake tool logged, one line per call.
func ReadArgs(t testing.TB, dir, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, name+".args"))
	if err != nil {
		t.Fatal(err)
	}

	return string(data)
}
