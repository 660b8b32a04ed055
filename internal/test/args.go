package test

import (
	"math/rand"
	"strings"
)

const validArgs = "-O0;-O1;-O2;-O3;-Os;-i;-f;main.grc;src/hello.grc;../other/x.grc;/tmp/a.grc;prog"

func GetRandomArgs(size int) []string {
	valid := strings.Split(validArgs, ";")

	var args []string
	for len(args) < size {
		args = append(args, valid[rand.Intn(len(valid))])
	}

	return args
}

// LastWith returns the last argument accepted by keep, or "" when none is.
func LastWith(args []string, keep func(string) bool) string {
	last := ""
	for _, arg := range args {
		if keep(arg) {
			last = arg
		}
	}

	return last
}
