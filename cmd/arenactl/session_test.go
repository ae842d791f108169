// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	arena "github.com/wundergraph/go-pool-arena"
)

func runScript(t *testing.T, cfg config, script string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newSession(&out, cfg).Run(strings.NewReader(script))
	return out.String(), err
}

func TestSessionBasicScript(t *testing.T) {
	out, err := runScript(t, config{Check: true}, `
# fill the arena, then drain it
create 100
alloc a 30
alloc b 70
print
alloc c 1
free a
free b
print
destroy
`)
	require.NoError(t, err)
	require.Equal(t, `a = 0
b = 30
active: 0 [30], 30 [70]
available: none
alloc c 1: allocate 1 bytes: arena: no free block large enough
active: none
available: 0 [100]
`, out)
}

func TestSessionResizeRelocatesContent(t *testing.T) {
	out, err := runScript(t, config{Check: true, Zeroing: true}, `
create 40
alloc a 4
alloc b 4
write a abcd
resize a 10
read a
print
`)
	require.NoError(t, err)
	require.Equal(t, `a = 0
b = 4
a = 8
a: "abcd\x00\x00\x00\x00\x00\x00"
active: 4 [4], 8 [10]
available: 0 [4], 18 [22]
`, out)
}

func TestSessionReportsRecoverableFailures(t *testing.T) {
	out, err := runScript(t, config{}, `
create 10
alloc a 5
destroy
free zz
resize zz 3
free a
free a
destroy
`)
	require.NoError(t, err)
	require.Equal(t, `a = 0
destroy: 1 allocations: arena: allocations still active
free zz: arena: nil address
resize zz 3: arena: nil address
free a: arena: nil address
`, out)
}

func TestSessionWriteTruncates(t *testing.T) {
	out, err := runScript(t, config{}, "create 8\nalloc a 3\nwrite a hello\nread a\n")
	require.NoError(t, err)
	require.Equal(t, "a = 0\na: wrote 3 of 5 bytes\na: \"hel\"\n", out)
}

func TestSessionJSONPrint(t *testing.T) {
	out, err := runScript(t, config{JSON: true}, "create 100\nalloc a 30\nprint\n")
	require.NoError(t, err)

	lines := strings.SplitN(out, "\n", 2)
	require.Equal(t, "a = 0", lines[0])
	require.JSONEq(t,
		`{"capacity":100,"inUse":30,"peak":30,"active":[{"start":0,"size":30}],"available":[{"start":30,"size":70}]}`,
		lines[1])
}

func TestSessionRecreateAfterDestroy(t *testing.T) {
	out, err := runScript(t, config{Mmap: true}, "create 64\ndestroy\ncreate 32\nalloc a 32\nprint\n")
	require.NoError(t, err)
	require.Equal(t, "a = 0\nactive: 0 [32]\navailable: none\n", out)
}

func TestSessionErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"no arena", "alloc a 1\n", "line 1: alloc: no arena"},
		{"double create", "create 10\ncreate 10\n", "line 2: create: arena already exists"},
		{"zero size", "create 10\nalloc a 0\n", "line 2: alloc: 0 is not positive"},
		{"bad number", "create ten\n", "line 1: create: invalid number"},
		{"unknown", "create 10\nfrobnicate\n", "line 2: unknown command"},
		{"usage", "create 10\nresize a\n", "line 2: usage: resize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runScript(t, config{}, tt.script)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteStatsGroupsDigits(t *testing.T) {
	a := arena.NewFixedArena(1 << 20)
	_, err := a.Allocate(1500)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writeStats(&out, a.Stats()))
	require.Contains(t, out.String(), "1,048,576")
	require.Contains(t, out.String(), "1,500")
	require.Contains(t, out.String(), "fragmentation: 0.00")
}
