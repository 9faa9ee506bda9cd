package proc

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrependPath(t *testing.T) {
	env := []string{"HOME=/root", "LD_LIBRARY_PATH=/usr/lib"}

	out := PrependPath(env, "LD_LIBRARY_PATH", "/opt/build/src")

	assert.Equal(t, []string{"HOME=/root", "LD_LIBRARY_PATH=/opt/build/src:/usr/lib"}, out)
	assert.Equal(t, "LD_LIBRARY_PATH=/usr/lib", env[1])
}

func TestPrependPathUnset(t *testing.T) {
	out := PrependPath([]string{"HOME=/root", "LD_LIBRARY_PATH="}, "LD_LIBRARY_PATH", "lib")
	assert.Equal(t, []string{"HOME=/root", "LD_LIBRARY_PATH=lib"}, out)
}

func TestExecRunner(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	var out bytes.Buffer
	err = ExecRunner{}.Run(context.Background(), Request{
		Path: sh,
		Args: []string{"-c", "echo ppl $X"},
		Env:  []string{"X=42"},
		Out:  &out,
	}, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "ppl 42\n", out.String())

	err = ExecRunner{}.Run(context.Background(), Request{Path: sh, Args: []string{"-c", "exit 3"}}, slog.Default())
	assert.Error(t, err)
}

func TestTailWriterKeepsLastBytes(t *testing.T) {
	w := newTailWriter(16)

	for i := 0; i < 1000; i++ {
		n, err := w.Write([]byte("iter 0123456789\n"))
		require.NoError(t, err)
		require.Equal(t, 16, n)
	}
	_, _ = w.Write([]byte("done"))

	assert.Equal(t, 16, cap(w.buf))
	assert.Equal(t, int64(16004), w.Total())
	assert.Equal(t, "(truncated)... 0123456789\ndone", w.String())
}

func TestTailWriterLargeWrite(t *testing.T) {
	w := newTailWriter(8)
	_, _ = w.Write([]byte("ab"))
	_, _ = w.Write([]byte(strings.Repeat("x", 100) + "12345678"))

	assert.Equal(t, 8, cap(w.buf))
	assert.Equal(t, "(truncated)...12345678", w.String())

	small := newTailWriter(8)
	_, _ = small.Write([]byte("short"))
	assert.Equal(t, "short", small.String())
}
