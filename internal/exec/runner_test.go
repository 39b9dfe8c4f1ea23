package exec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealRunner_ExitCode(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		expectCode int
	}{
		{"exit 0", []string{"-c", "exit 0"}, 0},
		{"exit 1", []string{"-c", "exit 1"}, 1},
		{"exit 42", []string{"-c", "exit 42"}, 42},
	}

	r := NewRealRunner(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := r.Run(context.Background(), "sh", tt.args, RunOpts{})
			require.NoError(t, err)
			assert.Equal(t, tt.expectCode, result.ExitCode)
		})
	}
}

func TestRealRunner_CapturesOutput(t *testing.T) {
	r := NewRealRunner(nil)
	result, err := r.Run(context.Background(), "sh", []string{"-c", "echo out; echo err >&2"}, RunOpts{})
	require.NoError(t, err)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
}

func TestRealRunner_DirAndEnv(t *testing.T) {
	dir := t.TempDir()
	r := NewRealRunner(nil)
	result, err := r.Run(context.Background(), "sh", []string{"-c", "pwd; echo $SCAFFOLD_TEST"}, RunOpts{
		Dir: dir,
		Env: map[string]string{"SCAFFOLD_TEST": "yes"},
	})
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "yes")
}

func TestRealRunner_BinaryNotFound(t *testing.T) {
	r := NewRealRunner(nil)
	_, err := r.Run(context.Background(), "this_program_does_not_exist", nil, RunOpts{})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestFakeRunner_RecordsAndReplies(t *testing.T) {
	f := NewFakeRunner().
		On("uv sync", FakeResponse{Result: CmdResult{ExitCode: 2, Stderr: "no network"}}).
		On("direnv", FakeResponse{Err: errors.New("not found")})

	res, err := f.Run(context.Background(), "uv", []string{"sync"}, RunOpts{Dir: "/tmp/p"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ExitCode)

	_, err = f.Run(context.Background(), "direnv", nil, RunOpts{})
	assert.Error(t, err)

	res, err = f.Run(context.Background(), "git", []string{"init"}, RunOpts{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)

	assert.Equal(t, []string{"uv sync", "direnv", "git init"}, f.Lines())
	assert.Equal(t, "/tmp/p", f.Calls()[0].Opts.Dir)
}
