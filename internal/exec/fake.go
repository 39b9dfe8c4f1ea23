package exec

import (
	"context"
	"strings"
	"sync"
)

// Call records a single invocation seen by FakeRunner.
type Call struct {
	Name string
	Args []string
	Opts RunOpts
}

// Line returns the invocation as a single space-separated string.
func (c Call) Line() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// FakeResponse is what FakeRunner returns for a matching command line.
type FakeResponse struct {
	Result CmdResult
	Err    error
}

// FakeRunner records calls and replies from a table keyed by command line.
// Unknown commands succeed with exit code 0.
type FakeRunner struct {
	mu        sync.Mutex
	calls     []Call
	responses map[string]FakeResponse
}

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: make(map[string]FakeResponse)}
}

// On registers the response for an exact command line such as "git init".
func (f *FakeRunner) On(line string, resp FakeResponse) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[line] = resp
	return f
}

// Run implements CommandRunner.
func (f *FakeRunner) Run(_ context.Context, name string, args []string, opts RunOpts) (CmdResult, error) {
	call := Call{Name: name, Args: append([]string(nil), args...), Opts: opts}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)

	if resp, ok := f.responses[call.Line()]; ok {
		return resp.Result, resp.Err
	}
	return CmdResult{}, nil
}

// Calls returns every recorded call.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Lines returns every recorded call as a command line.
func (f *FakeRunner) Lines() []string {
	calls := f.Calls()
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		lines = append(lines, c.Line())
	}
	return lines
}
