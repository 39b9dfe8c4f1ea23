package tmplctx

import (
	"context"
	"sync"
)

// FakePrompter answers prompts from a table keyed by message and records
// every question asked. Unanswered prompts take their default.
type FakePrompter struct {
	mu      sync.Mutex
	answers map[string]any
	asked   []string
}

// NewFakePrompter creates a FakePrompter with no answers.
func NewFakePrompter() *FakePrompter {
	return &FakePrompter{answers: make(map[string]any)}
}

// Answer registers the answer for a prompt message.
func (f *FakePrompter) Answer(message string, value any) *FakePrompter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers[message] = value
	return f
}

// Asked returns the prompt messages in the order they were asked.
func (f *FakePrompter) Asked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.asked))
	copy(out, f.asked)
	return out
}

func (f *FakePrompter) lookup(message string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, message)
	v, ok := f.answers[message]
	return v, ok
}

func (f *FakePrompter) Input(_ context.Context, message, def string) (string, error) {
	if v, ok := f.lookup(message); ok {
		if err, isErr := v.(error); isErr {
			return "", err
		}
		return v.(string), nil
	}
	return def, nil
}

func (f *FakePrompter) Select(_ context.Context, message string, _ []string, def string) (string, error) {
	if v, ok := f.lookup(message); ok {
		if err, isErr := v.(error); isErr {
			return "", err
		}
		return v.(string), nil
	}
	return def, nil
}

func (f *FakePrompter) Confirm(_ context.Context, message string, def bool) (bool, error) {
	if v, ok := f.lookup(message); ok {
		if err, isErr := v.(error); isErr {
			return false, err
		}
		return v.(bool), nil
	}
	return def, nil
}
