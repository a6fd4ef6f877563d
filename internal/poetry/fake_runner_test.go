package poetry

import (
	"context"
	"fmt"
	"strings"
)

// fakeRunner returns canned output keyed by the joined argument vector.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: map[string]string{},
		errs:    map[string]error{},
	}
}

func (f *fakeRunner) on(output string, args ...string) *fakeRunner {
	f.outputs[strings.Join(args, " ")] = output
	return f
}

func (f *fakeRunner) fail(err error, args ...string) *fakeRunner {
	f.errs[strings.Join(args, " ")] = err
	return f
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, name+" "+key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if out, ok := f.outputs[key]; ok {
		return []byte(out), nil
	}
	return nil, fmt.Errorf("unexpected command: %s %s", name, key)
}
