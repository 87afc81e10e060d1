package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockResponse is one scripted reply for a MockCaller.
type MockResponse struct {
	Text string
	Err  error
}

// MockCall records one invocation of MockCaller.Call.
type MockCall struct {
	Prompt string
	Model  string
}

// MockCaller is a scriptable Caller for tests. Responses are queued per
// model and consumed in order; when a model's queue is empty the Default
// response is used.
type MockCaller struct {
	// CallerName is returned by Name. Defaults to "mock".
	CallerName string

	// Responses queues scripted replies per model.
	Responses map[string][]MockResponse

	// Default is returned when a model has no queued response.
	Default MockResponse

	mu    sync.Mutex
	calls []MockCall
}

// Name implements Caller.
func (m *MockCaller) Name() string {
	if m.CallerName == "" {
		return "mock"
	}
	return m.CallerName
}

// Call implements Caller.
func (m *MockCaller) Call(_ context.Context, prompt, model string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Prompt: prompt, Model: model})

	if queue := m.Responses[model]; len(queue) > 0 {
		resp := queue[0]
		m.Responses[model] = queue[1:]
		return resp.Text, resp.Err
	}
	return m.Default.Text, m.Default.Err
}

// Calls returns a copy of the recorded invocations.
func (m *MockCaller) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]MockCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns the number of recorded invocations.
func (m *MockCaller) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// ScriptedResult builds the JSON completion a well-behaved model would
// return for the given code meanings. Useful for wiring MockResponse
// payloads without hand-writing JSON in every test.
func ScriptedResult(entries map[string][]string) string {
	out := "{"
	first := true
	for code, meanings := range entries {
		if !first {
			out += ","
		}
		first = false

		word := "null"
		abbrs := ""
		if len(meanings) > 0 {
			word = fmt.Sprintf("%q", meanings[0])
			for i, m := range meanings[1:] {
				if i > 0 {
					abbrs += ","
				}
				abbrs += fmt.Sprintf("%q", "test: "+m)
			}
		}
		out += fmt.Sprintf("%q:{\"word\":%s,\"abbreviations\":[%s],\"notes\":null}", code, word, abbrs)
	}
	return out + "}"
}
