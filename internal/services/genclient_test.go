package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeBackend struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeBackend) GenerateText(ctx context.Context, prompt string) (string, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return f.responses[len(f.responses)-1], nil
}

func TestCallJSONRetriesUntilSuccess(t *testing.T) {
	backend := &fakeBackend{
		responses: []string{"", "", `{"ok": true}`},
		errs:      []error{errors.New("boom"), errors.New("boom again"), nil},
	}
	client := newGenClient(backend, 1, 3, time.Millisecond)

	result, err := client.CallJSON(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if backend.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", backend.calls)
	}
	if result["ok"] != true {
		t.Errorf("unexpected result: %v", result)
	}
}

func TestCallJSONPropagatesFinalError(t *testing.T) {
	finalErr := errors.New("still down")
	backend := &fakeBackend{errs: []error{errors.New("down"), finalErr}}
	client := newGenClient(backend, 1, 2, time.Millisecond)

	_, err := client.CallJSON(context.Background(), "prompt")
	if !errors.Is(err, finalErr) {
		t.Fatalf("expected final attempt error, got %v", err)
	}
	if backend.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", backend.calls)
	}
}

func TestCallJSONEmptyResponse(t *testing.T) {
	backend := &fakeBackend{responses: []string{""}}
	client := newGenClient(backend, 1, 2, time.Millisecond)

	_, err := client.CallJSON(context.Background(), "prompt")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestCallJSONBacksOffBetweenAttempts(t *testing.T) {
	backend := &fakeBackend{
		responses: []string{"", "", `{}`},
		errs:      []error{errors.New("a"), errors.New("b"), nil},
	}
	delay := 20 * time.Millisecond
	client := newGenClient(backend, 1, 3, delay)

	start := time.Now()
	if _, err := client.CallJSON(context.Background(), "prompt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// First retry waits delay, second waits 2*delay.
	if elapsed := time.Since(start); elapsed < 3*delay {
		t.Errorf("expected at least %v of backoff, got %v", 3*delay, elapsed)
	}
}

func TestParseModelJSONStripsFences(t *testing.T) {
	raw := "```json\n{\"questions\": []}\n```"
	result, err := parseModelJSON(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result["questions"]; !ok {
		t.Errorf("expected questions key, got %v", result)
	}
}

func TestParseModelJSONRepairsEscapes(t *testing.T) {
	raw := `{"feedback": "See C:\Users\docs for details"}`
	result, err := parseModelJSON(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["feedback"] != `See C:\Users\docs for details` {
		t.Errorf("unexpected feedback: %q", result["feedback"])
	}
}

func TestParseModelJSONInvalid(t *testing.T) {
	_, err := parseModelJSON("not json at all")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Raw != "not json at all" {
		t.Errorf("expected raw output preserved, got %q", parseErr.Raw)
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n{}\n```", "{}"},
		{"```\n{}\n```", "{}"},
		{"{}", "{}"},
		{"  {\"a\": 1}  ", "{\"a\": 1}"},
	}
	for _, tc := range cases {
		if got := stripCodeFences(tc.in); got != tc.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRepairEscapes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`plain text`, `plain text`},
		{`a\n b`, `a\n b`},                 // valid escape kept
		{`a\x b`, `a\\x b`},                // invalid escape doubled
		{`path \`, `path \\`},              // trailing backslash doubled
		{`already \\ doubled`, `already \\ doubled`},
		{`quote \" kept`, `quote \" kept`},
	}
	for _, tc := range cases {
		if got := repairEscapes(tc.in); got != tc.want {
			t.Errorf("repairEscapes(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
