package gemini

import "testing"

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                      "{\"a\":1}",
		"```json\n{\"a\":1}\n```":        "{\"a\":1}",
		"```\n{\"a\":1}\n```":            "{\"a\":1}",
		"  ```json\n{\"a\":1}\n```\n  ":  "{\"a\":1}",
	}
	for in, want := range cases {
		if got := stripFences(in); got != want {
			t.Fatalf("stripFences(%q): want %q got %q", in, want, got)
		}
	}
}

func TestExtractTextRejectsEmptyCandidates(t *testing.T) {
	if _, err := extractText([]byte(`{"candidates":[]}`)); err == nil {
		t.Fatalf("empty candidates should error")
	}
	text, err := extractText([]byte(`{"candidates":[{"content":{"parts":[{"text":" hi "}]}}]}`))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "hi" {
		t.Fatalf("want %q got %q", "hi", text)
	}
}

func TestRetryableClassification(t *testing.T) {
	if !isRetryableErr(&httpError{StatusCode: 429}) {
		t.Fatalf("429 should be retryable")
	}
	if !isRetryableErr(&httpError{StatusCode: 503}) {
		t.Fatalf("503 should be retryable")
	}
	if isRetryableErr(&httpError{StatusCode: 400}) {
		t.Fatalf("400 should not be retryable")
	}
}
