package keywords

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	fhttp "github.com/bogdanfinn/fhttp"
)

type fakeDoer struct {
	status int
	body   string
	err    error
	req    *fhttp.Request
	sent   []byte
}

func (f *fakeDoer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	f.req = req
	if req.Body != nil {
		f.sent, _ = io.ReadAll(req.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &fhttp.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func TestGeminiGenerate(t *testing.T) {
	doer := &fakeDoer{
		status: 200,
		body:   `{"candidates":[{"content":{"parts":[{"text":"tech london, technology london\n"}]}}]}`,
	}
	g := NewGemini(doer, "secret-key", "").WithEndpoint("https://api.test/v1beta/models/")

	got, err := g.Generate(context.Background(), "prompt text")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "tech london, technology london" {
		t.Fatalf("Generate() = %q", got)
	}

	if doer.req.Method != fhttp.MethodPost {
		t.Fatalf("method = %s", doer.req.Method)
	}
	if doer.req.URL.String() != "https://api.test/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Fatalf("url = %s", doer.req.URL.String())
	}
	if doer.req.Header.Get("x-goog-api-key") != "secret-key" {
		t.Fatalf("api key header missing")
	}
	if strings.Contains(doer.req.URL.String(), "secret-key") {
		t.Fatalf("api key leaked into url")
	}

	var sent generateRequest
	if err := json.Unmarshal(doer.sent, &sent); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if len(sent.Contents) != 1 || sent.Contents[0].Parts[0].Text != "prompt text" {
		t.Fatalf("unexpected request body: %s", doer.sent)
	}
}

func TestGeminiWithoutKeyIsUnavailable(t *testing.T) {
	doer := &fakeDoer{status: 200}
	_, err := NewGemini(doer, " ", "m").Generate(context.Background(), "x")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("Generate() error = %v, want ErrServiceUnavailable", err)
	}
	if doer.req != nil {
		t.Fatalf("no request expected without key")
	}
}

func TestGeminiErrors(t *testing.T) {
	cases := []struct {
		name string
		doer *fakeDoer
		want string
	}{
		{"transport", &fakeDoer{err: errors.New("dial tcp: refused")}, "refused"},
		{"api error", &fakeDoer{status: 400, body: `{"error":{"code":400,"message":"API key not valid"}}`}, "API key not valid"},
		{"html error", &fakeDoer{status: 503, body: `<html>down</html>`}, "http 503"},
		{"bad json", &fakeDoer{status: 200, body: `{`}, "decode"},
	}
	for _, tc := range cases {
		_, err := NewGemini(tc.doer, "k", "m").Generate(context.Background(), "x")
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: Generate() error = %v, want %q", tc.name, err, tc.want)
		}
	}
}

func TestGeminiEmptyCandidates(t *testing.T) {
	doer := &fakeDoer{status: 200, body: `{"candidates":[]}`}
	got, err := NewGemini(doer, "k", "m").Generate(context.Background(), "x")
	if err != nil || got != "" {
		t.Fatalf("Generate() = %q, %v", got, err)
	}
}
