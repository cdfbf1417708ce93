package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/peterh/liner"

	"github.com/diesi/ask/internal/openai"
)

type fakeLines struct {
	lines   []string
	end     error
	history []string
}

func (f *fakeLines) Prompt(string) (string, error) {
	if len(f.lines) == 0 {
		return "", f.end
	}
	l := f.lines[0]
	f.lines = f.lines[1:]
	return l, nil
}

func (f *fakeLines) AppendHistory(item string) { f.history = append(f.history, item) }

type fakeCompleter struct {
	prompts []string
	answer  func(string) (string, error)
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.answer(prompt)
}

func TestSessionSendsEachLineAlone(t *testing.T) {
	lines := &fakeLines{lines: []string{"2+2?", "   ", "capital of France?"}, end: io.EOF}
	c := &fakeCompleter{answer: func(p string) (string, error) {
		if p == "2+2?" {
			return "4", nil
		}
		return "Paris", nil
	}}
	var out, errOut bytes.Buffer
	s := &Session{Client: c, Lines: lines, Out: &out, Err: &errOut}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.prompts) != 2 || c.prompts[0] != "2+2?" || c.prompts[1] != "capital of France?" {
		t.Fatalf("unexpected prompts: %#v", c.prompts)
	}
	if !strings.Contains(out.String(), "4\n") || !strings.Contains(out.String(), "Paris\n") {
		t.Fatalf("answers missing: %q", out.String())
	}
	if len(lines.history) != 2 {
		t.Fatalf("history: %#v", lines.history)
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected error output: %q", errOut.String())
	}
}

func TestSessionReportsErrorsAndContinues(t *testing.T) {
	lines := &fakeLines{lines: []string{"first", "second"}, end: liner.ErrPromptAborted}
	c := &fakeCompleter{answer: func(p string) (string, error) {
		if p == "first" {
			return "", &openai.Error{Kind: openai.KindTimeout}
		}
		return "ok", nil
	}}
	var out, errOut bytes.Buffer
	s := &Session{Client: c, Lines: lines, Out: &out, Err: &errOut}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(errOut.String(), "openai timeout") {
		t.Fatalf("error not reported: %q", errOut.String())
	}
	if !strings.Contains(out.String(), "ok\n") {
		t.Fatalf("second answer missing: %q", out.String())
	}
}

func TestSessionExitCommand(t *testing.T) {
	lines := &fakeLines{lines: []string{"quit", "never sent"}, end: io.EOF}
	c := &fakeCompleter{answer: func(string) (string, error) { return "x", nil }}
	var out bytes.Buffer
	s := &Session{Client: c, Lines: lines, Out: &out, Err: &out}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.prompts) != 0 {
		t.Fatalf("nothing should be sent after quit: %#v", c.prompts)
	}
}

func TestSessionReadError(t *testing.T) {
	lines := &fakeLines{end: errors.New("tty gone")}
	s := &Session{Client: &fakeCompleter{}, Lines: lines, Out: io.Discard, Err: io.Discard}
	if err := s.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "tty gone") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestAskPrintsAnswer(t *testing.T) {
	var out bytes.Buffer
	c := &fakeCompleter{answer: func(string) (string, error) { return "4", nil }}
	// a buffer is not a terminal, so no spinner frames end up in it
	var spin bytes.Buffer
	if err := Ask(context.Background(), c, "2+2?", &out, &spin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "4\n" {
		t.Fatalf("got %q", out.String())
	}
	if spin.Len() != 0 {
		t.Fatalf("spinner drew on a non-terminal: %q", spin.String())
	}
}

func TestAskReturnsError(t *testing.T) {
	var out bytes.Buffer
	c := &fakeCompleter{answer: func(string) (string, error) { return "", &openai.Error{Kind: openai.KindEmpty} }}
	err := Ask(context.Background(), c, "hi", &out, nil)
	if !errors.Is(err, openai.ErrEmptyResult) {
		t.Fatalf("expected empty result error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("nothing should be printed on failure: %q", out.String())
	}
}
