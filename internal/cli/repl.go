package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"

	"github.com/diesi/ask/internal/openai"
)

// Completer turns one prompt into one answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// LineReader is the part of *liner.State the prompt loop needs.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// NewLiner returns a line editor where Ctrl-C aborts the current prompt.
func NewLiner() *liner.State {
	rl := liner.NewLiner()
	rl.SetCtrlCAborts(true)
	return rl
}

// Ask sends prompt and prints the answer to out. While waiting a spinner is
// drawn on spin, if spin is a terminal.
func Ask(ctx context.Context, c Completer, prompt string, out, spin io.Writer) error {
	stop := func() {}
	if spin != nil {
		stop = Spinner(spin, "Waiting for the answer")
	}
	answer, err := c.Complete(ctx, prompt)
	stop()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, answer)
	return err
}

// Session is the interactive loop. Every line is sent as its own prompt; no
// earlier exchange is sent along with it.
type Session struct {
	Client Completer
	Lines  LineReader
	Out    io.Writer
	Err    io.Writer
	Log    logrus.FieldLogger
}

// Run reads prompts until EOF, Ctrl-C, "exit" or "quit". Failed prompts are
// reported and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintf(s.Out, "%sType a question and press Enter. Ctrl-D or \"exit\" quits.%s\n", ColorDim, ColorReset)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(s.Out, ColorGreen)
		line, err := s.Lines.Prompt(IconPrompt + " ")
		fmt.Fprint(s.Out, ColorReset)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(s.Out)
				return nil
			}
			return fmt.Errorf("read prompt: %w", err)
		}
		prompt := strings.TrimSpace(line)
		switch prompt {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		s.Lines.AppendHistory(line)
		if err := Ask(ctx, s.Client, prompt, s.Out, s.Err); err != nil {
			if s.Log != nil {
				s.Log.WithField("kind", openai.KindOf(err)).Debug("prompt failed")
			}
			fmt.Fprintf(s.Err, "%s%s %v%s\n", ColorRed, IconError, err, ColorReset)
		}
	}
}
