package cli

import (
	"fmt"
	"io"
	"time"
)

// Spinner animates msg on w until the returned stop function is called, then
// clears the line. Nothing is drawn when w is not a terminal.
func Spinner(w io.Writer, msg string) func() {
	if !IsTerminal(w) {
		return func() {}
	}
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(90 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(w, "\r%s%s %s%s", ColorDim, frames[i%len(frames)], msg, ColorReset)
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()
	return func() {
		close(done)
		<-exited
		fmt.Fprint(w, "\r\033[K")
	}
}
