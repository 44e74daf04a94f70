package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/foxseedlab/kikitori/internal/pipeline"
)

// Display renders session output on a terminal. The partial line is redrawn
// in place and replaced by the final lines once a segment is committed.
type Display struct {
	mu         sync.Mutex
	w          io.Writer
	pair       *pipeline.LanguagePair
	partialLen int
}

func NewDisplay(w io.Writer, pair *pipeline.LanguagePair) *Display {
	return &Display{w: w, pair: pair}
}

func (d *Display) OnPartial(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	line := "Partial: " + text
	n := utf8.RuneCountInString(line)
	pad := ""
	if d.partialLen > n {
		pad = strings.Repeat(" ", d.partialLen-n)
	}
	_, _ = fmt.Fprintf(d.w, "\r%s%s", line, pad)
	d.partialLen = n
}

func (d *Display) OnFinal(pair pipeline.FinalPair) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearPartialLocked()
	if d.pair == nil {
		_, _ = fmt.Fprintf(d.w, "Recognized: %s\n", pair.Original)
		return
	}
	_, _ = fmt.Fprintf(d.w, "Recognized [%s]: %s\n", d.pair.Source, pair.Original)
	_, _ = fmt.Fprintf(d.w, "Translated [%s]: %s\n", d.pair.Target, pair.TranslatedText())
}

func (d *Display) OnError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearPartialLocked()
	_, _ = fmt.Fprintf(d.w, "Warning: %v\n", err)
}

// Println prints a status line without tearing an in-progress partial.
func (d *Display) Println(a ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearPartialLocked()
	_, _ = fmt.Fprintln(d.w, a...)
}

func (d *Display) clearPartialLocked() {
	if d.partialLen == 0 {
		return
	}
	_, _ = fmt.Fprintf(d.w, "\r%s\r", strings.Repeat(" ", d.partialLen))
	d.partialLen = 0
}
