package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

// hashStage is the pipeline stage whose units are bytes.
const hashStage = "hash"

// progressPrinter redraws one status line per stage on a terminal and
// prints nothing otherwise.
type progressPrinter struct {
	w       io.Writer
	enabled bool

	mu    sync.Mutex
	stage string
	total int64
	done  int64
	drawn time.Time
}

func newProgressPrinter(f *os.File) *progressPrinter {
	return &progressPrinter{w: f, enabled: term.IsTerminal(int(f.Fd()))}
}

func (p *progressPrinter) Stage(name string, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endLine()
	p.stage, p.total, p.done = name, total, 0
	p.draw()
}

func (p *progressPrinter) Add(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done += n
	if time.Since(p.drawn) >= 100*time.Millisecond {
		p.draw()
	}
}

func (p *progressPrinter) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endLine()
	p.stage = ""
}

// endLine redraws the current stage with its final count and moves on.
func (p *progressPrinter) endLine() {
	if p.stage == "" || !p.enabled {
		return
	}
	p.draw()
	fmt.Fprintln(p.w)
}

func (p *progressPrinter) draw() {
	if !p.enabled {
		return
	}
	p.drawn = time.Now()
	fmt.Fprintf(p.w, "\r\x1b[K%-9s %s", p.stage, p.counts())
}

func (p *progressPrinter) counts() string {
	if p.stage == hashStage {
		return fmt.Sprintf("%s / %s", humanize.IBytes(uint64(p.done)), humanize.IBytes(uint64(p.total)))
	}
	if p.total <= 0 {
		return humanize.Comma(p.done)
	}
	return fmt.Sprintf("%s / %s", humanize.Comma(p.done), humanize.Comma(p.total))
}
