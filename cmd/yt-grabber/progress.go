package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/vbauerster/mpb/v4"
	"github.com/vbauerster/mpb/v4/decor"

	"github.com/ytget/yt-grabber/internal/model"
)

// progressStep is the percent delta between two printed progress lines
const progressStep = 10

// Progress bar layout
const (
	barWidth  = 40
	nameWidth = 24
)

// progressView follows task updates from the download service
type progressView interface {
	update(task *model.DownloadTask)
	note(msg string)
	finish()
}

// newView draws bars on a terminal and plain lines everywhere else
func newView(ctx context.Context, out io.Writer, plain bool) progressView {
	if f, ok := out.(*os.File); ok && !plain && isatty.IsTerminal(f.Fd()) {
		return newBarView(ctx, out)
	}
	return newProgressPrinter(out)
}

func resultLine(task *model.DownloadTask) (string, bool) {
	switch task.Status {
	case model.TaskStatusCompleted:
		return fmt.Sprintf("%s: done %s", task.Identifier, task.OutputPath), true
	case model.TaskStatusError:
		return fmt.Sprintf("%s: %s: %s", task.Identifier, task.ErrorKind, task.LastError), true
	case model.TaskStatusStopped:
		return fmt.Sprintf("%s: stopped", task.Identifier), true
	}
	return "", false
}

// progressPrinter writes one line per stage change and per progressStep percent
type progressPrinter struct {
	mu      sync.Mutex
	out     io.Writer
	percent map[string]int
	stage   map[string]model.Stage
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{
		out:     out,
		percent: make(map[string]int),
		stage:   make(map[string]model.Stage),
	}
}

func (p *progressPrinter) update(task *model.DownloadTask) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if line, final := resultLine(task); final {
		fmt.Fprintln(p.out, line)
		return
	}

	if task.Stage != model.StageTransfer {
		if task.Stage != p.stage[task.ID] {
			p.stage[task.ID] = task.Stage
			fmt.Fprintf(p.out, "%s: %s\n", task.Identifier, task.Stage)
		}
		return
	}

	p.stage[task.ID] = task.Stage
	last, seen := p.percent[task.ID]
	if !seen || task.Percent >= last+progressStep || (task.Percent == 100 && last != 100) {
		p.percent[task.ID] = task.Percent
		fmt.Fprintf(p.out, "%s: %3d%%\n", task.Identifier, task.Percent)
	}
}

func (p *progressPrinter) note(msg string) {
	p.mu.Lock()
	fmt.Fprintln(p.out, msg)
	p.mu.Unlock()
}

func (p *progressPrinter) finish() {}

// barView draws one bar per task and prints the results once all bars are done
type barView struct {
	mu       sync.Mutex
	out      io.Writer
	progress *mpb.Progress
	bars     map[string]*taskBar
	results  []string
}

type taskBar struct {
	bar     *mpb.Bar
	percent int
	done    bool
}

func newBarView(ctx context.Context, out io.Writer) *barView {
	return &barView{
		out:      out,
		progress: mpb.NewWithContext(ctx, mpb.WithWidth(barWidth), mpb.WithOutput(out)),
		bars:     make(map[string]*taskBar),
	}
}

func (v *barView) update(task *model.DownloadTask) {
	v.mu.Lock()
	defer v.mu.Unlock()

	tb, ok := v.bars[task.ID]
	if !ok {
		tb = &taskBar{bar: v.progress.AddBar(100,
			mpb.PrependDecorators(
				decor.Name(truncate(task.Identifier, nameWidth), decor.WC{W: nameWidth + 1, C: decor.DidentRight}),
			),
			mpb.AppendDecorators(
				decor.CountersNoUnit(" %3d/%3d", decor.WC{W: 8, C: decor.DidentRight}),
			),
		)}
		v.bars[task.ID] = tb
	}
	if tb.done {
		return
	}

	if task.Percent > tb.percent {
		tb.bar.IncrInt64(int64(task.Percent - tb.percent))
		tb.percent = task.Percent
	}

	if line, final := resultLine(task); final {
		tb.done = true
		tb.bar.SetTotal(int64(tb.percent), true)
		v.results = append(v.results, line)
	}
}

func (v *barView) note(msg string) {
	v.mu.Lock()
	v.results = append(v.results, msg)
	v.mu.Unlock()
}

func (v *barView) finish() {
	v.progress.Wait()

	v.mu.Lock()
	defer v.mu.Unlock()
	for _, line := range v.results {
		fmt.Fprintln(v.out, line)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
