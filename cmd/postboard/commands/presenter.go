package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/goliatone/go-postboard"
)

// terminalPresenter prints notices on the error stream and remembers the
// last route the core asked for.
type terminalPresenter struct {
	mu    sync.Mutex
	out   io.Writer
	route postboard.Route
}

func newTerminalPresenter(out io.Writer) *terminalPresenter {
	return &terminalPresenter{out: out, route: postboard.RoutePostIndex}
}

var noticeStyles = map[postboard.NoticeLevel]*color.Color{
	postboard.NoticeSuccess: color.New(color.FgGreen),
	postboard.NoticeInfo:    color.New(color.FgCyan),
	postboard.NoticeWarning: color.New(color.FgYellow),
	postboard.NoticeError:   color.New(color.FgRed, color.Bold),
}

var noticeLabels = map[postboard.NoticeLevel]string{
	postboard.NoticeSuccess: "ok",
	postboard.NoticeInfo:    "info",
	postboard.NoticeWarning: "warning",
	postboard.NoticeError:   "error",
}

func (p *terminalPresenter) Notify(_ context.Context, notice postboard.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()

	style, ok := noticeStyles[notice.Level]
	if !ok {
		style = color.New(color.Reset)
	}
	label := noticeLabels[notice.Level]
	if label == "" {
		label = string(notice.Level)
	}

	fmt.Fprintf(p.out, "%s %s\n", style.Sprintf("[%s]", label), notice.Message)
	for _, msg := range notice.Messages {
		if msg == "" || msg == notice.Message {
			continue
		}
		for _, line := range strings.Split(strings.TrimSpace(msg), "\n") {
			fmt.Fprintf(p.out, "  - %s\n", line)
		}
	}
}

func (p *terminalPresenter) Redirect(_ context.Context, route postboard.Route) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.route = route
}

// Route returns the last route requested by the core.
func (p *terminalPresenter) Route() postboard.Route {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.route
}
