package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/textkit/snippet"
	"github.com/dshills/textkit/snippet/session"
)

const defaultDemoBody = "func ${1:name}(${2:args}) ${3|error,bool,string|} {\n\t$0\n}"

func demoCommand() *cobra.Command {
	var body string
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "try snippet sessions in an interactive terminal buffer",
		Long: `demo opens a small terminal editor backed by the session engine.

Keys:
  Ctrl+E     expand the snippet at the cursor
  Tab        jump to the next tabstop
  Shift+Tab  jump to the previous tabstop
  Esc        stop the active session, or quit
  Ctrl+C     quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := buildResolver(nil, "", "")
			if err != nil {
				return err
			}
			return runDemo(body, res)
		},
	}
	cmd.Flags().StringVar(&body, "snippet", defaultDemoBody, "snippet body to expand")
	return cmd
}

// demoApp owns the screen and the engine wiring for one demo run.
type demoApp struct {
	screen  tcell.Screen
	buf     *session.Buffer
	reg     *session.Registry
	body    string
	res     snippet.Resolver
	status  string
	choices string
}

func runDemo(body string, res snippet.Resolver) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	app := &demoApp{
		screen: screen,
		buf:    session.NewBuffer("demo", ""),
		body:   body,
		res:    res,
		status: "Ctrl+E to expand",
	}
	app.reg = session.NewRegistry(
		session.WithObserver(session.ObserverFunc(app.handleEvent)),
		session.WithChoicePresenter(app),
	)
	app.buf.OnChange(func(ch session.Change) {
		app.reg.HandleTextChange(app.buf.DocumentID(), ch)
	})

	app.loop()
	app.reg.DocumentClosed(app.buf.DocumentID())
	return nil
}

func (a *demoApp) handleEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventJump:
		a.status = "tabstop $" + ev.To
	case session.EventStart:
		a.status = "session started"
	case session.EventStop:
		a.status = "session stopped"
	case session.EventCorrupted:
		a.status = fmt.Sprintf("session corrupted: %v", ev.Err)
	}
}

// ShowChoices implements session.ChoicePresenter.
func (a *demoApp) ShowChoices(docID, tabstopID string, choices []string) {
	a.choices = "choices: " + strings.Join(choices, " | ")
}

// HideChoices implements session.ChoicePresenter.
func (a *demoApp) HideChoices(docID string) { a.choices = "" }

func (a *demoApp) loop() {
	for {
		a.draw()
		ev, ok := a.screen.PollEvent().(*tcell.EventKey)
		if !ok {
			continue
		}
		if !a.handleKey(ev) {
			return
		}
	}
}

// handleKey applies one key event and reports whether the loop should
// continue.
func (a *demoApp) handleKey(ev *tcell.EventKey) bool {
	docID := a.buf.DocumentID()
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyEscape:
		if a.reg.Active(docID) == nil {
			return false
		}
		if err := a.reg.Stop(docID); err != nil {
			a.status = err.Error()
		}
	case tcell.KeyCtrlE:
		if _, err := a.reg.Expand(a.buf, a.body, 0, a.res); err != nil {
			a.status = err.Error()
		}
	case tcell.KeyTab:
		a.jump(session.Next)
	case tcell.KeyBacktab:
		a.jump(session.Prev)
	case tcell.KeyEnter:
		a.typeText("\n")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.backspace()
	case tcell.KeyRune:
		a.typeText(string(ev.Rune()))
	}
	return true
}

func (a *demoApp) jump(dir session.Direction) {
	if err := a.reg.Jump(a.buf.DocumentID(), dir); err != nil {
		a.status = err.Error()
	}
}

func (a *demoApp) typeText(text string) {
	if err := a.buf.Type(text); err != nil {
		a.status = err.Error()
	}
}

func (a *demoApp) backspace() {
	cur := a.buf.Cursor()
	var r session.Range
	switch {
	case cur.Col > 0:
		r = session.Range{
			Start: session.Pos{Line: cur.Line, Col: cur.Col - 1},
			End:   cur,
		}
	case cur.Line > 0:
		prev, err := a.buf.Lines(cur.Line-1, cur.Line)
		if err != nil {
			return
		}
		r = session.Range{
			Start: session.Pos{Line: cur.Line - 1, Col: len(prev[0])},
			End:   session.Pos{Line: cur.Line, Col: 0},
		}
	default:
		return
	}
	if err := a.buf.DeleteRange(r); err != nil {
		a.status = err.Error()
	}
}

func (a *demoApp) draw() {
	a.screen.Clear()
	width, height := a.screen.Size()

	lines, _ := a.buf.Lines(0, a.buf.LineCount())
	for y, line := range lines {
		if y >= height-2 {
			break
		}
		a.drawText(0, y, line, tcell.StyleDefault, width)
	}

	statusStyle := tcell.StyleDefault.Reverse(true)
	status := a.status
	if a.choices != "" {
		status += "  " + a.choices
	}
	if s := a.reg.Active(a.buf.DocumentID()); s != nil {
		text, _ := s.TabstopText(s.CurrentTabstop())
		status += fmt.Sprintf("  [$%s %q]", s.CurrentTabstop(), text)
	}
	a.drawText(0, height-1, status, statusStyle, width)

	cur := a.buf.Cursor()
	a.screen.ShowCursor(cur.Col, cur.Line)
	a.screen.Show()
}

func (a *demoApp) drawText(x, y int, text string, style tcell.Style, width int) {
	for _, r := range text {
		if x >= width {
			return
		}
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
