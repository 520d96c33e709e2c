package ui

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"InkBoard/internal/session"
	"InkBoard/internal/tool"
)

// statsPeriod is how often the status bar shows fresh session stats.
const statsPeriod = 500 * time.Millisecond

// NewApp creates the fyne application. It must exist before any scene is
// built or scheduler callback is dispatched.
func NewApp() fyne.App {
	return app.NewWithID("io.inkboard.app")
}

// RunApp shows the board window and blocks until it is closed. shareLink is
// shown in the title when hosting; debug adds live stats to the status bar.
func RunApp(a fyne.App, title, shareLink string, board *BoardWidget, ids []tool.ID, debug bool) {
	if shareLink != "" {
		title = fmt.Sprintf("%s  (%s)", title, shareLink)
	}
	win := a.NewWindow(title)
	win.Resize(fyne.NewSize(1280, 800))

	status := widget.NewLabel("Ready")
	stats := widget.NewLabel("")
	board.OnSelect = func(ids []string) {
		status.SetText(fmt.Sprintf("Selected %d strokes", len(ids)))
	}
	board.OnOutcome = func(out session.Outcome) {
		if len(out.Erased) > 0 {
			status.SetText(fmt.Sprintf("Erased %d strokes", len(out.Erased)))
		}
	}

	toolbar := NewToolbar(board, ids, win, status)
	bottom := container.NewHBox(status)
	if debug {
		bottom.Add(stats)
		done := make(chan struct{})
		win.SetOnClosed(func() { close(done) })
		go pollStats(board.Session(), stats, done)
	}

	win.SetContent(container.NewBorder(toolbar, bottom, nil, nil, board))
	win.ShowAndRun()
}

func pollStats(sess *session.Session, label *widget.Label, done <-chan struct{}) {
	t := time.NewTicker(statsPeriod)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			fyne.Do(func() {
				st := sess.Stats()
				label.SetText(fmt.Sprintf("%s | %s | strokes %d/%d | pts %d | aid %s v=%.4f",
					st.Renderer, st.Tool, st.Visible, st.Strokes, st.Points, st.Aid.Phase, st.Aid.Velocity))
			})
		}
	}
}
