package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"InkBoard/internal/logging"
	"InkBoard/internal/render"
	"InkBoard/internal/tool"
)

// palette is the swatch row, in display order.
var palette = []string{"#1e1e1e", "#e03131", "#2f9e44", "#1971c2", "#f08c00", "#ffd43b"}

type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	OnTapped func(hex string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	fill, err := render.ParseColor(s.Hex)
	if err != nil {
		fill = color.NRGBA{A: 255}
	}
	rect := canvas.NewRectangle(fill)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

func toolIcon(id tool.ID) fyne.Resource {
	switch id {
	case tool.Pen, tool.Pencil:
		return theme.DocumentCreateIcon()
	case tool.Brush:
		return theme.ColorPaletteIcon()
	case tool.Highlighter, tool.Marker:
		return theme.ColorChromaticIcon()
	case tool.Eraser:
		return theme.DeleteIcon()
	case tool.Select:
		return theme.ViewFullScreenIcon()
	case tool.Pan:
		return theme.MoveUpIcon()
	}
	return theme.QuestionIcon()
}

// NewToolbar builds the tool strip for board. status receives short
// notices about tool changes and exports.
func NewToolbar(board *BoardWidget, ids []tool.ID, win fyne.Window, status *widget.Label) fyne.CanvasObject {
	sess := board.Session()
	log := logging.For("ui")

	tools := widget.NewToolbar()
	for _, id := range ids {
		tools.Append(widget.NewToolbarAction(toolIcon(id), func() {
			sess.SetTool(id)
			status.SetText("Tool: " + string(id))
		}))
	}

	colors := container.NewHBox()
	for _, hex := range palette {
		colors.Add(newColorSwatch(hex, func(hex string) {
			sess.SetColor(hex)
		}))
	}

	aid := widget.NewCheck("Shape aid", sess.SetAidEnabled)
	aid.SetChecked(sess.AidEnabled())

	reset := widget.NewButtonWithIcon("", theme.ZoomFitIcon(), sess.ResetView)

	export := widget.NewButtonWithIcon("PDF", theme.DocumentSaveIcon(), func() {
		dialog.ShowFileSave(func(w fyne.URIWriteCloser, err error) {
			if err != nil || w == nil {
				return
			}
			defer w.Close()
			if err := sess.ExportPDF(w); err != nil {
				log.Error("pdf export failed", "err", err)
				dialog.ShowError(err, win)
				return
			}
			status.SetText(fmt.Sprintf("Exported %d strokes", sess.Board().Count()))
		}, win)
	})

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tools,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colors,
		widget.NewSeparator(),
		aid,
		reset,
		export,
		layout.NewSpacer(),
	)
}
