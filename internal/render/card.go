package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"sync"

	"market-monitor-bot/internal/types"
	"market-monitor-bot/lib/helpers"

	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	fontOnce   sync.Once
	cardFont   *truetype.Font
	fontErr    error
	background = drawing.Color{R: 55, G: 55, B: 55, A: 255}
	textColor  = drawing.Color{R: 200, G: 200, B: 200, A: 255}
	currentBar = drawing.Color{R: 0, G: 122, B: 255, A: 255}
	targetBar  = drawing.Color{R: 255, G: 149, B: 0, A: 255}
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		cardFont, fontErr = truetype.Parse(goregular.TTF)
	})
	return cardFont, fontErr
}

// Card draws a PNG comparing the observed price with the alert target
type Card struct {
	Width  int
	Height int
}

func NewCard() *Card {
	return &Card{Width: 600, Height: 300}
}

// Render implements notify.Renderer
func (c *Card) Render(f types.Fired) ([]byte, error) {
	font, err := loadFont()
	if err != nil {
		return nil, errors.Wrap(err, "could not load card font")
	}

	if f.Price <= 0 || f.Alert.Target <= 0 {
		return nil, errors.Errorf("cannot draw non-positive prices %v/%v", f.Price, f.Alert.Target)
	}

	top := math.Max(f.Price, f.Alert.Target) * 1.15
	label := strings.ToUpper(f.Alert.Instrument)

	graph := chart.BarChart{
		Title: fmt.Sprintf("%s %s %s", label, helpers.FormatPriceUS(f.Price, false), strings.ToUpper(f.Quote)),
		TitleStyle: chart.Style{
			FontColor: textColor,
			FontSize:  16,
		},
		Font:     font,
		Width:    c.Width,
		Height:   c.Height,
		BarWidth: c.Width / 5,
		Background: chart.Style{
			FillColor: background,
			Padding: chart.Box{
				Top: 50, Left: 20, Right: 20, Bottom: 20,
			},
		},
		Canvas: chart.Style{
			FillColor: background,
		},
		XAxis: chart.Style{
			FontColor: textColor,
			FontSize:  12,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{
				FontColor: textColor,
				FontSize:  10,
			},
			Range: &chart.ContinuousRange{Min: 0, Max: top},
			ValueFormatter: func(v interface{}) string {
				if fv, ok := v.(float64); ok {
					return helpers.FormatPriceUS(fv, false)
				}
				return ""
			},
		},
		Bars: []chart.Value{
			{Value: f.Price, Label: "Current", Style: chart.Style{FillColor: currentBar, StrokeColor: currentBar}},
			{Value: f.Alert.Target, Label: "Target", Style: chart.Style{FillColor: targetBar, StrokeColor: targetBar}},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, errors.Wrap(err, "could not render alert card")
	}
	return buf.Bytes(), nil
}
