package main

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	httpapi "github.com/fyrsmithlabs/moodwall/internal/http"
	"github.com/fyrsmithlabs/moodwall/internal/intent"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	winnerBar = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	otherBar  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// renderClassification draws the verdict and, for clean text, a horizontal
// bar per intention. Negative similarities draw as empty bars.
func renderClassification(resp httpapi.ClassifyResponse, width int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(resp.Content))
	b.WriteString("\n\n")

	if resp.Toxic && resp.Toxicity != nil {
		b.WriteString(warningStyle.Render(fmt.Sprintf("toxic: %s %s", resp.Toxicity.Category, resp.Toxicity.Emoji())))
		b.WriteString("\n")
		return b.String()
	}
	if resp.Intention == nil || len(resp.Intention.Scores) == 0 {
		b.WriteString(dimStyle.Render("no intention scores"))
		return b.String()
	}

	b.WriteString(scoreChart(resp.Intention, width))
	b.WriteString("\n\n")
	for _, s := range resp.Intention.Scores {
		line := fmt.Sprintf("%s %-13s %+.4f", s.Label.Emoji(), s.Label, s.Score)
		if s.Label == resp.Intention.Label {
			b.WriteString(labelStyle.Bold(true).Render(line + "  <"))
		} else {
			b.WriteString(dimStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func scoreChart(res *intent.Result, width int) string {
	if width < 20 {
		width = 20
	}
	data := make([]barchart.BarData, 0, len(res.Scores))
	for _, s := range res.Scores {
		style := otherBar
		if s.Label == res.Label {
			style = winnerBar
		}
		data = append(data, barchart.BarData{
			Label: string(s.Label),
			Values: []barchart.BarValue{
				{Name: string(s.Label), Value: max(s.Score, 0), Style: style},
			},
		})
	}

	chart := barchart.New(width, len(data),
		barchart.WithHorizontalBars(),
		barchart.WithBarGap(0),
		barchart.WithBarWidth(1),
		barchart.WithMaxValue(1),
		barchart.WithDataSet(data),
	)
	chart.Draw()
	return chart.View()
}
