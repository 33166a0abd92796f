package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// MetricCard displays a single metric with label, value, and optional trend
type MetricCard struct {
	Label       string
	Value       string
	Trend       *Trend
	Description string
	Width       int
}

// Trend is a metric's change. Up sets the arrow; Favourable sets the color,
// so a falling tax bill can be shown as good news.
type Trend struct {
	Up         bool
	Favourable bool
	Change     string
}

// NewMetricCard creates a new metric card
func NewMetricCard(label, value string) *MetricCard {
	return &MetricCard{
		Label: label,
		Value: value,
		Width: 28,
	}
}

// WithTrend adds a trend indicator to the metric card
func (m *MetricCard) WithTrend(up, favourable bool, change string) *MetricCard {
	m.Trend = &Trend{Up: up, Favourable: favourable, Change: change}
	return m
}

// WithDescription adds a description/subtitle
func (m *MetricCard) WithDescription(desc string) *MetricCard {
	m.Description = desc
	return m
}

// WithWidth sets the card width
func (m *MetricCard) WithWidth(width int) *MetricCard {
	m.Width = width
	return m
}

// Render returns the styled metric card
func (m *MetricCard) Render() string {
	content := MetricLabelStyle.Render(m.Label) + "\n" + MetricValueStyle.Render(m.Value)
	if m.Trend != nil {
		content += "\n" + MetricTrendStyle(m.Trend.Favourable).
			Render(fmt.Sprintf("%s %s", TrendIndicator(m.Trend.Up), m.Trend.Change))
	}
	if m.Description != "" {
		content += "\n" + SubtitleStyle.Render(m.Description)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		Width(m.Width).
		Render(content)
}

// RenderCompact returns a compact inline version without border
func (m *MetricCard) RenderCompact() string {
	out := MetricLabelStyle.Render(m.Label+":") + " " + MetricValueStyle.Render(m.Value)
	if m.Trend != nil {
		out += " " + MetricTrendStyle(m.Trend.Favourable).
			Render(fmt.Sprintf("%s %s", TrendIndicator(m.Trend.Up), m.Trend.Change))
	}
	return out
}

// MetricGrid renders multiple metric cards in a grid layout
func MetricGrid(cards []*MetricCard, columns int) string {
	if len(cards) == 0 {
		return ""
	}
	if columns < 1 {
		columns = 1
	}

	var rows, current []string
	for i, card := range cards {
		current = append(current, card.Render())
		if (i+1)%columns == 0 || i == len(cards)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
			current = nil
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
