package output

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#1F4E79", Dark: "#7FB2E5"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#E57373"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#9E9E9E"}
	ColorBorder  = lipgloss.AdaptiveColor{Light: "#B0BEC5", Dark: "#546E7A"}

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	MetricLabelStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	MetricValueStyle = lipgloss.NewStyle().
				Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)
)

// MetricTrendStyle colors a trend green when it is favourable.
func MetricTrendStyle(favourable bool) lipgloss.Style {
	if favourable {
		return lipgloss.NewStyle().Foreground(ColorSuccess)
	}
	return lipgloss.NewStyle().Foreground(ColorDanger)
}

// TrendIndicator is the arrow shown next to a trend.
func TrendIndicator(up bool) string {
	if up {
		return "▲"
	}
	return "▼"
}
