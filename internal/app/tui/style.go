package tui

import "github.com/charmbracelet/lipgloss"

// channelColumnWidth 左侧频道名称列的宽度
const channelColumnWidth = 14

// Styles 界面使用的样式
type Styles struct {
	Header   lipgloss.Style
	Channel  lipgloss.Style
	Cell     lipgloss.Style
	Selected lipgloss.Style
	Now      lipgloss.Style
	Footer   lipgloss.Style
	Detail   lipgloss.Style
	Title    lipgloss.Style
	Muted    lipgloss.Style
}

// DefaultStyles 与原网页版配色一致的深色主题
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#404040")),
		Channel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#404040")).Bold(true),
		Cell:     lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#505050")),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#d0d0d0")).Bold(true),
		Now:      lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")).Bold(true),
		Footer:   lipgloss.NewStyle().Foreground(lipgloss.Color("#a0a0a0")),
		Detail:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#808080")).Padding(0, 1),
		Title:    lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
	}
}
