package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/scott012/EPG-Viewer/internal/app/epg"
)

const (
	slotLabelLayout = "15:04"
	timeLayout      = "Mon 01-02 15:04"
)

func (m Model) View() string {
	if m.detail != nil {
		return m.renderDetail(*m.detail)
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")

	if len(m.view.Channels) == 0 {
		sb.WriteString(m.styles.Muted.Render("  no programmes"))
		sb.WriteString("\n")
	}
	end := min(len(m.view.Channels), m.top+m.visibleRows())
	for i := m.top; i < end; i++ {
		sb.WriteString(m.renderRow(i))
		sb.WriteString("\n")
	}

	sb.WriteString(m.renderFooter())
	return sb.String()
}

// renderHeader 时间刻度和当前时间标记
func (m Model) renderHeader() string {
	gridWidth := m.gridWidth()
	ruler := []rune(strings.Repeat(" ", gridWidth))
	for i, slot := range m.layout.Axis.Slots() {
		col := i*m.slotWidth - m.scrollX
		for j, r := range []rune(slot.In(m.loc).Format(slotLabelLayout)) {
			if c := col + j; c >= 0 && c < gridWidth {
				ruler[c] = r
			}
		}
	}

	label := m.layout.Axis.Origin.In(m.loc).Format("Mon 01-02")
	left := m.styles.Header.Render(padRight(label, channelColumnWidth))
	line := m.styles.Header.Render(string(ruler))

	marker := strings.Repeat(" ", channelColumnWidth)
	if col := m.nowColumn(); col >= 0 && col < gridWidth {
		marker += strings.Repeat(" ", col) + m.styles.Now.Render("▼")
	}
	return left + line + "\n" + marker
}

// cell 一行中可见的节目单元格
type cell struct {
	start, end int
	program    epg.LaidOutProgram
	selected   bool
}

// renderRow 按偏移和宽度绘制一个频道的节目，超出左右边界的部分被裁剪
func (m Model) renderRow(i int) string {
	channel := m.view.Channels[i]
	gridWidth := m.gridWidth()
	nowCol := m.nowColumn()

	cells := make([]cell, 0, len(m.rows[channel]))
	for j, p := range m.rows[channel] {
		start, end := m.columns(p)
		start, end = start-m.scrollX, end-m.scrollX
		if end <= 0 || start >= gridWidth {
			continue
		}
		cells = append(cells, cell{
			start:    max(0, start),
			end:      min(gridWidth, end),
			program:  p,
			selected: i == m.row && j == m.col,
		})
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Channel.Render(padRight(channel, channelColumnWidth)))

	cursor := 0
	for _, c := range cells {
		// 重叠的节目从前一个单元格结束处开始绘制
		start := max(c.start, cursor)
		if start >= c.end {
			continue
		}
		sb.WriteString(m.renderGap(cursor, start, nowCol))

		style := m.styles.Cell
		if c.selected {
			style = m.styles.Selected
		}
		width := c.end - start
		text := "▏" + c.program.Title
		sb.WriteString(style.Render(padRight(text, width)))
		cursor = c.end
	}
	sb.WriteString(m.renderGap(cursor, gridWidth, nowCol))
	return sb.String()
}

// renderGap 绘制单元格之间的空白，当前时间落在空白中时显示标记
func (m Model) renderGap(from, to, nowCol int) string {
	if to <= from {
		return ""
	}
	if nowCol < from || nowCol >= to {
		return strings.Repeat(" ", to-from)
	}
	return strings.Repeat(" ", nowCol-from) + m.styles.Now.Render("│") + strings.Repeat(" ", to-nowCol-1)
}

func (m Model) renderFooter() string {
	var status string
	if m.searching || m.search.Value() != "" {
		status = m.search.View()
	} else {
		status = "/ search  ←↑↓→ move  enter details  n now  q quit"
	}

	info := fmt.Sprintf("%d channels, %d programmes", len(m.view.Channels), m.view.Len())
	if n := len(m.layout.Skipped); n > 0 {
		info += fmt.Sprintf(", %d skipped", n)
	}
	return status + "\n" + m.styles.Footer.Render(info)
}

func (m Model) renderDetail(p epg.LaidOutProgram) string {
	lines := []string{
		m.styles.Title.Render(p.Title),
	}
	if p.SubTitle != "" {
		lines = append(lines, p.SubTitle)
	}
	lines = append(lines,
		m.styles.Muted.Render(fmt.Sprintf("%s  %s - %s", p.Channel,
			p.StartTime.In(m.loc).Format(timeLayout), p.StopTime.In(m.loc).Format(slotLabelLayout))),
	)
	if p.Desc != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(max(20, m.width-6)).Render(p.Desc))
	}
	lines = append(lines, "", m.styles.Footer.Render("esc back"))
	return m.styles.Detail.Render(strings.Join(lines, "\n"))
}

// nowColumn 当前时间标记在可见网格中的列
func (m Model) nowColumn() int {
	return int(math.Floor(m.nowOffset*float64(m.slotWidth))) - m.scrollX
}

// padRight 按显示宽度截断或补齐
func padRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if w := ansi.StringWidth(s); w > width {
		return ansi.Truncate(s, width, "…")
	} else if w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
