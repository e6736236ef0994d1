package tui

import (
	"math"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/scott012/EPG-Viewer/internal/app/epg"
)

// nowTickMsg 当前时间标记的定时刷新
type nowTickMsg time.Time

// Options 创建Model的参数
type Options struct {
	Location    *time.Location
	SlotWidth   int           // 每个格子占用的列数
	NowInterval time.Duration // 当前时间标记的刷新周期
	Now         func() time.Time

	// OnSelect 选中节目并回车时调用
	OnSelect func(epg.Program)
}

// Model 节目单的终端界面
type Model struct {
	layout epg.Layout // 完整布局，只在加载数据时计算一次
	view   epg.View   // 按搜索条件过滤后的视图
	// rows 视图中每个频道按开始时间排序的副本，绘制和左右移动都使用它
	rows map[string][]epg.LaidOutProgram

	loc         *time.Location
	slotWidth   int
	nowInterval time.Duration
	now         func() time.Time
	nowOffset   float64
	onSelect    func(epg.Program)

	search    textinput.Model
	searching bool

	row, col int // 选中的频道和节目
	top      int // 第一行显示的频道
	scrollX  int // 网格横向滚动的列数
	detail   *epg.LaidOutProgram

	width, height int
	styles        Styles
}

// New 根据已完成的布局创建Model
func New(layout epg.Layout, opts Options) Model {
	if opts.Location == nil {
		opts.Location = layout.Location
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.SlotWidth <= 0 {
		opts.SlotWidth = 24
	}
	if opts.NowInterval <= 0 {
		opts.NowInterval = epg.DefaultNowInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search titles"
	search.CharLimit = 64

	m := Model{
		layout:      layout,
		loc:         opts.Location,
		slotWidth:   opts.SlotWidth,
		nowInterval: opts.NowInterval,
		now:         opts.Now,
		onSelect:    opts.OnSelect,
		search:      search,
		width:       120,
		height:      30,
		styles:      DefaultStyles(),
	}
	m.setView(epg.ApplyFilter(layout, ""))
	m.nowOffset = epg.NowOffset(layout.Axis, m.now().In(m.loc))
	return m
}

func (m Model) Init() tea.Cmd {
	return m.tickNow()
}

// tickNow 只刷新当前时间标记，不会重新布局
func (m Model) tickNow() tea.Cmd {
	return tea.Tick(m.nowInterval, func(t time.Time) tea.Msg {
		return nowTickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ensureVisible()
		return m, nil

	case nowTickMsg:
		m.nowOffset = epg.NowOffset(m.layout.Axis, time.Time(msg).In(m.loc))
		return m, m.tickNow()

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.applyQuery()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.applyQuery()
	}
	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail != nil {
		switch msg.String() {
		case "esc", "enter", "q":
			m.detail = nil
		case "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.applyQuery()
		}
	case "up", "k":
		m.moveRow(-1)
	case "down", "j":
		m.moveRow(1)
	case "left", "h":
		m.moveCol(-1)
	case "right", "l":
		m.moveCol(1)
	case "n":
		m.jumpToNow()
	case "enter":
		if p, ok := m.Selected(); ok {
			m.detail = &p
			if m.onSelect != nil {
				m.onSelect(p.Program)
			}
		}
	}
	return m, nil
}

// applyQuery 在已布局的节目上重新过滤，时间轴和位置保持不变
func (m *Model) applyQuery() {
	m.setView(epg.ApplyFilter(m.layout, m.search.Value()))
	m.row, m.col, m.top = 0, 0, 0
	m.ensureVisible()
}

// setView 替换视图，频道内的节目可能不是按时间顺序给出的
func (m *Model) setView(view epg.View) {
	m.view = view
	m.rows = make(map[string][]epg.LaidOutProgram, len(view.Rows))
	for channel, row := range view.Rows {
		sorted := make([]epg.LaidOutProgram, len(row))
		copy(sorted, row)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
		m.rows[channel] = sorted
	}
}

// Selected 返回当前选中的节目
func (m Model) Selected() (epg.LaidOutProgram, bool) {
	if m.row < 0 || m.row >= len(m.view.Channels) {
		return epg.LaidOutProgram{}, false
	}
	row := m.rows[m.view.Channels[m.row]]
	if m.col < 0 || m.col >= len(row) {
		return epg.LaidOutProgram{}, false
	}
	return row[m.col], true
}

// FilteredView 返回当前的过滤视图
func (m Model) FilteredView() epg.View {
	return m.view
}

// NowOffset 返回当前时间标记的位置
func (m Model) NowOffset() float64 {
	return m.nowOffset
}

func (m *Model) moveRow(delta int) {
	if len(m.view.Channels) == 0 {
		return
	}
	current, ok := m.Selected()

	m.row = clamp(m.row+delta, 0, len(m.view.Channels)-1)
	m.col = 0
	if ok {
		// 换行时选中开始时间最接近的节目
		m.col = m.nearest(current.Offset)
	}
	m.ensureVisible()
}

func (m *Model) moveCol(delta int) {
	if len(m.view.Channels) == 0 {
		return
	}
	row := m.rows[m.view.Channels[m.row]]
	m.col = clamp(m.col+delta, 0, len(row)-1)
	m.ensureVisible()
}

// jumpToNow 选中当前行正在播出的节目
func (m *Model) jumpToNow() {
	if len(m.view.Channels) == 0 {
		return
	}
	m.col = m.nearest(m.nowOffset)
	row := m.rows[m.view.Channels[m.row]]
	for i, p := range row {
		if p.Offset <= m.nowOffset && m.nowOffset < p.Offset+p.Width {
			m.col = i
			break
		}
	}
	m.ensureVisible()
}

// nearest 返回当前行中开始位置最接近offset的节目下标
func (m *Model) nearest(offset float64) int {
	row := m.rows[m.view.Channels[m.row]]
	best, bestDist := 0, math.Inf(1)
	for i, p := range row {
		if d := math.Abs(p.Offset - offset); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// ensureVisible 滚动网格使选中的节目可见
func (m *Model) ensureVisible() {
	rows := m.visibleRows()
	if m.row < m.top {
		m.top = m.row
	} else if m.row >= m.top+rows {
		m.top = m.row - rows + 1
	}

	p, ok := m.Selected()
	if !ok {
		return
	}
	gridWidth := m.gridWidth()
	start, end := m.columns(p)
	if start < m.scrollX {
		m.scrollX = max(0, start)
	} else if end > m.scrollX+gridWidth {
		m.scrollX = min(start, end-gridWidth)
	}
}

// columns 计算节目在网格中的起止列，未裁剪
func (m Model) columns(p epg.LaidOutProgram) (int, int) {
	start := int(math.Round(p.Offset * float64(m.slotWidth)))
	end := int(math.Round((p.Offset + p.Width) * float64(m.slotWidth)))
	return start, end
}

func (m Model) gridWidth() int {
	return max(m.slotWidth, m.width-channelColumnWidth)
}

// visibleRows 去掉表头和底部状态栏后能显示的频道数
func (m Model) visibleRows() int {
	return max(1, m.height-4)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
