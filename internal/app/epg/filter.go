package epg

import "strings"

// View 搜索过滤后的布局视图，时间轴和节目位置与Layout完全一致
type View struct {
	Query    string                      `json:"query"`
	Axis     TimeAxis                    `json:"axis"`
	Channels []string                    `json:"channels"`
	Rows     map[string][]LaidOutProgram `json:"rows"`
}

// Len 返回视图中节目的数量
func (v *View) Len() int {
	n := 0
	for _, row := range v.Rows {
		n += len(row)
	}
	return n
}

// Programs 按频道顺序返回视图中节目的原始记录
func (v *View) Programs() []Program {
	programs := make([]Program, 0, v.Len())
	for _, channel := range v.Channels {
		for _, p := range v.Rows[channel] {
			programs = append(programs, p.Program)
		}
	}
	return programs
}

// Filter 按标题进行不区分大小写的子串匹配，空查询返回全部节目
func Filter(records []Program, query string) []Program {
	if query == "" {
		return records
	}

	needle := strings.ToLower(query)
	result := make([]Program, 0, len(records))
	for _, record := range records {
		if matchTitle(record.Title, needle) {
			result = append(result, record)
		}
	}
	return result
}

// ApplyFilter 从已布局的节目中筛选出标题匹配的节目
//
// 只做子集运算，不会重新计算时间轴和节目位置。
func ApplyFilter(layout Layout, query string) View {
	view := View{
		Query: query,
		Axis:  layout.Axis,
		Rows:  make(map[string][]LaidOutProgram, len(layout.Rows)),
	}

	needle := strings.ToLower(query)
	for channel, row := range layout.Rows {
		var matched []LaidOutProgram
		for _, p := range row {
			if query == "" || matchTitle(p.Title, needle) {
				matched = append(matched, p)
			}
		}
		if len(matched) > 0 {
			view.Rows[channel] = matched
		}
	}

	view.Channels = sortedKeys(view.Rows)
	return view
}

func matchTitle(title, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(title), lowerNeedle)
}
