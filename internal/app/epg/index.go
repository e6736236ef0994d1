package epg

import "sort"

// ChannelGroup 按频道分组的节目列表，组内保持输入顺序
type ChannelGroup map[string][]Program

// Group 按频道对节目进行分组
func Group(records []Program) ChannelGroup {
	group := make(ChannelGroup)
	for _, record := range records {
		group[record.Channel] = append(group[record.Channel], record)
	}
	return group
}

// Channels 返回按字节序排序的频道列表
func (g ChannelGroup) Channels() []string {
	return sortedKeys(g)
}

// Len 返回分组内节目的总数
func (g ChannelGroup) Len() int {
	n := 0
	for _, programs := range g {
		n += len(programs)
	}
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
