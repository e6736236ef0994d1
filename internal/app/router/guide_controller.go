package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scott012/EPG-Viewer/internal/app/epg"
)

const slotLabelLayout = "15:04"

// JsonGuide JSON格式的节目单布局
type JsonGuide struct {
	Query     string                          `json:"query"`
	Origin    time.Time                       `json:"origin"`
	SlotCount int                             `json:"slotCount"`
	Slots     []string                        `json:"slots"` // 每个格子边界的显示时间，例如：09:30
	Channels  []string                        `json:"channels"`
	Rows      map[string][]epg.LaidOutProgram `json:"rows"`
	NowOffset float64                         `json:"nowOffset"`
	Skipped   int                             `json:"skipped"`
}

// JsonNow 当前时间标记
type JsonNow struct {
	Origin time.Time `json:"origin"`
	Offset float64   `json:"offset"`
}

// JsonSkipped 被跳过的节目
type JsonSkipped struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Channel string `json:"channel"`
	Start   string `json:"start"`
	Stop    string `json:"stop"`
	Error   string `json:"error"`
}

// loadLayout 读取缓存的布局，还没有数据时返回503
func loadLayout(c *gin.Context) (*epg.Layout, bool) {
	layout := layoutPtr.Load()
	if layout == nil {
		c.Status(http.StatusServiceUnavailable)
		return nil, false
	}
	return layout, true
}

// GetJsonGuide 查询节目单布局，q参数按标题过滤
func GetJsonGuide(c *gin.Context) {
	layout, ok := loadLayout(c)
	if !ok {
		return
	}

	// 过滤只在已布局的节目上进行，不会重新计算时间轴
	view := epg.ApplyFilter(*layout, c.Query("q"))

	slots := make([]string, 0, view.Axis.SlotCount)
	for _, slot := range view.Axis.Slots() {
		slots = append(slots, slot.Format(slotLabelLayout))
	}

	// 返回响应
	c.PureJSON(http.StatusOK, &JsonGuide{
		Query:     view.Query,
		Origin:    view.Axis.Origin,
		SlotCount: view.Axis.SlotCount,
		Slots:     slots,
		Channels:  view.Channels,
		Rows:      view.Rows,
		NowOffset: currentNowOffset(layout),
		Skipped:   len(layout.Skipped),
	})
}

// GetChannels 查询排序后的频道列表
func GetChannels(c *gin.Context) {
	layout, ok := loadLayout(c)
	if !ok {
		return
	}

	view := epg.ApplyFilter(*layout, c.Query("q"))
	c.PureJSON(http.StatusOK, view.Channels)
}

// GetNowOffset 查询当前时间标记的位置
func GetNowOffset(c *gin.Context) {
	layout, ok := loadLayout(c)
	if !ok {
		return
	}

	c.PureJSON(http.StatusOK, &JsonNow{
		Origin: layout.Axis.Origin,
		Offset: currentNowOffset(layout),
	})
}

// GetSkipped 查询布局时被跳过的节目
func GetSkipped(c *gin.Context) {
	layout, ok := loadLayout(c)
	if !ok {
		return
	}

	skipped := make([]JsonSkipped, 0, len(layout.Skipped))
	for _, d := range layout.Skipped {
		skipped = append(skipped, JsonSkipped{
			Index:   d.Index,
			Title:   d.Program.Title,
			Channel: d.Program.Channel,
			Start:   d.Program.Start,
			Stop:    d.Program.Stop,
			Error:   d.Err.Error(),
		})
	}
	c.PureJSON(http.StatusOK, skipped)
}
