package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JsonConfig 对外展示的配置
type JsonConfig struct {
	Source          string `json:"source"`
	Timezone        string `json:"timezone"`
	OverlapPolicy   string `json:"overlapPolicy"`
	RefreshInterval string `json:"refreshInterval"`
	NowInterval     string `json:"nowInterval"`
}

// GetConfig 查询当前生效的配置
func GetConfig(c *gin.Context) {
	conf := confPtr.Load()
	if conf == nil {
		c.Status(http.StatusNotFound)
		return
	}

	// 返回响应
	c.PureJSON(http.StatusOK, &JsonConfig{
		Source:          conf.Source,
		Timezone:        conf.Location.String(),
		OverlapPolicy:   string(conf.OverlapPolicy),
		RefreshInterval: conf.RefreshInterval.String(),
		NowInterval:     conf.NowInterval.String(),
	})
}
