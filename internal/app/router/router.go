package router

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scott012/EPG-Viewer/internal/app/config"
	"github.com/scott012/EPG-Viewer/internal/app/epg"
	"github.com/scott012/EPG-Viewer/internal/app/xmltv"
)

var (
	logger *zap.Logger = zap.NewNop()

	// 当前生效的配置
	confPtr atomic.Pointer[config.Config]
	// 缓存最新的布局结果
	layoutPtr atomic.Pointer[epg.Layout]
	// 当前时间标记，随布局一起重建
	trackerPtr atomic.Pointer[epg.NowTracker]
)

func NewEngine(ctx context.Context, conf *config.Config) (*gin.Engine, error) {
	// L()：获取全局logger
	logger = zap.L()

	gin.SetMode(gin.ReleaseMode)

	// 校验配置文件
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	confPtr.Store(conf)

	// 创建节目单来源
	source, err := xmltv.NewSource(&http.Client{
		Timeout: conf.HTTP.Timeout,
	}, conf.Source)
	if err != nil {
		return nil, err
	}

	// 执行初始化操作
	if err = initData(ctx, source, conf); err != nil {
		return nil, err
	}

	// 执行定时任务
	Schedule(ctx, source, conf)

	// 创建 Gin 路由引擎
	r := gin.New()

	// 日志记录
	r.Use(ginzap.Ginzap(logger, time.RFC3339, false))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	registerRoutes(r)

	return r, nil
}

func registerRoutes(r *gin.Engine) {
	// 查询节目单布局-json格式
	r.GET("/guide/json", GetJsonGuide)
	// 查询频道列表
	r.GET("/guide/channels", GetChannels)
	// 查询当前时间标记
	r.GET("/guide/now", GetNowOffset)
	// 查询被跳过的节目
	r.GET("/guide/skipped", GetSkipped)

	// 导出节目单-xml格式
	r.GET("/guide/xml", GetXmlEPG)
	r.GET("/guide/xml.gz", GetXmlEPGWithGzip)

	// 查询当前生效的配置
	r.GET("/config", GetConfig)
}

// initData 初始化数据
func initData(ctx context.Context, source *xmltv.Source, conf *config.Config) error {
	programs, err := xmltv.LoadWithRetry(ctx, source, maxRetries, waitSeconds*time.Second)
	if err != nil {
		return err
	}

	updateGuide(ctx, programs, conf)
	return nil
}

// updateGuide 重新布局并替换缓存，同时按新的时间轴重建当前时间标记
func updateGuide(ctx context.Context, programs []epg.Program, conf *config.Config) {
	layout := epg.RecomputeLayout(programs, time.Now(), conf.Location, conf.OverlapPolicy)

	if len(layout.Skipped) > 0 {
		logger.Sugar().Warnf("%d of %d programmes were skipped.", len(layout.Skipped), len(programs))
		for _, d := range layout.Skipped {
			logger.Debug("Skipped programme.", zap.Int("index", d.Index), zap.String("title", d.Program.Title),
				zap.String("channel", d.Program.Channel), zap.Error(d.Err))
		}
	}
	for _, o := range layout.Overlaps {
		logger.Info("Overlapping programmes.", zap.String("channel", o.Channel),
			zap.String("first", o.First.Title), zap.String("second", o.Second.Title))
	}

	logger.Sugar().Infof("The guide has been updated, channels: %d, programmes: %d, slots: %d.",
		len(layout.Channels), layout.Len(), layout.Axis.SlotCount)
	layoutPtr.Store(&layout)

	tracker := epg.NewNowTracker(layout.Axis, conf.Location, conf.NowInterval, nil)
	tracker.Start(ctx)
	if old := trackerPtr.Swap(tracker); old != nil {
		old.Stop()
	}
}

// currentNowOffset 读取当前时间标记，没有跟踪器时直接计算
func currentNowOffset(layout *epg.Layout) float64 {
	if tracker := trackerPtr.Load(); tracker != nil && tracker.Axis().Equal(layout.Axis) {
		return tracker.Offset()
	}
	return epg.RecomputeNowOffset(layout.Axis, layout.Location)
}
