package router

import (
	"context"
	"time"

	"github.com/scott012/EPG-Viewer/internal/app/config"
	"github.com/scott012/EPG-Viewer/internal/app/xmltv"
)

const (
	waitSeconds = 30
	maxRetries  = 3
)

// Schedule 定时调度更新缓存数据
func Schedule(ctx context.Context, source *xmltv.Source, conf *config.Config) {
	// 创建定时任务
	ticker := time.NewTicker(conf.RefreshInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				// 停止当前时间标记
				if tracker := trackerPtr.Swap(nil); tracker != nil {
					tracker.Stop()
				}
				logger.Info("The scheduling task has been stopped.")
				return
			case <-ticker.C:
				logger.Info("Start executing the scheduling task.")

				// 更新节目单数据
				programs, err := xmltv.LoadWithRetry(ctx, source, maxRetries, waitSeconds*time.Second)
				if err != nil {
					logger.Sugar().Errorf("Failed to update listings from %s. Error: %v", source.Location(), err)
					continue
				}
				updateGuide(ctx, programs, conf)

				logger.Info("The scheduling task has been completed.")
			}
		}
	}()
}
