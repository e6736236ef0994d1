package cmds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scott012/EPG-Viewer/internal/app/router"
)

var httpConfig HttpConfig

type HttpConfig struct {
	Port     int           `json:"port"`
	Interval time.Duration `json:"interval"`
}

func NewServeCLI() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve [source]",
		Short: "启动HTTP服务，提供节目单布局、当前时间标记、XMLTV导出等查询接口。",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.L()

			// 命令参数优先于配置文件
			if cmd.Flags().Changed("port") || conf.HTTP.Port == 0 {
				conf.HTTP.Port = httpConfig.Port
			}
			if cmd.Flags().Changed("interval") || conf.RefreshInterval == 0 {
				conf.RefreshInterval = httpConfig.Interval
			}

			// 检查自动更新间隔不能太短
			if conf.RefreshInterval < 15*time.Minute {
				return errors.New("interval cannot be less than 15 minutes")
			}

			if err := prepare(args); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// 创建并启动HTTP服务
			r, err := router.NewEngine(ctx, conf)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:    fmt.Sprintf(":%d", conf.HTTP.Port),
				Handler: r,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Error("Failed to shut down the HTTP server.", zap.Error(err))
				}
			}()

			logger.Sugar().Infof("The HTTP server is listening on %s.", srv.Addr)
			if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			return nil
		},
	}

	serveCmd.Flags().IntVarP(&httpConfig.Port, "port", "p", 8080, "HTTP服务的监听端口。")
	serveCmd.Flags().DurationVarP(&httpConfig.Interval, "interval", "i", 24*time.Hour, "自动刷新节目单的间隔时间，e.g `24h或15m`。")

	return serveCmd
}
