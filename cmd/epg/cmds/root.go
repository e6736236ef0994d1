package cmds

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scott012/EPG-Viewer/internal/app/config"
	"github.com/scott012/EPG-Viewer/internal/app/epg"
	"github.com/scott012/EPG-Viewer/internal/app/xmltv"
	"github.com/scott012/EPG-Viewer/internal/pkg/logging"
)

var (
	cfgFile string

	conf *config.Config

	// now 布局时使用的当前时间
	now = time.Now
)

func init() {
	cobra.OnInitialize(initConfig)
}

func NewRootCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "epg",
		Short:         "XMLTV节目单查看工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(NewShowCLI())
	rootCmd.AddCommand(NewServeCLI())
	rootCmd.AddCommand(NewCheckCLI())
	rootCmd.AddCommand(NewExportCLI())
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML配置文件的路径")

	return rootCmd
}

// initConfig 初始化配置文件
func initConfig() {
	var err error
	var fPath string

	if cfgFile != "" {
		// 使用命令参数中的配置文件
		fPath = cfgFile
	} else {
		fPath, err = config.DefaultPath()
		cobra.CheckErr(err)

		// 写入缺省配置文件
		if _, err = os.Stat(fPath); os.IsNotExist(err) {
			err = config.CreateDefaultCfg(fPath)
			cobra.CheckErr(err)
		}
	}

	// 读取配置文件
	conf, err = config.Load(fPath)
	cobra.CheckErr(err)

	// 初始化日志
	cobra.CheckErr(logging.InitLogger(&conf.Log))
}

// prepare 使用命令参数覆盖节目单地址，并校验配置
func prepare(args []string) error {
	if len(args) > 0 {
		conf.Source = args[0]
	}
	return conf.Validate()
}

// loadLayout 读取节目单并完成一次布局
func loadLayout(ctx context.Context) (epg.Layout, []epg.Program, error) {
	source, err := xmltv.NewSource(&http.Client{
		Timeout: conf.HTTP.Timeout,
	}, conf.Source)
	if err != nil {
		return epg.Layout{}, nil, err
	}

	programs, err := source.Load(ctx)
	if err != nil {
		return epg.Layout{}, nil, err
	}

	layout := epg.RecomputeLayout(programs, now(), conf.Location, conf.OverlapPolicy)
	zap.L().Sugar().Infof("Loaded %d programmes from %s, %d skipped.", len(programs), conf.Source, len(layout.Skipped))
	return layout, programs, nil
}
