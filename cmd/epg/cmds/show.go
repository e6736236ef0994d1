package cmds

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scott012/EPG-Viewer/internal/app/epg"
	"github.com/scott012/EPG-Viewer/internal/app/tui"
	"github.com/scott012/EPG-Viewer/internal/pkg/logging"
)

func NewShowCLI() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show [source]",
		Short: "在终端中显示节目单网格。",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// 终端界面运行时日志不能输出到控制台
			logCfg := conf.Log
			logCfg.IsStdout = false
			if err := logging.InitLogger(&logCfg); err != nil {
				return err
			}
			logger := zap.L()

			if err := prepare(args); err != nil {
				return err
			}

			layout, _, err := loadLayout(cmd.Context())
			if err != nil {
				return err
			}

			model := tui.New(layout, tui.Options{
				Location:    conf.Location,
				SlotWidth:   conf.SlotWidth,
				NowInterval: conf.NowInterval,
				OnSelect: func(p epg.Program) {
					logger.Debug("Programme selected.", zap.String("title", p.Title), zap.String("channel", p.Channel))
				},
			})

			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	return showCmd
}
