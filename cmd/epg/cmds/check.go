package cmds

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/scott012/EPG-Viewer/internal/app/epg"
)

var strict bool

func NewCheckCLI() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check [source]",
		Short: "检查节目单，列出无法布局的节目。",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := prepare(args); err != nil {
				return err
			}

			layout, programs, err := loadLayout(cmd.Context())
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), layout, len(programs))

			if strict && len(layout.Skipped) > 0 {
				return fmt.Errorf("%d programmes were skipped", len(layout.Skipped))
			}
			return nil
		},
	}

	checkCmd.Flags().BoolVar(&strict, "strict", false, "存在被跳过的节目时返回错误。")

	return checkCmd
}

// printReport 输出布局的统计信息和被跳过的节目
func printReport(w io.Writer, layout epg.Layout, total int) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Origin"), layout.Axis.Origin.Format("2006-01-02 15:04 MST"))
	tbl.AddRow(bold.Sprint("Until"), layout.Axis.End().Format("2006-01-02 15:04 MST"))
	tbl.AddRow(bold.Sprint("Slots"), layout.Axis.SlotCount)
	tbl.AddRow(bold.Sprint("Channels"), len(layout.Channels))
	tbl.AddRow(bold.Sprint("Programmes"), fmt.Sprintf("%d of %d", layout.Len(), total))
	tbl.AddRow(bold.Sprint("Overlaps"), len(layout.Overlaps))
	fmt.Fprintln(w, tbl)

	if len(layout.Skipped) == 0 {
		return
	}

	fmt.Fprintln(w)
	tbl = uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow(bold.Sprint("#"), bold.Sprint("Channel"), bold.Sprint("Title"), bold.Sprint("Start"), bold.Sprint("Stop"), bold.Sprint("Reason"))
	for _, d := range layout.Skipped {
		tbl.AddRow(d.Index, d.Program.Channel, d.Program.Title, d.Program.Start, d.Program.Stop, color.RedString(d.Err.Error()))
	}
	tbl.RightAlign(0)
	fmt.Fprintln(w, tbl)
}
