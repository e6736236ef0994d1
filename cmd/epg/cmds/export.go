package cmds

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scott012/EPG-Viewer/internal/app/epg"
	"github.com/scott012/EPG-Viewer/internal/app/xmltv"
)

var (
	outFile string
	query   string
)

func NewExportCLI() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export [source]",
		Short: "导出可以正常布局的节目为XMLTV文件，可按标题过滤。",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.L()

			if err := prepare(args); err != nil {
				return err
			}

			layout, _, err := loadLayout(cmd.Context())
			if err != nil {
				return err
			}

			view := epg.ApplyFilter(layout, query)
			programs := view.Programs()

			// 创建导出文件
			file, err := os.Create(outFile)
			if err != nil {
				logger.Error("Failed to create a file.", zap.Error(err))
				return err
			}

			// 将结果写入文件
			if err = writePrograms(file, strings.HasSuffix(outFile, ".gz"), programs); err != nil {
				logger.Error("Failed to write to file.", zap.Error(err))
				return err
			}

			logger.Sugar().Infof("A total of %d programmes have been written to the file %s.", len(programs), outFile)
			return nil
		},
	}

	exportCmd.Flags().StringVarP(&outFile, "output", "o", "epg.xml", "导出的文件路径，以.gz结尾时进行gzip压缩。")
	exportCmd.Flags().StringVarP(&query, "query", "q", "", "按标题过滤节目，不区分大小写。")

	return exportCmd
}

// writePrograms 写入XMLTV文档并关闭wc，gz为true时先进行gzip压缩
func writePrograms(wc io.WriteCloser, gz bool, programs []epg.Program) error {
	if !gz {
		if err := xmltv.Encode(wc, programs); err != nil {
			_ = wc.Close()
			return err
		}
		return wc.Close()
	}

	gzipWriter := gzip.NewWriter(wc)
	if err := xmltv.Encode(gzipWriter, programs); err != nil {
		_ = gzipWriter.Close()
		_ = wc.Close()
		return err
	}
	// gzip的尾部在Close时写入
	if err := gzipWriter.Close(); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}
