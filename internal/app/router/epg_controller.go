package router

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scott012/EPG-Viewer/internal/app/epg"
	"github.com/scott012/EPG-Viewer/internal/app/xmltv"
)

const xmltvGzipFilename = "epg.xml.gz"

// exportPrograms 返回通过校验并匹配q参数的节目
func exportPrograms(c *gin.Context) ([]epg.Program, bool) {
	layout, ok := loadLayout(c)
	if !ok {
		return nil, false
	}
	view := epg.ApplyFilter(*layout, c.Query("q"))
	return view.Programs(), true
}

// GetXmlEPG 返回XMLTV格式的EPG
func GetXmlEPG(c *gin.Context) {
	programs, ok := exportPrograms(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := xmltv.Encode(&buf, programs); err != nil {
		logger.Error("Failed to marshal xml.", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
}

// GetXmlEPGWithGzip 返回gzip压缩的XMLTV格式EPG
func GetXmlEPGWithGzip(c *gin.Context) {
	programs, ok := exportPrograms(c)
	if !ok {
		return
	}

	// 设置HTTP头，通知浏览器这是一个二进制流文件
	c.Header("Content-Type", "application/octet-stream")                                       // 说明是二进制文件
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", xmltvGzipFilename)) // 指定下载文件名
	c.Status(http.StatusOK)

	// 创建一个gzip压缩的Writer，并将XML数据写入其中
	gzipWriter := gzip.NewWriter(c.Writer)
	defer gzipWriter.Close()

	if err := xmltv.Encode(gzipWriter, programs); err != nil {
		logger.Error("Failed to write xml data.", zap.Error(err))
	}
}
