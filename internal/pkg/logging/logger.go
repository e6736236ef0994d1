package logging

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogConfig struct {
	Level        zapcore.Level `json:"level" yaml:"level"`                 // Level 最低日志等级，DEBUG<INFO<WARN<ERROR<FATAL 例如：info-->收集info等级以上的日志
	FileName     string        `json:"fileName" yaml:"fileName"`           // FileName 日志文件位置，为空则不写文件
	MaxSize      int           `json:"maxSize" yaml:"maxSize"`             // MaxSize 进行切割之前，日志文件的最大大小(MB为单位)，默认为100MB
	MaxAge       int           `json:"maxAge" yaml:"maxAge"`               // MaxAge 保留旧日志文件的最大天数
	MaxBackups   int           `json:"maxBackups" yaml:"maxBackups"`       // MaxBackups 保留旧日志文件的最大数量
	IsStdout     bool          `json:"isStdout" yaml:"isStdout"`           // IsStdout 是否输出到控制台
	IsStackTrace bool          `json:"isStackTrace" yaml:"isStackTrace"` // IsStackTrace 是否输出堆栈信息
}

// InitLogger 初始化Logger，并替换zap的全局Logger
func InitLogger(lCfg *LogConfig) (err error) {
	logger := NewLogger(lCfg)
	zap.ReplaceGlobals(logger)
	return
}

// NewLogger 按配置创建Logger
func NewLogger(lCfg *LogConfig) *zap.Logger {
	if lCfg == nil {
		lCfg = &LogConfig{Level: zapcore.InfoLevel, IsStdout: true}
	}

	writeSyncer := getLogWriter(lCfg.FileName, lCfg.MaxSize, lCfg.MaxBackups, lCfg.MaxAge, lCfg.IsStdout)
	encoder := getEncoder()

	core := zapcore.NewCore(encoder, writeSyncer, lCfg.Level)
	if lCfg.IsStackTrace {
		return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	}
	return zap.New(core, zap.AddCaller())
}

// getEncoder 负责设置 encoding 的日志格式
func getEncoder() zapcore.Encoder {
	encodeConfig := zap.NewProductionEncoderConfig()
	encodeConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
	}
	encodeConfig.TimeKey = "time"
	encodeConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encodeConfig.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewJSONEncoder(encodeConfig)
}

// getLogWriter 负责日志写入的位置
func getLogWriter(filename string, maxsize, maxBackup, maxAge int, isStdout bool) zapcore.WriteSyncer {
	syncers := make([]zapcore.WriteSyncer, 0, 2)
	if filename != "" {
		syncers = append(syncers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   filename,  // 文件位置
			MaxSize:    maxsize,   // 进行切割之前,日志文件的最大大小(MB为单位)
			MaxAge:     maxAge,    // 保留旧文件的最大天数
			MaxBackups: maxBackup, // 保留旧文件的最大个数
			Compress:   true,      // 是否压缩/归档旧文件
		}))
	}
	if isStdout {
		syncers = append(syncers, zapcore.AddSync(os.Stdout))
	}

	switch len(syncers) {
	case 0:
		// 终端界面运行时既不写文件也不输出到控制台
		return zapcore.AddSync(io.Discard)
	case 1:
		return syncers[0]
	default:
		return zapcore.NewMultiWriteSyncer(syncers...)
	}
}
