package epg

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedTimestamp = errors.New("malformed xmltv timestamp")
	ErrInvalidDuration    = errors.New("program stop is not after start")
	ErrEmptyChannel       = errors.New("program channel is empty")
	ErrMissingTitle       = errors.New("program title is empty")
	ErrOverlap            = errors.New("program is fully covered by an earlier program")
)

// Diagnostic 被跳过的节目记录
type Diagnostic struct {
	Index   int     // 节目在输入列表中的下标
	Program Program // 原始节目记录
	Err     error   // 跳过原因，可用errors.Is匹配上面的哨兵错误
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("programme #%d (%s on %q): %v", d.Index, d.Program.Title, d.Program.Channel, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}
