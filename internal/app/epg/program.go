package epg

// Program 节目单中的一个节目，解析后只读
type Program struct {
	Title    string `json:"title"`              // 标题
	SubTitle string `json:"subTitle,omitempty"` // 副标题
	Desc     string `json:"desc,omitempty"`     // 描述
	Start    string `json:"start"`              // 开始时间，例如：20240101090000 +0000
	Stop     string `json:"stop"`               // 结束时间，格式同上
	Channel  string `json:"channel"`            // 频道Id
}

// validate 校验分组和匹配所需的字段
func (p *Program) validate() error {
	if p.Channel == "" {
		return ErrEmptyChannel
	}
	if p.Title == "" {
		return ErrMissingTitle
	}
	return nil
}
