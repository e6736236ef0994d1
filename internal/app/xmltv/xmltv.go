package xmltv

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/scott012/EPG-Viewer/internal/app/epg"
)

const (
	GeneratorInfoName = "epg-viewer"
	GeneratorInfoUrl  = "https://github.com/scott012/EPG-Viewer"

	xmlHeader = "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"
)

var ErrNotXMLTV = errors.New("document is not an xmltv listing")

// Tv XMLTV格式的节目单文档
type Tv struct {
	XMLName           xml.Name    `xml:"tv"`
	SourceInfoUrl     string      `xml:"source-info-url,attr,omitempty"`
	SourceInfoName    string      `xml:"source-info-name,attr,omitempty"`
	SourceDataUrl     string      `xml:"source-data-url,attr,omitempty"`
	GeneratorInfoName string      `xml:"generator-info-name,attr,omitempty"`
	GeneratorInfoUrl  string      `xml:"generator-info-url,attr,omitempty"`
	Channels          []Channel   `xml:"channel,omitempty"`
	Programmes        []Programme `xml:"programme,omitempty"`
}

type Channel struct {
	Id           string `xml:"id,attr"`
	DisplayNames []Text `xml:"display-name"`
}

type Programme struct {
	Start    string `xml:"start,attr"`
	Stop     string `xml:"stop,attr"`
	Channel  string `xml:"channel,attr"`
	Titles   []Text `xml:"title"`
	SubTitle *Text  `xml:"sub-title,omitempty"`
	Desc     *Text  `xml:"desc,omitempty"`
}

// Text 可带语言属性的文本元素
type Text struct {
	Lang  string `xml:"lang,attr,omitempty"`
	Value string `xml:",chardata"`
}

// Parse 解析XMLTV文档，按文档顺序返回节目
//
// 只校验文档本身，单个节目的时间、频道等错误交由布局时处理。
func Parse(r io.Reader) ([]epg.Program, error) {
	var doc Tv
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		var synErr *xml.SyntaxError
		if errors.As(err, &synErr) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %v", ErrNotXMLTV, err)
		}
		// 根元素不是tv时也按格式错误处理
		var unmarshalErr xml.UnmarshalError
		if errors.As(err, &unmarshalErr) {
			return nil, fmt.Errorf("%w: %v", ErrNotXMLTV, err)
		}
		return nil, err
	}

	programs := make([]epg.Program, 0, len(doc.Programmes))
	for _, p := range doc.Programmes {
		program := epg.Program{
			Start:   p.Start,
			Stop:    p.Stop,
			Channel: p.Channel,
		}
		// 有多个语言的标题时取第一个
		if len(p.Titles) > 0 {
			program.Title = p.Titles[0].Value
		}
		if p.SubTitle != nil {
			program.SubTitle = p.SubTitle.Value
		}
		if p.Desc != nil {
			program.Desc = p.Desc.Value
		}
		programs = append(programs, program)
	}
	return programs, nil
}

// ToTv 将节目列表转换为XMLTV文档，频道按Id排序
func ToTv(programs []epg.Program) *Tv {
	seen := make(map[string]struct{})
	programmes := make([]Programme, 0, len(programs))
	for _, program := range programs {
		seen[program.Channel] = struct{}{}

		programme := Programme{
			Start:   program.Start,
			Stop:    program.Stop,
			Channel: program.Channel,
			Titles:  []Text{{Value: program.Title}},
		}
		if program.SubTitle != "" {
			programme.SubTitle = &Text{Value: program.SubTitle}
		}
		if program.Desc != "" {
			programme.Desc = &Text{Value: program.Desc}
		}
		programmes = append(programmes, programme)
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	channels := make([]Channel, 0, len(ids))
	for _, id := range ids {
		channels = append(channels, Channel{
			Id:           id,
			DisplayNames: []Text{{Value: id}},
		})
	}

	return &Tv{
		GeneratorInfoName: GeneratorInfoName,
		GeneratorInfoUrl:  GeneratorInfoUrl,
		Channels:          channels,
		Programmes:        programmes,
	}
}

// Encode 将节目列表以XMLTV格式写入w，包含XML头
func Encode(w io.Writer, programs []epg.Program) error {
	// 将结构体数据转换为XML，并进行格式化
	xmlData, err := xml.MarshalIndent(ToTv(programs), "", "  ")
	if err != nil {
		return err
	}

	// 写入xml头
	if _, err = io.WriteString(w, xmlHeader); err != nil {
		return err
	}
	// 写入xml内容
	if _, err = w.Write(xmlData); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
