package epg

import (
	"fmt"
	"time"
)

const (
	// xmltvLayout XMLTV时间戳的格式，例如：20241122205700 +0800
	xmltvLayout = "20060102150405 -0700"

	// timestampWidth 时间戳的最小长度：14位日期时间 + 1位分隔符 + 1位符号 + 4位时区偏移
	timestampWidth = 20
)

// DecodeTimestamp 解析XMLTV格式的时间戳，并转换到指定的显示时区
//
// 前14位按UTC构造时间，再按偏移量修正：'+'减去偏移，'-'加上偏移。
// 第15位为分隔符，不校验其内容。
func DecodeTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if len(raw) < timestampWidth {
		return time.Time{}, fmt.Errorf("%w: %q is shorter than %d characters", ErrMalformedTimestamp, raw, timestampWidth)
	}

	var fields [8]int
	// 各字段在字符串中的起止位置
	spans := [8][2]int{
		{0, 4}, {4, 6}, {6, 8}, {8, 10}, {10, 12}, {12, 14}, // 年月日时分秒
		{16, 18}, {18, 20}, // 偏移的时和分
	}
	for i, span := range spans {
		n, ok := parseDigits(raw[span[0]:span[1]])
		if !ok {
			return time.Time{}, fmt.Errorf("%w: %q has a non-numeric field at %d", ErrMalformedTimestamp, raw, span[0])
		}
		fields[i] = n
	}

	year, month, day := fields[0], time.Month(fields[1]), fields[2]
	hour, minute, second := fields[3], fields[4], fields[5]
	offsetHour, offsetMinute := fields[6], fields[7]

	t := time.Date(year, month, day, hour, minute, second, 0, time.UTC)
	// time.Date会对越界字段进行归一化，例如13月，这里不允许
	if t.Year() != year || t.Month() != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != second {
		return time.Time{}, fmt.Errorf("%w: %q has an out of range field", ErrMalformedTimestamp, raw)
	}
	// 实际使用中的时区偏移在-12:00到+14:00之间
	if offsetHour > 14 || offsetMinute >= 60 {
		return time.Time{}, fmt.Errorf("%w: %q has an invalid utc offset", ErrMalformedTimestamp, raw)
	}

	offset := time.Duration(offsetHour*60+offsetMinute) * time.Minute
	switch raw[15] {
	case '+':
		t = t.Add(-offset)
	case '-':
		t = t.Add(offset)
	default:
		return time.Time{}, fmt.Errorf("%w: %q has no offset sign", ErrMalformedTimestamp, raw)
	}

	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc), nil
}

// EncodeTimestamp 将时间格式化为XMLTV时间戳，保留时间本身所在的时区偏移
func EncodeTimestamp(t time.Time) string {
	return t.Format(xmltvLayout)
}

// parseDigits 只接受纯数字，不允许符号和空格
func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
