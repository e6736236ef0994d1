package xmltv

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scott012/EPG-Viewer/internal/app/epg"
)

var ErrEmptyLocation = errors.New("listing location is empty")

// gzipMagic gzip文件头
var gzipMagic = []byte{0x1f, 0x8b}

// Source 节目单来源，可以是HTTP地址或者本地文件
type Source struct {
	httpClient *http.Client // HTTP客户端
	location   string       // 节目单地址或文件路径
}

func NewSource(httpClient *http.Client, location string) (*Source, error) {
	if location == "" {
		return nil, ErrEmptyLocation
	}

	s := Source{
		httpClient: httpClient,
		location:   location,
	}
	if s.httpClient == nil {
		s.httpClient = http.DefaultClient
	}
	return &s, nil
}

// Location 返回节目单地址
func (s *Source) Location() string {
	return s.location
}

// Load 读取并解析节目单
func (s *Source) Load(ctx context.Context) ([]epg.Program, error) {
	var body io.ReadCloser
	var err error
	if isRemote(s.location) {
		body, err = s.fetch(ctx)
	} else {
		body, err = os.Open(s.location)
	}
	if err != nil {
		return nil, err
	}
	defer body.Close()

	r, err := maybeGunzip(body)
	if err != nil {
		return nil, err
	}
	return Parse(r)
}

// fetch 请求远程节目单
func (s *Source) fetch(ctx context.Context) (io.ReadCloser, error) {
	// 创建请求
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/xml,text/xml;q=0.9,application/gzip;q=0.8,*/*;q=0.5")

	// 执行请求
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("http status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// maybeGunzip 根据文件头判断是否需要解压
func maybeGunzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if bytes.Equal(head, gzipMagic) {
		return gzip.NewReader(br)
	}
	return br, nil
}

func isRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// LoadWithRetry 读取节目单（失败重试），maxRetries小于1时按1处理
func LoadWithRetry(ctx context.Context, source *Source, maxRetries int, wait time.Duration) ([]epg.Program, error) {
	logger := zap.L()

	// 至少读取一次
	if maxRetries < 1 {
		maxRetries = 1
	}

	var err error
	var programs []epg.Program
	for i := 0; i < maxRetries; i++ {
		if programs, err = source.Load(ctx); err == nil {
			return programs, nil
		}
		if i == maxRetries-1 {
			break
		}

		logger.Sugar().Errorf("Failed to load listings, will try again after waiting %s. Error: %v, number of retries: %d.", wait, err, i)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, err
}
