package xmltv

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scott012/EPG-Viewer/internal/app/epg"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<tv generator-info-name="test">
  <channel id="news.tv"><display-name>News</display-name></channel>
  <programme start="20240101090000 +0000" stop="20240101100000 +0000" channel="news.tv">
    <title lang="en">Evening News</title>
    <title lang="fr">Journal</title>
    <sub-title>Headlines</sub-title>
    <desc lang="en">The day's events.</desc>
  </programme>
  <programme start="20240101100000 +0000" stop="20240101103000 +0000" channel="wx.tv">
    <title>Weather</title>
  </programme>
  <programme start="bad" stop="20240101103000 +0000" channel="">
  </programme>
</tv>`

func TestParse(t *testing.T) {
	programs, err := Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	if len(programs) != 3 {
		t.Fatalf("len(programs) = %d, want 3", len(programs))
	}

	want := epg.Program{
		Title:    "Evening News",
		SubTitle: "Headlines",
		Desc:     "The day's events.",
		Start:    "20240101090000 +0000",
		Stop:     "20240101100000 +0000",
		Channel:  "news.tv",
	}
	if programs[0] != want {
		t.Errorf("programs[0] = %+v, want %+v", programs[0], want)
	}
	if programs[1].Title != "Weather" || programs[1].SubTitle != "" || programs[1].Desc != "" {
		t.Errorf("programs[1] = %+v", programs[1])
	}
	// 错误的节目也要保留，由布局阶段报告
	if programs[2].Title != "" || programs[2].Start != "bad" {
		t.Errorf("programs[2] = %+v", programs[2])
	}
}

func TestParseRejectsNonXMLTV(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"not xml", "{\"tv\": []}"},
		{"wrong root", "<html><body/></html>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.doc)); !errors.Is(err, ErrNotXMLTV) {
				t.Errorf("Parse err = %v, want ErrNotXMLTV", err)
			}
		})
	}
}

func TestEncodeParses(t *testing.T) {
	programs, err := Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, programs[:2]); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "<?xml") {
		t.Errorf("missing xml header: %q", buf.String()[:20])
	}

	again, err := Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 2 || again[0] != programs[0] || again[1] != programs[1] {
		t.Errorf("re-parsed = %+v", again)
	}

	tv := ToTv(programs[:2])
	if len(tv.Channels) != 2 || tv.Channels[0].Id != "news.tv" || tv.Channels[1].Id != "wx.tv" {
		t.Errorf("channels = %+v", tv.Channels)
	}
}

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSourceLoadFile(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "epg.xml")
	zipped := filepath.Join(dir, "epg.xml.gz")
	if err := os.WriteFile(plain, []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(zipped, gzipBytes(t, sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{plain, zipped} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			source, err := NewSource(nil, path)
			if err != nil {
				t.Fatal(err)
			}
			programs, err := source.Load(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if len(programs) != 3 {
				t.Errorf("len(programs) = %d, want 3", len(programs))
			}
		})
	}
}

func TestSourceLoadHTTP(t *testing.T) {
	zipped := gzipBytes(t, sampleDoc)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/epg.xml":
			_, _ = w.Write([]byte(sampleDoc))
		case "/epg.xml.gz":
			_, _ = w.Write(zipped)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	for _, path := range []string{"/epg.xml", "/epg.xml.gz"} {
		source, _ := NewSource(srv.Client(), srv.URL+path)
		programs, err := source.Load(context.Background())
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if len(programs) != 3 {
			t.Errorf("%s: len(programs) = %d, want 3", path, len(programs))
		}
	}

	source, _ := NewSource(srv.Client(), srv.URL+"/missing")
	if _, err := source.Load(context.Background()); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Load missing = %v, want 404 error", err)
	}
}

func TestNewSourceEmpty(t *testing.T) {
	if _, err := NewSource(nil, ""); !errors.Is(err, ErrEmptyLocation) {
		t.Errorf("NewSource(\"\") err = %v", err)
	}
}

func TestLoadWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleDoc))
	}))
	defer srv.Close()

	source, _ := NewSource(srv.Client(), srv.URL)
	programs, err := LoadWithRetry(context.Background(), source, 3, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if len(programs) != 3 || calls.Load() != 3 {
		t.Errorf("programs = %d, calls = %d", len(programs), calls.Load())
	}

	calls.Store(-10)
	if _, err := LoadWithRetry(context.Background(), source, 2, time.Millisecond); err == nil {
		t.Error("LoadWithRetry should fail after exhausting retries")
	}
}

func TestLoadWithRetryLoadsAtLeastOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	source, _ := NewSource(srv.Client(), srv.URL)
	for _, n := range []int{0, -1} {
		calls.Store(0)
		programs, err := LoadWithRetry(context.Background(), source, n, time.Millisecond)
		if err == nil || programs != nil {
			t.Errorf("maxRetries %d: programs = %v, err = %v", n, programs, err)
		}
		if calls.Load() != 1 {
			t.Errorf("maxRetries %d: calls = %d, want 1", n, calls.Load())
		}
	}
}
