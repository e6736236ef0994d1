package cmds

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scott012/EPG-Viewer/internal/app/epg"
	"github.com/scott012/EPG-Viewer/internal/app/xmltv"
)

const listing = `<tv>
  <programme start="20240101090000 +0000" stop="20240101100000 +0000" channel="b.tv"><title>Evening News</title></programme>
  <programme start="20240101100000 +0000" stop="20240101103000 +0000" channel="a.tv"><title>Weather</title></programme>
  <programme start="20240101090000 +0000" stop="20240101080000 +0000" channel="a.tv"><title>Backwards</title></programme>
</tv>`

// setup 写入配置文件和节目单，并固定当前时间
func setup(t *testing.T) (cfgPath, xmlPath string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "config.yml")
	xmlPath = filepath.Join(dir, "epg.xml")

	if err := os.WriteFile(cfgPath, []byte("source: "+xmlPath+"\ntimezone: UTC\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(xmlPath, []byte(listing), 0o644); err != nil {
		t.Fatal(err)
	}

	now = func() time.Time { return time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC) }
	t.Cleanup(func() {
		now = time.Now
		cfgFile, strict, query, outFile = "", false, "", "epg.xml"
	})
	return cfgPath, xmlPath
}

func TestCheck(t *testing.T) {
	cfgPath, _ := setup(t)

	var out bytes.Buffer
	root := NewRootCLI()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "check"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"Programmes", "2 of 3", "Backwards", epg.ErrInvalidDuration.Error()} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestCheckStrict(t *testing.T) {
	cfgPath, _ := setup(t)

	root := NewRootCLI()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", cfgPath, "check", "--strict"})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "1 programmes were skipped") {
		t.Errorf("err = %v", err)
	}
}

func TestExport(t *testing.T) {
	cfgPath, xmlPath := setup(t)
	out := filepath.Join(t.TempDir(), "news.xml.gz")

	root := NewRootCLI()
	root.SetArgs([]string{"--config", cfgPath, "export", "-o", out, "-q", "NEWS", xmlPath})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	programs, err := xmltv.Parse(zr)
	if err != nil {
		t.Fatal(err)
	}
	if len(programs) != 1 || programs[0].Title != "Evening News" {
		t.Errorf("programs = %+v", programs)
	}
}

// sinkFile 记录写入内容的WriteCloser，可以模拟写入和关闭失败
type sinkFile struct {
	bytes.Buffer
	limit    int // 大于0时，超过limit字节的写入失败
	closeErr error
	closed   bool
}

func (f *sinkFile) Write(p []byte) (int, error) {
	if f.limit > 0 && f.Len()+len(p) > f.limit {
		return 0, errors.New("disk full")
	}
	return f.Buffer.Write(p)
}

func (f *sinkFile) Close() error {
	f.closed = true
	return f.closeErr
}

func TestWriteProgramsReportsCloseErrors(t *testing.T) {
	programs := []epg.Program{
		{Title: "Evening News", Channel: "b.tv", Start: "20240101090000 +0000", Stop: "20240101100000 +0000"},
	}
	closeErr := errors.New("close failed")

	tests := []struct {
		name    string
		gz      bool
		file    *sinkFile
		wantErr bool
	}{
		{"plain", false, &sinkFile{}, false},
		{"gzip", true, &sinkFile{}, false},
		{"plain close error", false, &sinkFile{closeErr: closeErr}, true},
		{"gzip close error", true, &sinkFile{closeErr: closeErr}, true},
		{"gzip footer not written", true, &sinkFile{limit: 12}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := writePrograms(tt.file, tt.gz, programs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("writePrograms() err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.file.closed {
				t.Error("file was not closed")
			}
			if tt.wantErr {
				return
			}

			var r io.Reader = &tt.file.Buffer
			if tt.gz {
				zr, err := gzip.NewReader(r)
				if err != nil {
					t.Fatal(err)
				}
				r = zr
			}
			got, err := xmltv.Parse(r)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 1 || got[0].Title != "Evening News" {
				t.Errorf("programs = %+v", got)
			}
		})
	}
}
