package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"git.sr.ht/~mariusor/guildcal/storage"
)

func TestLoadConfigDefaults(t *testing.T) {
	conf, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %s", err)
	}
	def := DefaultConfig()
	if conf.Output != "." || conf.SampleSize != def.SampleSize || conf.Timeout != def.Timeout || conf.BaseURL != DefaultBaseURL {
		t.Errorf("unexpected defaults: %+v", conf)
	}
	if conf.Listen != "" || conf.Refresh != "" {
		t.Errorf("serving and refreshing should be disabled by default: %+v", conf)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guildcal.yaml")
	data := `
token: secret
output: /srv/calendars
listen: ":8080"
base_url: https://cal.example.com
sample_size: 3
timeout: 10s
refresh: "@every 6h"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	conf, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %s", err)
	}
	want := DefaultConfig()
	want.Token = "secret"
	want.Output = "/srv/calendars"
	want.Listen = ":8080"
	want.BaseURL = "https://cal.example.com"
	want.SampleSize = 3
	want.Timeout = 10 * time.Second
	want.Refresh = "@every 6h"
	if conf != want {
		t.Errorf("LoadConfig() = %+v, want %+v", conf, want)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("a missing configuration file should be an error")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("timeout: [1, 2"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("an invalid configuration file should be an error")
	}
}

func TestMkDirIfNotExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := MkDirIfNotExists(dir); err != nil {
		t.Fatalf("MkDirIfNotExists() error: %s", err)
	}
	if err := MkDirIfNotExists(dir); err != nil {
		t.Errorf("existing folder: %s", err)
	}
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := MkDirIfNotExists(f); err == nil {
		t.Error("a file is not a valid folder")
	}
}

func TestGuildIDs(t *testing.T) {
	if _, err := guildIDs([]string{"111", "222"}); err != nil {
		t.Errorf("guildIDs() error: %s", err)
	}
	if _, err := guildIDs([]string{"111", "../etc"}); err == nil {
		t.Error("guildIDs() should reject invalid ids")
	}
}

func TestNewPipeline(t *testing.T) {
	conf := DefaultConfig()
	conf.Output = filepath.Join(t.TempDir(), "out")
	conf.Data = filepath.Join(t.TempDir(), "data")

	p, err := newPipeline(conf, nil, logger(false))
	if err != nil {
		t.Fatalf("newPipeline() error: %s", err)
	}
	for _, dir := range []string{conf.Output, conf.Data} {
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			t.Errorf("folder %s was not created: %v", dir, err)
		}
	}
	pubs, err := p.ledger.LoadPublications()
	if err != nil || len(pubs) != 0 {
		t.Errorf("LoadPublications() = %v, %v", pubs, err)
	}
}

func TestPrintPublications(t *testing.T) {
	buf := bytes.Buffer{}
	if err := printPublications(&buf, DefaultBaseURL, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "nothing found\n" {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	pubs := storage.Publications{{CommunityID: "111", Name: "Acme", Entries: 2, Size: 512, Published: time.Now()}}
	if err := printPublications(&buf, "https://cal.example.com", pubs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "[111] Acme: 2 entries, 512B") || !strings.Contains(out, "https://cal.example.com/111") {
		t.Errorf("unexpected output %q", out)
	}
}
