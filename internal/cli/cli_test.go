package cli

import (
    "bytes"
    "encoding/json"
    "errors"
    "os"
    "path/filepath"
    "strings"
    "testing"
)

const testFeed = `
source: cli-test
domains:
  - domain: evil.com
    threatType: malicious
    confidenceLevel: 80
`

func writeFile(t *testing.T, name, content string) string {
    t.Helper()
    path := filepath.Join(t.TempDir(), name)
    if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
        t.Fatal(err)
    }
    return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
    t.Helper()
    t.Setenv("LINKGUARD_CONFIG", "")
    t.Setenv("LINKGUARD_DATABASE_URL", filepath.Join(t.TempDir(), "cli.db"))
    cmd := NewRootCmd()
    var out bytes.Buffer
    cmd.SetOut(&out)
    cmd.SetErr(&bytes.Buffer{})
    cmd.SetIn(strings.NewReader(stdin))
    cmd.SetArgs(args)
    err := cmd.Execute()
    return out.String(), err
}

type line struct {
    URL         string         `json:"url"`
    Status      string         `json:"status"`
    ScanDetails map[string]any `json:"scanDetails"`
}

func decodeLines(t *testing.T, out string) []line {
    t.Helper()
    var lines []line
    for _, l := range strings.Split(strings.TrimSpace(out), "\n") {
        var v line
        if err := json.Unmarshal([]byte(l), &v); err != nil {
            t.Fatalf("bad json line %q: %v", l, err)
        }
        lines = append(lines, v)
    }
    return lines
}

func TestScanJSON(t *testing.T) {
    feed := writeFile(t, "feed.yaml", testFeed)
    out, err := run(t, "", "scan", "--json", "--feed", feed, "https://login.evil.com", "example.org")
    if err != nil {
        t.Fatalf("scan error: %v", err)
    }
    lines := decodeLines(t, out)
    if len(lines) != 2 {
        t.Fatalf("got %d lines: %s", len(lines), out)
    }
    if lines[0].Status != "malicious" || lines[0].ScanDetails["threatLevel"] != float64(80) {
        t.Errorf("first = %+v", lines[0])
    }
    if lines[1].URL != "https://example.org" || lines[1].Status != "safe" {
        t.Errorf("second = %+v", lines[1])
    }
}

func TestScanFromStdinAndFailOn(t *testing.T) {
    input := "# urls\nhttps://example.org\n\nhttp://192.168.1.1\n"
    out, err := run(t, input, "scan", "--json", "--file", "-", "--fail-on", "suspicious")
    if !errors.Is(err, errThreatFound) {
        t.Fatalf("expected errThreatFound, got %v", err)
    }
    if lines := decodeLines(t, out); len(lines) != 2 || lines[1].Status != "suspicious" {
        t.Errorf("lines = %+v", lines)
    }

    if _, err := run(t, "", "scan", "--fail-on", "malicious", "--json", "https://example.org"); err != nil {
        t.Errorf("safe url should pass, got %v", err)
    }
    if _, err := run(t, "", "scan", "--fail-on", "bogus", "https://example.org"); err == nil {
        t.Error("expected error for invalid --fail-on")
    }
}

func TestScanTextOutput(t *testing.T) {
    out, err := run(t, "", "scan", "--no-color", "http://paypal.tk")
    if err != nil {
        t.Fatal(err)
    }
    for _, want := range []string{"[MALICIOUS]", "Brand impersonation with suspicious TLD", "not using HTTPS"} {
        if !strings.Contains(out, want) {
            t.Errorf("output missing %q:\n%s", want, out)
        }
    }
}

func TestScanNoURLs(t *testing.T) {
    if _, err := run(t, "", "scan"); err == nil {
        t.Error("expected error without URLs")
    }
}

func TestThreatsImportAndDBLookup(t *testing.T) {
    feed := writeFile(t, "feed.yaml", testFeed)
    t.Setenv("LINKGUARD_CONFIG", "")
    db := filepath.Join(t.TempDir(), "shared.db")

    for _, args := range [][]string{
        {"migrate"},
        {"threats", "import", feed},
        {"scan", "--json", "--use-db", "https://evil.com"},
    } {
        cmd := NewRootCmd()
        var out bytes.Buffer
        cmd.SetOut(&out)
        cmd.SetErr(&bytes.Buffer{})
        cmd.SetArgs(append([]string{}, args...))
        t.Setenv("LINKGUARD_DATABASE_URL", db)
        if err := cmd.Execute(); err != nil {
            t.Fatalf("%v: %v", args, err)
        }
        if args[0] == "scan" {
            lines := decodeLines(t, out.String())
            if len(lines) != 1 || lines[0].Status != "malicious" {
                t.Errorf("db-backed scan = %+v", lines)
            }
        }
    }
}

func TestVersion(t *testing.T) {
    out, err := run(t, "", "version")
    if err != nil || !strings.Contains(out, Version) {
        t.Errorf("version = %q, %v", out, err)
    }
}
