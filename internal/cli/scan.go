package cli

import (
    "bufio"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "os"
    "strings"

    "github.com/fatih/color"
    "github.com/schollz/progressbar/v3"
    "github.com/spf13/cobra"

    "linkguard/internal/adapters/memory"
    "linkguard/internal/adapters/storage"
    "linkguard/internal/domain"
    "linkguard/internal/ports"
    scansvc "linkguard/internal/services/scanner"
    "linkguard/internal/services/threatintel"
    "linkguard/internal/workers/scanrunner"
)

var errThreatFound = errors.New("threat found")

var (
    green  = color.New(color.FgGreen).SprintFunc()
    yellow = color.New(color.FgYellow).SprintFunc()
    red    = color.New(color.FgRed, color.Bold).SprintFunc()
    grey   = color.New(color.FgHiBlack).SprintFunc()
)

type scanOptions struct {
    file       string
    feed       string
    useDB      bool
    jsonOut    bool
    noColor    bool
    noProgress bool
    workers    int
    failOn     string
}

func newScanCmd(a *app) *cobra.Command {
    opts := &scanOptions{}
    cmd := &cobra.Command{
        Use:   "scan [URL...]",
        Short: "Score one or more URLs",
        Example: `  linkscan scan paypal.com.evil.tk
  linkscan scan --file urls.txt --feed threats.yaml --json`,
        RunE: func(cmd *cobra.Command, args []string) error {
            return runScan(cmd, a, opts, args)
        },
    }
    cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read URLs from FILE, one per line (- for stdin)")
    cmd.Flags().StringVar(&opts.feed, "feed", "", "YAML threat feed for lookups (defaults to threats.feed_path)")
    cmd.Flags().BoolVar(&opts.useDB, "use-db", false, "look threats up in the configured database instead of a feed file")
    cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print results as JSON lines")
    cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
    cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "hide the progress bar in batch mode")
    cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent scans (defaults to scan_workers)")
    cmd.Flags().StringVar(&opts.failOn, "fail-on", "", "exit non-zero when a verdict is at least this severe (suspicious|malicious)")
    return cmd
}

func runScan(cmd *cobra.Command, a *app, opts *scanOptions, args []string) error {
    ctx := cmd.Context()
    if opts.noColor || opts.jsonOut {
        color.NoColor = true
    }
    threshold, err := failThreshold(opts.failOn)
    if err != nil {
        return err
    }

    urls := append([]string(nil), args...)
    if opts.file != "" {
        fromFile, err := readURLs(cmd.InOrStdin(), opts.file)
        if err != nil {
            return err
        }
        urls = append(urls, fromFile...)
    }
    if len(urls) == 0 {
        return errors.New("no URLs given: pass them as arguments or with --file")
    }
    for i, u := range urls {
        urls[i] = scansvc.NormalizeURL(u)
    }

    lookup, closeLookup, err := a.threatLookup(cmd, opts)
    if err != nil {
        return err
    }
    defer closeLookup()

    workers := opts.workers
    if workers <= 0 {
        workers = a.cfg.ScanWorkers
    }

    var bar *progressbar.ProgressBar
    if len(urls) > 1 && !opts.noProgress && !opts.jsonOut {
        bar = progressbar.NewOptions(len(urls),
            progressbar.OptionSetWriter(cmd.ErrOrStderr()),
            progressbar.OptionEnableColorCodes(!color.NoColor),
            progressbar.OptionSetWidth(40),
            progressbar.OptionSetDescription("[cyan]Scanning[reset]"),
            progressbar.OptionClearOnFinish(),
        )
    }

    scorer := scansvc.NewScorer(lookup)
    outcomes := scanrunner.Run(ctx, urls, scorer, workers, func(scanrunner.Outcome) {
        if bar != nil {
            _ = bar.Add(1)
        }
    })
    if bar != nil {
        _ = bar.Finish()
    }

    out := cmd.OutOrStdout()
    worst := 0
    for _, o := range outcomes {
        if err := printOutcome(out, o, opts.jsonOut); err != nil {
            return err
        }
        if r := severity(o.Result.Status); r > worst {
            worst = r
        }
    }
    if threshold > 0 && worst >= threshold {
        return errThreatFound
    }
    return nil
}

// threatLookup picks the lookup source: the database when asked, otherwise
// the feed file (if any) loaded into memory.
func (a *app) threatLookup(cmd *cobra.Command, opts *scanOptions) (ports.ThreatLookup, func(), error) {
    if opts.useDB {
        store, err := storage.Open(cmd.Context(), a.cfg.Database)
        if err != nil {
            return nil, nil, err
        }
        return store, func() { store.Close() }, nil
    }
    feed := opts.feed
    if feed == "" {
        feed = a.cfg.Threats.FeedPath
    }
    list := memory.NewThreatList()
    if feed != "" {
        threats, err := threatintel.LoadFile(feed)
        if err != nil {
            return nil, nil, err
        }
        _, _ = list.Upsert(cmd.Context(), threats)
    }
    return list, func() {}, nil
}

func readURLs(stdin io.Reader, path string) ([]string, error) {
    r := stdin
    if path != "-" {
        f, err := os.Open(path)
        if err != nil {
            return nil, fmt.Errorf("open url list: %w", err)
        }
        defer f.Close()
        r = f
    }
    var urls []string
    sc := bufio.NewScanner(r)
    for sc.Scan() {
        line := strings.TrimSpace(sc.Text())
        if line == "" || strings.HasPrefix(line, "#") {
            continue
        }
        urls = append(urls, line)
    }
    return urls, sc.Err()
}

type jsonOutcome struct {
    URL string `json:"url"`
    domain.ScanResult
}

func printOutcome(w io.Writer, o scanrunner.Outcome, asJSON bool) error {
    if asJSON {
        return json.NewEncoder(w).Encode(jsonOutcome{URL: o.URL, ScanResult: o.Result})
    }
    d := o.Result.ScanDetails
    switch {
    case d.Failure != nil:
        fmt.Fprintf(w, "%s %s\n    %s: %s\n", label(o.Result.Status), o.URL, d.Error, d.ErrorDetails)
    case d.Assessment != nil:
        fmt.Fprintf(w, "%s %s %s\n", label(o.Result.Status), o.URL, grey(fmt.Sprintf("(threat level %d)", d.ThreatLevel)))
        for _, p := range d.DetectedPatterns {
            fmt.Fprintf(w, "    - %s\n", p)
        }
        if d.Checks.ThreatIntelligence != "clean" {
            fmt.Fprintf(w, "    - threat intelligence: %s\n", d.Checks.ThreatIntelligence)
        }
        if !d.Checks.HTTPSEnabled {
            fmt.Fprintf(w, "    - %s\n", grey("not using HTTPS"))
        }
    default:
        fmt.Fprintf(w, "%s %s\n", grey("[skipped]"), o.URL)
    }
    return nil
}

func label(s domain.Status) string {
    tag := fmt.Sprintf("[%s]", strings.ToUpper(string(s)))
    switch s {
    case domain.StatusSafe:
        return green(tag)
    case domain.StatusSuspicious:
        return yellow(tag)
    case domain.StatusMalicious:
        return red(tag)
    default:
        return grey(tag)
    }
}

func severity(s domain.Status) int {
    switch s {
    case domain.StatusSuspicious:
        return 1
    case domain.StatusMalicious:
        return 2
    }
    return 0
}

func failThreshold(v string) (int, error) {
    switch v {
    case "":
        return 0, nil
    case string(domain.StatusSuspicious):
        return 1, nil
    case string(domain.StatusMalicious):
        return 2, nil
    }
    return 0, fmt.Errorf("--fail-on must be suspicious or malicious, got %q", v)
}
