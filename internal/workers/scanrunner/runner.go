package scanrunner

import (
    "context"
    "sync"

    "linkguard/internal/domain"
)

// Processor scores one URL.
type Processor interface {
    Score(ctx context.Context, rawurl string) domain.ScanResult
}

type Job struct {
    Index int
    URL   string
}

type Outcome struct {
    Index  int
    URL    string
    Result domain.ScanResult
}

// Run scores urls with up to concurrency workers and returns the outcomes in
// input order. onDone, if set, is called once per finished URL from the
// collecting goroutine. URLs not started before ctx is cancelled are left
// with a zero Result.
func Run(ctx context.Context, urls []string, processor Processor, concurrency int, onDone func(Outcome)) []Outcome {
    if concurrency < 1 { concurrency = 1 }
    out := make([]Outcome, len(urls))
    for i, u := range urls {
        out[i] = Outcome{Index: i, URL: u}
    }

    jobsCh := make(chan Job, concurrency)
    resultsCh := make(chan Outcome, concurrency)

    // dispatcher
    go func() {
        defer close(jobsCh)
        for i, u := range urls {
            select {
            case <-ctx.Done():
                return
            case jobsCh <- Job{Index: i, URL: u}:
            }
        }
    }()

    // workers
    var wg sync.WaitGroup
    for i := 0; i < concurrency; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            for job := range jobsCh {
                resultsCh <- Outcome{Index: job.Index, URL: job.URL, Result: processor.Score(ctx, job.URL)}
            }
        }()
    }
    go func() {
        wg.Wait()
        close(resultsCh)
    }()

    for o := range resultsCh {
        out[o.Index] = o
        if onDone != nil { onDone(o) }
    }
    return out
}
