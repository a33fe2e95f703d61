package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/model"
)

const (
	defaultWorkers     = 4
	defaultPartRetries = 5
)

// ErrUploadFailed means at least one part exhausted its retry budget. The
// progress file is kept so a later run can resume from the confirmed parts.
var ErrUploadFailed = errors.New("upload failed")

// ProgressUpdate is pushed to the OnProgress callback after every confirmed
// part, counting bytes the server has acknowledged rather than bytes sent.
type ProgressUpdate struct {
	LoadedBytes int64
	TotalBytes  int64
	Percentage  float64
}

type Config struct {
	Workers     int
	PartRetries int
}

// Uploader drives a resumable multipart upload against the service: it plans
// byte ranges, claims them from a fixed worker pool, records every confirmed
// part durably and finishes with the two completion calls.
type Uploader struct {
	api     Service
	store   *FileStore
	hc      *http.Client
	workers int
	retries int

	OnProgress func(ProgressUpdate)
}

func New(api Service, store *FileStore, cfg Config) *Uploader {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.PartRetries <= 0 {
		cfg.PartRetries = defaultPartRetries
	}
	return &Uploader{
		api:     api,
		store:   store,
		hc:      &http.Client{Timeout: 10 * time.Minute},
		workers: cfg.Workers,
		retries: cfg.PartRetries,
	}
}

// Run uploads filePath under a freshly created intent ticket, picking simple
// or multipart mode from the server's decision.
func (u *Uploader) Run(ctx context.Context, ticket *IntentTicket, filePath string) error {
	if ticket.Mode == "simple" {
		return u.uploadSimple(ctx, ticket, filePath)
	}
	return u.Upload(ctx, ticket.IntentID, filePath)
}

// Upload runs (or resumes) the multipart upload for the intent. A saved
// progress file wins over a fresh session: parts the server already confirmed
// are credited and never re-sent.
func (u *Uploader) Upload(ctx context.Context, intentID, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", filePath, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", filePath, err)
	}
	size := fi.Size()

	prog, err := u.store.Load(intentID)
	if err != nil {
		return err
	}
	if prog == nil {
		sess, err := u.api.InitMultipart(ctx, intentID, size)
		if err != nil {
			return err
		}
		prog = &Progress{
			IntentID:   intentID,
			UploadID:   sess.UploadID,
			PartSize:   sess.PartSize,
			TotalParts: sess.TotalParts,
			TotalBytes: size,
		}
		if err := u.store.Save(prog); err != nil {
			return err
		}
	}

	var loaded int64
	pending := make([]PartRange, 0, prog.TotalParts)
	for _, r := range PlanRanges(size, prog.PartSize, prog.TotalParts) {
		if prog.Has(r.Number) {
			loaded += r.Size
			continue
		}
		pending = append(pending, r)
	}
	u.report(loaded, size)

	if len(pending) > 0 {
		if err := u.uploadParts(ctx, f, prog, pending, loaded, size); err != nil {
			return err
		}
	}

	sort.Slice(prog.Completed, func(i, j int) bool {
		return prog.Completed[i].PartNumber < prog.Completed[j].PartNumber
	})
	if err := u.api.CompleteMultipart(ctx, intentID, prog.UploadID, prog.Completed); err != nil {
		// a crash between the two completion calls leaves no session row on
		// the server but the object is already assembled. With every part
		// confirmed locally only the intent call is left to redo.
		if !errors.Is(err, ErrSessionGone) || len(prog.Completed) < prog.TotalParts {
			return err
		}
	}
	if err := u.api.CompleteIntent(ctx, intentID); err != nil {
		return err
	}
	return u.store.Remove(intentID)
}

// uploadParts fans the pending ranges out to the worker pool. Cancellation
// stops the feeder, so no new parts are claimed, but parts already in flight
// run to completion and are recorded before the pool drains.
func (u *Uploader) uploadParts(ctx context.Context, f *os.File, prog *Progress, pending []PartRange, loaded, total int64) error {
	var (
		mu       sync.Mutex
		firstErr error
	)

	claims := make(chan PartRange)
	workers := u.workers
	if workers > len(pending) {
		workers = len(pending)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range claims {
				etag, err := u.uploadPart(ctx, f, prog.IntentID, prog.UploadID, r)

				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				prog.Add(model.CompletedPart{PartNumber: r.Number, ETag: etag})
				if serr := u.store.Save(prog); serr != nil && firstErr == nil {
					firstErr = serr
				}
				loaded += r.Size
				done := loaded
				mu.Unlock()

				u.report(done, total)
			}
		}()
	}

feed:
	for _, r := range pending {
		mu.Lock()
		failed := firstErr != nil
		mu.Unlock()
		if failed || ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case claims <- r:
		}
	}
	close(claims)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	if firstErr != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, firstErr)
	}
	return nil
}

// uploadPart sends one range, re-requesting a fresh signed URL on every
// attempt since part URLs are short-lived. The part keeps the parent's values
// but not its cancellation: a claimed part finishes and records even when the
// run is being cancelled.
func (u *Uploader) uploadPart(ctx context.Context, f *os.File, intentID, uploadID string, r PartRange) (string, error) {
	ctx = context.WithoutCancel(ctx)

	var lastErr error
	for attempt := 1; attempt <= u.retries; attempt++ {
		url, err := u.api.SignPart(ctx, intentID, uploadID, r.Number)
		if err != nil {
			lastErr = err
			continue
		}
		etag, err := u.putPart(ctx, url, io.NewSectionReader(f, r.Offset, r.Size), r.Size)
		if err == nil {
			return etag, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("part %d failed after %d attempts: %w", r.Number, u.retries, lastErr)
}

func (u *Uploader) putPart(ctx context.Context, url string, body *io.SectionReader, size int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return "", fmt.Errorf("build part request: %w", err)
	}
	req.ContentLength = size

	resp, err := u.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("part PUT replied %d", resp.StatusCode)
	}
	etag := strings.Trim(resp.Header.Get("ETag"), `"`)
	if etag == "" {
		return "", errors.New("part response carried no ETag")
	}
	return etag, nil
}

// uploadSimple does a single presigned PUT for files under the multipart
// threshold, with the same per-attempt retry budget as one part.
func (u *Uploader) uploadSimple(ctx context.Context, ticket *IntentTicket, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", filePath, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", filePath, err)
	}
	u.report(0, fi.Size())

	var lastErr error
	for attempt := 1; attempt <= u.retries; attempt++ {
		if _, err := u.putPart(ctx, ticket.UploadURL, io.NewSectionReader(f, 0, fi.Size()), fi.Size()); err != nil {
			lastErr = err
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, lastErr)
	}
	u.report(fi.Size(), fi.Size())

	return u.api.CompleteIntent(ctx, ticket.IntentID)
}

func (u *Uploader) report(loaded, total int64) {
	if u.OnProgress == nil {
		return
	}
	pct := 0.0
	if total > 0 {
		pct = float64(loaded) / float64(total) * 100
	}
	u.OnProgress(ProgressUpdate{LoadedBytes: loaded, TotalBytes: total, Percentage: pct})
}
