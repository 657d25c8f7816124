// Package downloader fetches every chapter of a book concurrently and
// joins the results back into strict chapter-index order.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/Jezza/wuxia-dl/internal/extract"
	"github.com/Jezza/wuxia-dl/internal/fetch"
	"github.com/Jezza/wuxia-dl/internal/novel"
	"github.com/Jezza/wuxia-dl/internal/ui"
)

// Progress is the narrow slice of the progress reporter that download
// tasks are allowed to touch. Purely observational; *ui.ProgressHandle
// implements it.
type Progress interface {
	Update(done, total int, bytes int64)
	MarkDone()
}

var _ Progress = (*ui.ProgressHandle)(nil)

type Downloader struct {
	fetcher *fetch.Fetcher
	workers int
	log     *ui.Logger
}

func New(fetcher *fetch.Fetcher, workers int, log *ui.Logger) *Downloader {
	if workers < 1 {
		workers = 1
	}
	return &Downloader{
		fetcher: fetcher,
		workers: workers,
		log:     log,
	}
}

// task pairs a chapter with its position in the TOC document, so the
// join point can keep duplicate indices in document order no matter
// which fetch finishes first.
type task struct {
	pos int
	ref novel.ChapterRef
}

// FetchBook runs one fetch+extract task per chapter on a worker pool.
// Completion order is whatever the network gives us; the sort at the
// join point is what the output ordering rests on: ascending chapter
// index, document position breaking ties.
//
// The run is fail-fast: the first failed chapter cancels the context,
// in-flight tasks drain, and the error for the lowest-index failed
// chapter is returned. No partial chapter list is ever returned
// alongside an error.
func (d *Downloader) FetchBook(ctx context.Context, book novel.Book, ph Progress) ([]novel.ChapterContent, error) {
	total := len(book.Chapters)
	if total == 0 {
		return nil, nil
	}

	workers := d.workers
	if workers > total {
		workers = total
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	results := make([]novel.FetchResult, 0, total)

	var done atomic.Int64
	var bytes atomic.Int64

	jobs := make(chan task)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for t := range jobs {
			content, n, err := d.fetchChapter(ctx, t.ref)
			bytes.Add(n)

			ph.Update(int(done.Add(1)), total, bytes.Load())

			mu.Lock()
			results = append(results, novel.FetchResult{Pos: t.pos, Ref: t.ref, Content: content, Err: err})
			mu.Unlock()

			if err != nil {
				d.log.Debugf("chapter %d failed: %v\n", t.ref.Index, err)
				cancel()
			}
		}
	}

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go worker()
	}

dispatch:
	for pos, ref := range book.Chapters {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- task{pos: pos, ref: ref}:
		}
	}

	close(jobs)
	wg.Wait()
	ph.MarkDone()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Ref.Index != results[j].Ref.Index {
			return results[i].Ref.Index < results[j].Ref.Index
		}
		return results[i].Pos < results[j].Pos
	})

	if err := firstFailure(results); err != nil {
		return nil, err
	}

	if len(results) != total {
		// Cancellation stopped dispatch without any task reporting an
		// error of its own.
		return nil, fmt.Errorf("fetched %d of %d chapters: %w", len(results), total, ctx.Err())
	}

	out := make([]novel.ChapterContent, 0, total)
	for _, r := range results {
		out = append(out, r.Content)
	}

	return out, nil
}

func (d *Downloader) fetchChapter(ctx context.Context, ref novel.ChapterRef) (novel.ChapterContent, int64, error) {
	page, err := d.fetcher.Fetch(ctx, ref.URL)
	if err != nil {
		return novel.ChapterContent{}, 0, fmt.Errorf("chapter %d %q: %w", ref.Index, ref.Title, err)
	}

	content, err := extract.Chapter(page.Doc, ref)
	if err != nil {
		return novel.ChapterContent{}, page.Bytes, fmt.Errorf("chapter %d %q: %w", ref.Index, ref.Title, err)
	}

	return content, page.Bytes, nil
}

// firstFailure picks the error to surface: the lowest-index failure
// that is not a side effect of the fail-fast cancellation, falling
// back to the lowest-index failure of any kind.
func firstFailure(results []novel.FetchResult) error {
	var cancelled error
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		if !errors.Is(r.Err, context.Canceled) {
			return r.Err
		}
		if cancelled == nil {
			cancelled = r.Err
		}
	}
	return cancelled
}
