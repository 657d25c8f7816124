// Package toc extracts the book title and the ordered chapter list
// from a table-of-contents page.
package toc

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Jezza/wuxia-dl/internal/novel"
)

const (
	titleSelector   = ".p-15 h4"
	chapterSelector = ".chapter-item a"
)

var (
	ErrTitleNotFound = errors.New("book title not found")
	ErrMissingLink   = errors.New("chapter link has no href")
)

// TitleFormatError reports a chapter entry whose visible text does not
// start with a chapter number.
type TitleFormatError struct {
	Text string
}

func (e *TitleFormatError) Error() string {
	return fmt.Sprintf("chapter title %q has no leading chapter number", e.Text)
}

// Leading digit run, then any mix of dot/hyphen/space separators, then
// the descriptive title. Anchored so the digit run cannot be split by
// backtracking.
var chapterTitleRe = regexp.MustCompile(`^(\d+)[. -]*(.*)$`)

// SplitTitle decomposes "12. The Awakening" into (12, "The Awakening").
func SplitTitle(full string) (int, string, error) {
	m := chapterTitleRe.FindStringSubmatch(full)
	if m == nil {
		return 0, "", &TitleFormatError{Text: full}
	}

	index, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", &TitleFormatError{Text: full}
	}

	return index, m[2], nil
}

// Parse reads the book title and every chapter anchor from doc.
// Chapter links are resolved against base, the TOC page's final URL.
// Document order is preserved; ordering by index is the downloader's
// job, not ours.
func Parse(doc *goquery.Document, base *url.URL) (novel.Book, error) {
	title := strings.TrimSpace(doc.Find(titleSelector).First().Text())
	if title == "" {
		return novel.Book{}, ErrTitleNotFound
	}

	var chapters []novel.ChapterRef
	var parseErr error

	doc.Find(chapterSelector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		fullTitle := strings.TrimSpace(a.Text())

		index, chapterTitle, err := SplitTitle(fullTitle)
		if err != nil {
			parseErr = err
			return false
		}

		href, ok := a.Attr("href")
		if !ok {
			parseErr = fmt.Errorf("chapter %d %q: %w", index, chapterTitle, ErrMissingLink)
			return false
		}

		ref, err := url.Parse(href)
		if err != nil {
			parseErr = fmt.Errorf("chapter %d %q: resolve link %q: %w", index, chapterTitle, href, err)
			return false
		}

		chapters = append(chapters, novel.ChapterRef{
			Index: index,
			Title: chapterTitle,
			URL:   base.ResolveReference(ref).String(),
		})
		return true
	})

	if parseErr != nil {
		return novel.Book{}, parseErr
	}

	return novel.Book{Title: title, Chapters: chapters}, nil
}
