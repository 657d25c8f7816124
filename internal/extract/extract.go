// Package extract locates the narrative text of a chapter page.
//
// Site markup is inconsistent across chapters, so extraction runs an
// ordered cascade of selector strategies and takes the first one that
// yields any text. Each strategy is a pure function over the document
// and can be probed on its own without affecting the others.
package extract

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Jezza/wuxia-dl/internal/novel"
)

// breakMarker separates paragraphs inside the assembled fragment.
const breakMarker = "<br/><br/>"

// NoContentError means every strategy came up empty for a chapter.
// An empty chapter is never valid output, so the run must not continue
// as if nothing happened.
type NoContentError struct {
	Index int
	Title string
}

func (e *NoContentError) Error() string {
	return fmt.Sprintf("no content found for chapter %d %q", e.Index, e.Title)
}

// Strategy names one way of locating chapter text. Apply returns the
// assembled fragment, or "" when the strategy matches nothing.
type Strategy struct {
	Name  string
	Apply func(doc *goquery.Document) string
}

// Strategies returns the cascade in probe order: most specific layout
// first, loosest last.
func Strategies() []Strategy {
	return []Strategy{
		{Name: "inner-content paragraphs", Apply: selectorText(".inner-content .fr-view p")},
		{Name: "reader-view paragraphs", Apply: selectorText(".fr-view > p")},
		{Name: "reader-view spans", Apply: selectorText(".fr-view span")},
	}
}

func selectorText(selector string) func(doc *goquery.Document) string {
	return func(doc *goquery.Document) string {
		var b strings.Builder
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text == "" {
				// Contributes no content, not even a break marker.
				return
			}
			b.WriteString(html.EscapeString(text))
			b.WriteString(breakMarker)
		})
		return b.String()
	}
}

// Chapter runs the cascade over doc and returns the chapter fragment.
func Chapter(doc *goquery.Document, ref novel.ChapterRef) (novel.ChapterContent, error) {
	for _, strat := range Strategies() {
		if content := strat.Apply(doc); content != "" {
			return novel.ChapterContent{
				Index: ref.Index,
				Title: ref.Title,
				HTML:  content,
			}, nil
		}
	}

	return novel.ChapterContent{}, &NoContentError{Index: ref.Index, Title: ref.Title}
}
