package toc_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jezza/wuxia-dl/internal/toc"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestSplitTitle(t *testing.T) {
	tests := []struct {
		in    string
		index int
		title string
	}{
		{"12. The Awakening", 12, "The Awakening"},
		{"7-Return", 7, "Return"},
		{"3 Beginnings", 3, "Beginnings"},
		{"101 - A Long Way Home", 101, "A Long Way Home"},
		{"42", 42, ""},
	}

	for _, tt := range tests {
		index, title, err := toc.SplitTitle(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.index, index, tt.in)
		assert.Equal(t, tt.title, title, tt.in)
	}
}

func TestSplitTitle_NoLeadingNumber(t *testing.T) {
	_, _, err := toc.SplitTitle("Foreword")
	require.Error(t, err)

	var formatErr *toc.TitleFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "Foreword", formatErr.Text)
}

func TestParse(t *testing.T) {
	d := doc(t, `
	<html><body>
	  <div class="p-15"><h4> Against the Heavens </h4></div>
	  <ul>
	    <li class="chapter-item"><a href="/novel/ath/chapter-1">1. Cursed Origins</a></li>
	    <li class="chapter-item"><a href="/novel/ath/chapter-2">2-Profound Veins</a></li>
	    <li class="chapter-item"><a href="https://other.example.com/ch3">3. Elsewhere</a></li>
	  </ul>
	</body></html>`)

	base := mustURL(t, "https://www.example.com/novel/ath")

	book, err := toc.Parse(d, base)
	require.NoError(t, err)

	assert.Equal(t, "Against the Heavens", book.Title)
	require.Len(t, book.Chapters, 3)

	assert.Equal(t, 1, book.Chapters[0].Index)
	assert.Equal(t, "Cursed Origins", book.Chapters[0].Title)
	assert.Equal(t, "https://www.example.com/novel/ath/chapter-1", book.Chapters[0].URL)

	assert.Equal(t, 2, book.Chapters[1].Index)
	assert.Equal(t, "Profound Veins", book.Chapters[1].Title)

	// Absolute hrefs pass through untouched.
	assert.Equal(t, "https://other.example.com/ch3", book.Chapters[2].URL)
}

func TestParse_TitleNotFound(t *testing.T) {
	d := doc(t, `<html><body><h4>No container class</h4></body></html>`)

	_, err := toc.Parse(d, mustURL(t, "https://www.example.com/"))
	require.ErrorIs(t, err, toc.ErrTitleNotFound)
}

func TestParse_MissingHref(t *testing.T) {
	d := doc(t, `
	<html><body>
	  <div class="p-15"><h4>Book</h4></div>
	  <li class="chapter-item"><a>5. No Link</a></li>
	</body></html>`)

	_, err := toc.Parse(d, mustURL(t, "https://www.example.com/"))
	require.ErrorIs(t, err, toc.ErrMissingLink)
	assert.Contains(t, err.Error(), "chapter 5")
}

func TestParse_BadChapterTitle(t *testing.T) {
	d := doc(t, `
	<html><body>
	  <div class="p-15"><h4>Book</h4></div>
	  <li class="chapter-item"><a href="/ch">Prologue</a></li>
	</body></html>`)

	_, err := toc.Parse(d, mustURL(t, "https://www.example.com/"))

	var formatErr *toc.TitleFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "Prologue", formatErr.Text)
}

// Indices are opaque: duplicates and gaps parse fine and keep document
// order. Ordering by index is the downloader's job.
func TestParse_DuplicateAndGapIndices(t *testing.T) {
	d := doc(t, `
	<html><body>
	  <div class="p-15"><h4>Book</h4></div>
	  <li class="chapter-item"><a href="/a">2. First Copy</a></li>
	  <li class="chapter-item"><a href="/b">2. Second Copy</a></li>
	  <li class="chapter-item"><a href="/c">9. After the Gap</a></li>
	</body></html>`)

	book, err := toc.Parse(d, mustURL(t, "https://www.example.com/"))
	require.NoError(t, err)

	require.Len(t, book.Chapters, 3)
	assert.Equal(t, []int{2, 2, 9}, []int{
		book.Chapters[0].Index,
		book.Chapters[1].Index,
		book.Chapters[2].Index,
	})
	assert.Equal(t, "First Copy", book.Chapters[0].Title)
	assert.Equal(t, "Second Copy", book.Chapters[1].Title)
}
