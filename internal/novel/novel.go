// Package novel holds the domain model shared between the TOC parser,
// the chapter downloader and the epub assembler.
package novel

// ChapterRef identifies one chapter before its content is fetched.
// Index is 1-based and taken verbatim from the site's chapter listing;
// duplicates or gaps are preserved, never renumbered.
type ChapterRef struct {
	Index int
	Title string
	URL   string
}

// Book is the parsed table of contents. Chapters keep document order,
// which on a well-formed site is ascending index order; the downloader
// enforces index order at its join point regardless.
type Book struct {
	Title    string
	Chapters []ChapterRef
}

// ChapterContent is one fetched and extracted chapter. HTML is a
// self-contained, escaped body fragment and is never empty: an empty
// extraction result is an error, not an empty chapter.
type ChapterContent struct {
	Index int
	Title string
	HTML  string
}

// FetchResult is the outcome of a single fetch+extract task.
// Content is only valid when Err is nil; Ref is always set so failed
// results still sort by chapter index. Pos is the chapter's position
// in the TOC document and breaks ties between duplicate indices, so
// equal-index chapters come out in document order.
type FetchResult struct {
	Pos     int
	Ref     ChapterRef
	Content ChapterContent
	Err     error
}
