// Package epub feeds ordered chapter fragments into the epub container
// writer and serializes the result to disk.
package epub

import (
	"fmt"
	"os"
	"strings"

	goepub "github.com/bmaupin/go-epub"

	"github.com/Jezza/wuxia-dl/internal/novel"
)

// Assemble builds the epub book: title, author, then one section per
// chapter in the order given. Chapter order is the caller's contract;
// nothing is reordered here.
func Assemble(title, author string, chapters []novel.ChapterContent) (*goepub.Epub, error) {
	book := goepub.NewEpub(title)
	book.SetAuthor(author)

	total := len(chapters)
	for _, ch := range chapters {
		heading := fmt.Sprintf("Chapter %d", ch.Index)
		body := fmt.Sprintf("<h2>%s</h2>\n%s", heading, ch.HTML)
		filename := fmt.Sprintf("chapter_%d.xhtml", ch.Index)

		if _, err := book.AddSection(body, heading, filename, ""); err != nil {
			return nil, fmt.Errorf("add chapter %d/%d: %w", ch.Index, total, err)
		}
	}

	return book, nil
}

// WriteFile serializes the book to path, deleting any previous file of
// the same name first. Overwrite by replace, deliberately not an
// atomic rename.
func WriteFile(book *goepub.Epub, path string) error {
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove previous file %q: %w", path, err)
		}
	}

	if err := book.Write(path); err != nil {
		return fmt.Errorf("generate epub %q: %w", path, err)
	}

	return nil
}

// OutputName maps a book title to the output file name. Only path
// separators are rewritten; the title is otherwise kept verbatim.
func OutputName(title string) string {
	clean := strings.NewReplacer("/", "_", "\\", "_", "\x00", "").Replace(title)
	return clean + ".epub"
}
