package verify

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// summarizeMarkup produces a one-line DOM summary for the failure log so the
// shape of the page is visible before anyone opens the full dump
func summarizeMarkup(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	return fmt.Sprintf("title=%q elements=%d forms=%d inputs=%d links=%d",
		title,
		doc.Find("*").Length(),
		doc.Find("form").Length(),
		doc.Find("input").Length(),
		doc.Find("a").Length())
}

// markupDigest converts the dumped markup to markdown, giving the failure log
// a readable rendition of what the page actually displayed
func markupDigest(html string) string {
	if html == "" {
		return ""
	}

	converter := md.NewConverter("", true, nil)
	digest, err := converter.ConvertString(html)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(digest)
}
