package cleantech

import (
	"fmt"
	"io"
	"unicode/utf8"

	"cleantech100-scraper/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	noResultsRowID = "gct-table-no-results"
	videoAttr      = "data-video-iframe"

	// video links at or below this length are empty placeholders
	minVideoLen = 10
)

// ParseList reads the ranking table from the list page. Relative company
// links are prefixed with baseURL.
func ParseList(r io.Reader, baseURL string) ([]models.ListRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse list html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	rows := []models.ListRow{}
	var rowErr error
	table.Find("tbody").First().Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		// last row only says "No results found."
		if id, _ := tr.Attr("id"); id == noResultsRowID {
			return true
		}
		row, err := parseRow(tr, baseURL)
		if err != nil {
			rowErr = fmt.Errorf("table row %d: %w", i, err)
			return false
		}
		rows = append(rows, row)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return rows, nil
}

func parseRow(tr *goquery.Selection, baseURL string) (models.ListRow, error) {
	row := models.ListRow{}
	var cellErr error
	tr.Find("td").EachWithBreak(func(i int, td *goquery.Selection) bool {
		if i >= len(models.ListHeader) {
			cellErr = fmt.Errorf("%w: %d cells, want at most %d", ErrUnexpectedCell, td.Parent().Find("td").Length(), len(models.ListHeader))
			return false
		}
		key := models.ListHeader[i]

		if text, ok := directText(td.Get(0)); ok {
			row[key] = text
			return true
		}

		// Link cells (COMPANY) carry the detail page href.
		if a := td.Find("a").First(); a.Length() > 0 {
			href, ok := a.Attr("href")
			if !ok {
				cellErr = fmt.Errorf("column %s: link has no href", key)
				return false
			}
			row[key] = baseURL + href
			return true
		}

		// Video cells carry the iframe link on a span.
		span := td.Find("span").First()
		if span.Length() == 0 {
			cellErr = fmt.Errorf("column %s: cell has neither text, link nor span", key)
			return false
		}
		video, ok := span.Attr(videoAttr)
		if !ok {
			cellErr = fmt.Errorf("column %s: span has no %s", key, videoAttr)
			return false
		}
		if utf8.RuneCountInString(video) > minVideoLen {
			row[key] = video
		}
		return true
	})
	if cellErr != nil {
		return nil, cellErr
	}
	return row, nil
}

// directText returns the text of a node whose only content is a single
// string, descending through single-child elements.
func directText(n *html.Node) (string, bool) {
	child := n.FirstChild
	if child == nil || child.NextSibling != nil {
		return "", false
	}
	switch child.Type {
	case html.TextNode, html.CommentNode:
		return child.Data, true
	case html.ElementNode:
		return directText(child)
	}
	return "", false
}
