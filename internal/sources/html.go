package sources

import (
	"html"
	"regexp"
	"strings"
)

// Lightweight table scraping in the same spirit as the Bonbast-style
// regex extraction: find the marker, cut to the end of the table, pull
// cell texts. Fragile by nature, which is why scrape failures are always
// tolerated upstream.
var (
	trRe  = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	tdRe  = regexp.MustCompile(`(?is)<t[dh][^>]*>(.*?)</t[dh]>`)
	tagRe = regexp.MustCompile(`(?s)<[^>]*>`)
)

// tableAfter returns the chunk of doc between the first occurrence of
// marker and the next closing </table>.
func tableAfter(doc, marker string) string {
	idx := strings.Index(doc, marker)
	if idx < 0 {
		return ""
	}
	rest := doc[idx:]
	end := strings.Index(strings.ToLower(rest), "</table>")
	if end < 0 {
		return rest
	}
	return rest[:end]
}

// tableRows extracts the trimmed text of each cell, row by row.
func tableRows(chunk string) [][]string {
	var rows [][]string
	for _, tr := range trRe.FindAllStringSubmatch(chunk, -1) {
		var cells []string
		for _, td := range tdRe.FindAllStringSubmatch(tr[1], -1) {
			cells = append(cells, cellText(td[1]))
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}

func cellText(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
