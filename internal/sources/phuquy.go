package sources

import (
	"context"
	"net/http"
	"strings"
)

const phuQuyURL = "https://phuquygroup.vn/"

var phuQuyTargets = map[string]string{
	"nhẫn tròn phú quý": "Phú Quý nhẫn tròn 999.9",
}

// PhuQuy scrapes the price table on the vendor homepage.
type PhuQuy struct {
	Client *http.Client
	URL    string
}

func (p *PhuQuy) Name() string { return "Phú Quý" }

func (p *PhuQuy) Fetch(ctx context.Context) ([]Entry, error) {
	urlStr := p.URL
	if urlStr == "" {
		urlStr = phuQuyURL
	}

	body, err := fetchText(ctx, p.Client, urlStr)
	if err != nil {
		return nil, err
	}

	return scrapePriceTable(string(body), `id="priceList"`, "Phú Quý", phuQuyTargets), nil
}

// scrapePriceTable walks the rows of the table following marker and emits
// one entry per matched target label. The first matching row wins; later
// duplicates on the same page are ignored.
func scrapePriceTable(doc, marker, source string, targets map[string]string) []Entry {
	chunk := tableAfter(doc, marker)
	if chunk == "" {
		return nil
	}

	var out []Entry
	seen := map[string]bool{}
	for _, cells := range tableRows(chunk) {
		if len(cells) < 3 {
			continue
		}
		key := strings.ToLower(cells[0])

		label := ""
		for needle, l := range targets {
			if strings.Contains(key, needle) {
				label = l
				break
			}
		}
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true

		buy := cleanNumber(cells[1], 1, 1)
		sell := cleanNumber(cells[2], 1, 1)

		out = append(out, Entry{
			Source:  source,
			Product: label,
			Buy:     numOrNil(buy),
			Sell:    numOrNil(sell),
			Unit:    UnitVNDPerChi,
		})
	}
	return out
}
