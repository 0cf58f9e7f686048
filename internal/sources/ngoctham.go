package sources

import (
	"context"
	"net/http"
)

const ngocThamURL = "https://ngoctham.com/bang-gia-vang/"

var ngocThamTargets = map[string]string{
	"nhẫn 999.9": "Ngọc Thẩm nhẫn 999.9",
}

// NgocTham scrapes the gold price page table.
type NgocTham struct {
	Client *http.Client
	URL    string
}

func (n *NgocTham) Name() string { return "Ngọc Thẩm" }

func (n *NgocTham) Fetch(ctx context.Context) ([]Entry, error) {
	urlStr := n.URL
	if urlStr == "" {
		urlStr = ngocThamURL
	}

	body, err := fetchText(ctx, n.Client, urlStr)
	if err != nil {
		return nil, err
	}

	return scrapePriceTable(string(body), `id="gold-price-menu"`, "Ngọc Thẩm", ngocThamTargets), nil
}
