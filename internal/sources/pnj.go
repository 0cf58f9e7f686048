package sources

import (
	"context"
	"net/http"
)

const pnjURL = "https://edge-api.pnj.io/ecom-frontend/v1/get-gold-price?zone=00"

var pnjTargets = map[string]string{
	"N24K": "PNJ nhẫn trơn 999.9",
	"TL":   "PNJ phúc lộc tài 999.9",
}

type pnjItem struct {
	Code string `json:"masp"`
	Buy  any    `json:"giamua"`
	Sell any    `json:"giaban"`
}

type pnjPayload struct {
	Data []pnjItem `json:"data"`
}

// PNJ reads the retail edge API, matching products by item code.
type PNJ struct {
	Client *http.Client
	URL    string
}

func (p *PNJ) Name() string { return "PNJ" }

func (p *PNJ) Fetch(ctx context.Context) ([]Entry, error) {
	urlStr := p.URL
	if urlStr == "" {
		urlStr = pnjURL
	}

	var payload pnjPayload
	if err := fetchJSON(ctx, p.Client, urlStr, &payload); err != nil {
		return nil, err
	}

	var out []Entry
	for _, item := range payload.Data {
		label, ok := pnjTargets[item.Code]
		if !ok {
			continue
		}

		// PNJ quotes in thousands of VND.
		buy := cleanNumber(item.Buy, 1000, 1)
		sell := cleanNumber(item.Sell, 1000, 1)

		out = append(out, Entry{
			Source:  "PNJ",
			Product: label,
			Buy:     numOrNil(buy),
			Sell:    numOrNil(sell),
			Unit:    UnitVNDPerChi,
		})
	}
	return out, nil
}
