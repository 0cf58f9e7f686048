package sources

import (
	"context"
	"net/http"
)

const sjcURL = "https://sjc.com.vn/GoldPrice/Services/PriceService.ashx"

var sjcTargets = map[string]string{
	"Vàng SJC 0.5 chỉ, 1 chỉ, 2 chỉ":              "SJC miếng 0.5-2 chỉ",
	"Vàng nhẫn SJC 99,99% 1 chỉ, 2 chỉ, 5 chỉ":    "SJC nhẫn 9999 1-5 chỉ",
	"Vàng nhẫn SJC 99,99% 0.5 chỉ, 0.3 chỉ":       "SJC nhẫn 9999 0.3-0.5 chỉ",
}

type sjcItem struct {
	TypeName   string `json:"TypeName"`
	BranchName string `json:"BranchName"`
	Buy        any    `json:"Buy"`
	BuyValue   any    `json:"BuyValue"`
	Sell       any    `json:"Sell"`
	SellValue  any    `json:"SellValue"`
}

type sjcPayload struct {
	Data []sjcItem `json:"data"`
}

// SJC reads the price service behind sjc.com.vn. Only the Hồ Chí Minh
// branch rows are kept; other branches repeat the same products.
type SJC struct {
	Client *http.Client
	URL    string
}

func (s *SJC) Name() string { return "SJC" }

func (s *SJC) Fetch(ctx context.Context) ([]Entry, error) {
	urlStr := s.URL
	if urlStr == "" {
		urlStr = sjcURL
	}

	var payload sjcPayload
	if err := fetchJSON(ctx, s.Client, urlStr, &payload); err != nil {
		return nil, err
	}

	var out []Entry
	for _, item := range payload.Data {
		label, ok := sjcTargets[item.TypeName]
		if !ok {
			continue
		}
		if item.BranchName != "Hồ Chí Minh" {
			continue
		}

		// BuyValue/SellValue are in tens of VND; the legacy Buy/Sell pair
		// is in hundreds of thousands. A missing or zero BuyValue means
		// the feed only filled the legacy field for that row.
		buy := cleanNumber(item.BuyValue, 1, 10)
		if buy == nil || *buy == 0 {
			buy = cleanNumber(item.Buy, 100, 1)
		}
		sell := cleanNumber(item.SellValue, 1, 10)
		if sell == nil || *sell == 0 {
			sell = cleanNumber(item.Sell, 100, 1)
		}

		out = append(out, Entry{
			Source:  "SJC",
			Product: label,
			Buy:     numOrNil(buy),
			Sell:    numOrNil(sell),
			Unit:    UnitVNDPerChi,
		})
	}
	return out, nil
}
