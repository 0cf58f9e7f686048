package sources

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const dojiURL = "http://update.giavang.doji.vn/banggia/doji_92411/92411"

var dojiTargets = map[string]string{
	"nhẫn tròn 9999": "Doji nhẫn tròn 9999",
}

// Doji reads the XML price board feed. Rows sit at varying depths in the
// document, so the decoder walks tokens instead of unmarshalling a shape.
type Doji struct {
	Client *http.Client
	URL    string
}

func (d *Doji) Name() string { return "Doji" }

func (d *Doji) Fetch(ctx context.Context) ([]Entry, error) {
	urlStr := d.URL
	if urlStr == "" {
		urlStr = dojiURL
	}

	body, err := fetchText(ctx, d.Client, urlStr)
	if err != nil {
		return nil, err
	}

	rows, err := dojiRows(body)
	if err != nil {
		return nil, fmt.Errorf("parse doji xml: %w", err)
	}

	var out []Entry
	for _, row := range rows {
		name := strings.ToLower(row.name)
		label := ""
		for needle, l := range dojiTargets {
			if strings.Contains(name, needle) {
				label = l
				break
			}
		}
		if label == "" {
			continue
		}

		// The board quotes in thousands of VND.
		buy := cleanNumber(row.buy, 1000, 1)
		sell := cleanNumber(row.sell, 1000, 1)

		out = append(out, Entry{
			Source:  "Doji",
			Product: label,
			Buy:     numOrNil(buy),
			Sell:    numOrNil(sell),
			Unit:    UnitVNDPerChi,
		})
	}
	return out, nil
}

type dojiRow struct {
	name string
	buy  string
	sell string
}

func dojiRows(body []byte) ([]dojiRow, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	var rows []dojiRow
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Row" {
			continue
		}
		var row dojiRow
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "Name":
				row.name = attr.Value
			case "Buy":
				row.buy = attr.Value
			case "Sell":
				row.sell = attr.Value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
