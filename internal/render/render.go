// Package render turns diff results into the text report posted to
// chats. Layout is cosmetic; all comparison semantics live in the diff
// package.
package render

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"goldpricebot/internal/diff"
	"goldpricebot/internal/utils"
)

// NoDataMessage is the user-visible outcome when every source failed.
const NoDataMessage = "Lỗi: Không thể lấy được dữ liệu giá vàng từ bất kỳ nguồn nào."

const defaultUnit = "k VND/chỉ"

// BuildMessage renders the full report: a timestamp header followed by
// one aligned table per source, in the order the deltas arrive.
func BuildMessage(deltas []diff.Delta, now time.Time) string {
	header := fmt.Sprintf("Cập nhật giá vàng lúc %s:", utils.ReportTimestamp(now))
	if len(deltas) == 0 {
		return header
	}

	parts := []string{header}
	for _, group := range groupBySource(deltas) {
		parts = append(parts, formatSection(group))
	}
	return strings.Join(parts, "\n\n")
}

// groupBySource splits consecutive runs of the same source. Diff output
// is already contiguous per source, so no re-sorting happens here.
func groupBySource(deltas []diff.Delta) [][]diff.Delta {
	var groups [][]diff.Delta
	for _, d := range deltas {
		n := len(groups)
		if n > 0 && groups[n-1][0].Source == d.Source {
			groups[n-1] = append(groups[n-1], d)
			continue
		}
		groups = append(groups, []diff.Delta{d})
	}
	return groups
}

func formatSection(rows []diff.Delta) string {
	unit := defaultUnit
	if u := rows[0].Current.Unit; u != nil && *u != "" {
		unit = *u
	}

	buyTexts := make([]string, len(rows))
	sellTexts := make([]string, len(rows))
	productWidth := utf8.RuneCountInString("Sản phẩm")
	for i, row := range rows {
		buyTexts[i] = formatValue(row.Current.Buy, row.BuyChange)
		sellTexts[i] = formatValue(row.Current.Sell, row.SellChange)
		if w := utf8.RuneCountInString(row.Product); w > productWidth {
			productWidth = w
		}
	}
	buyWidth := columnWidth("Mua", buyTexts)
	sellWidth := columnWidth("Bán", sellTexts)

	lines := []string{
		fmt.Sprintf("%s (%s)", rows[0].Source, unit),
		padRight("Sản phẩm", productWidth) + "  " + padLeft("Mua", buyWidth) + "  " + padLeft("Bán", sellWidth),
		strings.Repeat("-", productWidth) + "  " + strings.Repeat("-", buyWidth) + "  " + strings.Repeat("-", sellWidth),
	}
	for i, row := range rows {
		lines = append(lines,
			padRight(row.Product, productWidth)+"  "+padLeft(buyTexts[i], buyWidth)+"  "+padLeft(sellTexts[i], sellWidth))
	}

	return "```\n" + strings.Join(lines, "\n") + "\n```"
}

// formatValue shows the current price in thousands, with the signed
// movement appended when a comparable previous value exists. A zero
// movement renders as "(0)" to distinguish "unchanged" from "new".
func formatValue(current *int64, changeFn func() (int64, bool)) string {
	text := formatCurrency(current)
	if current == nil {
		return text
	}
	delta, ok := changeFn()
	if !ok {
		return text
	}
	return text + " (" + formatChange(delta) + ")"
}

func formatCurrency(v *int64) string {
	if v == nil {
		return "--"
	}
	return utils.GroupThousands(utils.RoundThousands(*v))
}

func formatChange(delta int64) string {
	thousands := utils.RoundThousands(delta)
	if thousands == 0 {
		return "0"
	}
	if thousands > 0 {
		return "+" + utils.GroupThousands(thousands)
	}
	return utils.GroupThousands(thousands)
}

func columnWidth(header string, values []string) int {
	w := utf8.RuneCountInString(header)
	for _, v := range values {
		if n := utf8.RuneCountInString(v); n > w {
			w = n
		}
	}
	return w
}

func padRight(s string, width int) string {
	if n := width - utf8.RuneCountInString(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := width - utf8.RuneCountInString(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}
