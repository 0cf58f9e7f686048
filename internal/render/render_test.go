package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldpricebot/internal/diff"
	"goldpricebot/internal/snapshot"
)

func i64(n int64) *int64 { return &n }

func strp(s string) *string { return &s }

var reportTime = time.Date(2026, 1, 9, 16, 40, 5, 0, time.FixedZone("GMT+7", 7*3600))

func TestBuildMessage_HeaderOnly(t *testing.T) {
	msg := BuildMessage(nil, reportTime)
	assert.Equal(t, "Cập nhật giá vàng lúc 09/01/2026 16:40:05 GMT+7:", msg)
}

func TestBuildMessage_Section(t *testing.T) {
	deltas := []diff.Delta{
		{
			Source:  "SJC",
			Product: "SJC miếng 0.5-2 chỉ",
			Current: snapshot.Quote{Buy: i64(12150000), Sell: i64(12250000), Unit: strp("k VND/chỉ")},
			PrevBuy: i64(12100000),
			PrevSell: i64(12250000),
		},
		{
			Source:  "SJC",
			Product: "SJC nhẫn 9999 1-5 chỉ",
			Current: snapshot.Quote{Buy: i64(11720000), Sell: nil, Unit: strp("k VND/chỉ")},
		},
	}

	msg := BuildMessage(deltas, reportTime)

	assert.Contains(t, msg, "SJC (k VND/chỉ)")
	assert.Contains(t, msg, "12.150 (+50)", "risen buy carries a signed suffix in thousands")
	assert.Contains(t, msg, "12.250 (0)", "unchanged sell still shows a zero movement")
	assert.Contains(t, msg, "11.720", "new product shows the value without a suffix")
	assert.NotContains(t, msg, "11.720 (")
	assert.Contains(t, msg, "--", "missing sell renders as a placeholder")
	assert.True(t, strings.Contains(msg, "```"), "sections are fenced code blocks")
}

func TestBuildMessage_FallingPrice(t *testing.T) {
	deltas := []diff.Delta{
		{
			Source:  "Doji",
			Product: "Doji nhẫn tròn 9999",
			Current: snapshot.Quote{Buy: i64(11870000), Sell: i64(11920000)},
			PrevBuy: i64(11900000),
			PrevSell: i64(11920000),
		},
	}

	msg := BuildMessage(deltas, reportTime)
	assert.Contains(t, msg, "(-30)")
}

func TestBuildMessage_OneSectionPerSource(t *testing.T) {
	deltas := []diff.Delta{
		{Source: "SJC", Product: "a", Current: snapshot.Quote{Buy: i64(1000)}},
		{Source: "SJC", Product: "b", Current: snapshot.Quote{Buy: i64(2000)}},
		{Source: "PNJ", Product: "c", Current: snapshot.Quote{Buy: i64(3000)}},
	}

	msg := BuildMessage(deltas, reportTime)
	require.Equal(t, 4, strings.Count(msg, "```"), "two fenced sections")
	assert.Equal(t, 1, strings.Count(msg, "SJC ("))
	assert.Equal(t, 1, strings.Count(msg, "PNJ ("))
}

func TestBuildMessage_ColumnsAlign(t *testing.T) {
	deltas := []diff.Delta{
		{Source: "SJC", Product: "ngắn", Current: snapshot.Quote{Buy: i64(12150000), Sell: i64(12250000)}},
		{Source: "SJC", Product: "một cái tên rất dài", Current: snapshot.Quote{Buy: i64(1000), Sell: i64(2000)}},
	}

	msg := BuildMessage(deltas, reportTime)

	var rows []string
	inFence := false
	for _, line := range strings.Split(msg, "\n") {
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			rows = append(rows, line)
		}
	}
	require.GreaterOrEqual(t, len(rows), 4)

	width := runeLen(rows[1])
	for _, row := range rows[1:] {
		assert.Equal(t, width, runeLen(row), "row %q", row)
	}
}

func runeLen(s string) int { return len([]rune(s)) }
