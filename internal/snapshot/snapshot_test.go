package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldpricebot/internal/sources"
)

func i64(n int64) *int64 { return &n }

func TestNormalize_DropsBlankKeys(t *testing.T) {
	entries := []sources.Entry{
		{Source: "  ", Product: "X", Buy: int64(1)},
		{Source: "SJC", Product: "", Buy: int64(1)},
		{Source: "SJC", Product: "miếng", Buy: int64(12150000), Sell: int64(12250000), Unit: "k VND/chỉ"},
	}
	snap := Normalize(entries)
	require.Equal(t, 1, snap.Len())

	q, ok := snap.Get("SJC", "miếng")
	require.True(t, ok)
	assert.Equal(t, i64(12150000), q.Buy)
	assert.Equal(t, i64(12250000), q.Sell)
	require.NotNil(t, q.Unit)
	assert.Equal(t, "k VND/chỉ", *q.Unit)
}

func TestNormalize_DuplicateLastWriteWins(t *testing.T) {
	entries := []sources.Entry{
		{Source: "A", Product: "X", Buy: int64(1)},
		{Source: "A", Product: "X", Buy: int64(2)},
	}
	snap := Normalize(entries)
	require.Equal(t, 1, snap.Len())
	q, _ := snap.Get("A", "X")
	assert.Equal(t, i64(2), q.Buy)
}

func TestNormalize_OrderFollowsFirstAppearance(t *testing.T) {
	entries := []sources.Entry{
		{Source: "B", Product: "p2", Buy: int64(1)},
		{Source: "A", Product: "x", Buy: int64(1)},
		{Source: "B", Product: "p1", Buy: int64(1)},
		{Source: "B", Product: "p2", Buy: int64(9)}, // overwrite, keeps position
	}
	snap := Normalize(entries)
	assert.Equal(t, []string{"B", "A"}, snap.Sources())
	assert.Equal(t, []string{"p2", "p1"}, snap.Products("B"))
}

func TestCoerceInt(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want *int64
	}{
		{"nil", nil, nil},
		{"int passes through", int64(12345), i64(12345)},
		{"float rounds", 12345.6, i64(12346)},
		{"string with noise", "12,345 VND", i64(12345)},
		{"string digits", "00417", i64(417)},
		{"string no digits", "n/a", nil},
		{"empty string", "", nil},
		{"bool", true, nil},
		{"negative", int64(-5), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, coerceInt(tc.in))
		})
	}
}

func TestCoerceInt_Idempotent(t *testing.T) {
	got := coerceInt(int64(121500000))
	require.NotNil(t, got)
	again := coerceInt(*got)
	assert.Equal(t, got, again)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	snap := New()
	unit := "k VND/chỉ"
	snap.Set("SJC", "miếng 0.5-2 chỉ", Quote{Buy: i64(12150000), Sell: i64(12250000), Unit: &unit})
	snap.Set("SJC", "nhẫn 9999", Quote{Buy: i64(11800000), Sell: nil, Unit: &unit})
	snap.Set("Doji", "nhẫn tròn 9999", Quote{Buy: nil, Sell: i64(11900000), Unit: nil})

	data, err := Encode(snap)
	require.NoError(t, err)

	back, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, snap, back)
}

func TestDecode_EmptyAndMalformed(t *testing.T) {
	snap, err := Decode(nil)
	require.NoError(t, err)
	assert.True(t, snap.Empty())

	// Valid JSON, wrong shape: no previous data, not an error.
	snap, err = Decode([]byte(`[1,2,3]`))
	require.NoError(t, err)
	assert.True(t, snap.Empty())

	// Invalid JSON is an error; the storage tier maps it to empty.
	_, err = Decode([]byte(`{"SJC": {`))
	require.Error(t, err)
}

func TestDecode_SanitizesValues(t *testing.T) {
	payload := []byte(`{
		"SJC": {
			"miếng": {"buy": "12,150", "sell": 12250.4, "unit": "k VND/chỉ"},
			"rác": {"buy": true, "sell": null, "unit": 7}
		},
		"hỏng": "not an object"
	}`)
	snap, err := Decode(payload)
	require.NoError(t, err)

	q, ok := snap.Get("SJC", "miếng")
	require.True(t, ok)
	assert.Equal(t, i64(12150), q.Buy)
	assert.Equal(t, i64(12250), q.Sell)

	q, ok = snap.Get("SJC", "rác")
	require.True(t, ok)
	assert.Nil(t, q.Buy)
	assert.Nil(t, q.Sell)
	assert.Nil(t, q.Unit)

	_, ok = snap.Get("hỏng", "x")
	assert.False(t, ok)
	assert.Equal(t, []string{"SJC"}, snap.Sources())
}
