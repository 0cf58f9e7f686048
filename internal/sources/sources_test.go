package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(n int64) *int64 { return &n }

func TestCleanNumber(t *testing.T) {
	cases := []struct {
		name       string
		in         any
		mult, div  float64
		want       *int64
	}{
		{"nil", nil, 1, 1, nil},
		{"int", 121500, 1, 1, i64(121500)},
		{"float rounds", 121500.6, 1, 1, i64(121501)},
		{"string with separators", "121,500,000", 1, 1, i64(121500000)},
		{"string with unit text", "12.150 k VND", 1, 1, i64(12150)},
		{"string empty after strip", "n/a", 1, 1, nil},
		{"multiplier", "11900", 1000, 1, i64(11900000)},
		{"divisor", 121500000, 1, 10, i64(12150000)},
		{"unsupported type", []string{"x"}, 1, 1, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cleanNumber(tc.in, tc.mult, tc.div))
		})
	}
}

func TestSJC_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[
			{"TypeName":"Vàng SJC 0.5 chỉ, 1 chỉ, 2 chỉ","BranchName":"Hồ Chí Minh","BuyValue":121500000,"SellValue":122500000},
			{"TypeName":"Vàng SJC 0.5 chỉ, 1 chỉ, 2 chỉ","BranchName":"Hà Nội","BuyValue":121500000,"SellValue":122500000},
			{"TypeName":"Vàng không theo dõi","BranchName":"Hồ Chí Minh","BuyValue":11,"SellValue":22},
			{"TypeName":"Vàng nhẫn SJC 99,99% 1 chỉ, 2 chỉ, 5 chỉ","BranchName":"Hồ Chí Minh","Buy":"117,20","Sell":"118,70"}
		]}`))
	}))
	defer srv.Close()

	f := &SJC{Client: srv.Client(), URL: srv.URL}
	entries, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "SJC", entries[0].Source)
	assert.Equal(t, "SJC miếng 0.5-2 chỉ", entries[0].Product)
	assert.Equal(t, int64(12150000), entries[0].Buy)
	assert.Equal(t, int64(12250000), entries[0].Sell)
	assert.Equal(t, UnitVNDPerChi, entries[0].Unit)

	// Legacy Buy/Sell pair scales by 100.
	assert.Equal(t, "SJC nhẫn 9999 1-5 chỉ", entries[1].Product)
	assert.Equal(t, int64(1172000), entries[1].Buy)
}

func TestSJC_ZeroValueFallsBackToLegacyField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"TypeName":"Vàng SJC 0.5 chỉ, 1 chỉ, 2 chỉ","BranchName":"Hồ Chí Minh","BuyValue":0,"Buy":"121,50","SellValue":0,"Sell":null}
		]}`))
	}))
	defer srv.Close()

	f := &SJC{Client: srv.Client(), URL: srv.URL}
	entries, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, int64(1215000), entries[0].Buy)
	assert.Nil(t, entries[0].Sell, "zero primary and empty legacy stays absent")
}

func TestDoji_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<GoldList>
			<DGPlist>
				<Row Name="Nhẫn Tròn 9999 Hưng Thịnh Vượng" Key="nhantron" Sell="11,920" Buy="11,870"/>
				<Row Name="Vàng miếng SJC" Key="sjc" Sell="12,250" Buy="12,150"/>
			</DGPlist>
		</GoldList>`))
	}))
	defer srv.Close()

	f := &Doji{Client: srv.Client(), URL: srv.URL}
	entries, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "Doji", entries[0].Source)
	assert.Equal(t, "Doji nhẫn tròn 9999", entries[0].Product)
	assert.Equal(t, int64(11870000), entries[0].Buy)
	assert.Equal(t, int64(11920000), entries[0].Sell)
}

func TestDoji_MalformedXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<GoldList><Row`))
	}))
	defer srv.Close()

	f := &Doji{Client: srv.Client(), URL: srv.URL}
	_, err := f.Fetch(context.Background())
	assert.Error(t, err)
}

func TestPNJ_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"masp":"N24K","giamua":"11,700","giaban":"11,950"},
			{"masp":"XXX","giamua":"1","giaban":"2"}
		]}`))
	}))
	defer srv.Close()

	f := &PNJ{Client: srv.Client(), URL: srv.URL}
	entries, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "PNJ nhẫn trơn 999.9", entries[0].Product)
	assert.Equal(t, int64(11700000), entries[0].Buy)
	assert.Equal(t, int64(11950000), entries[0].Sell)
}

func TestPhuQuy_Fetch(t *testing.T) {
	page := `<html><body>
		<table id="priceList"><tbody>
			<tr><td>Vàng miếng SJC</td><td>121.500.000</td><td>122.500.000</td></tr>
			<tr><td>Nhẫn tròn Phú Quý 999.9</td><td>117.800.000</td><td>119.300.000</td></tr>
			<tr><td>Nhẫn tròn Phú Quý 999.9</td><td>1</td><td>2</td></tr>
		</tbody></table>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	f := &PhuQuy{Client: srv.Client(), URL: srv.URL}
	entries, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1, "first matching row wins, duplicates ignored")
	assert.Equal(t, "Phú Quý nhẫn tròn 999.9", entries[0].Product)
	assert.Equal(t, int64(117800000), entries[0].Buy)
	assert.Equal(t, int64(119300000), entries[0].Sell)
}

func TestNgocTham_Fetch(t *testing.T) {
	page := `<div id="gold-price-menu"><table class="price-table"><tbody>
		<tr><th>Loại</th><th>Mua</th><th>Bán</th></tr>
		<tr><td>Nhẫn 999.9</td><td>117.500.000 đ</td><td>119.000.000 đ</td></tr>
	</tbody></table></div>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	f := &NgocTham{Client: srv.Client(), URL: srv.URL}
	entries, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Ngọc Thẩm nhẫn 999.9", entries[0].Product)
	assert.Equal(t, int64(117500000), entries[0].Buy)
}

func TestFetchText_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := fetchText(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchText_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := fetchText(context.Background(), srv.Client(), srv.URL)
	assert.Error(t, err)
	assert.Equal(t, int32(maxAttempts), calls.Load())
}

type stubFetcher struct {
	name    string
	entries []Entry
	err     error
}

func (s *stubFetcher) Name() string { return s.name }
func (s *stubFetcher) Fetch(context.Context) ([]Entry, error) {
	return s.entries, s.err
}

func TestManager_FetchAll_PartialFailure(t *testing.T) {
	m := NewManagerWith(
		&stubFetcher{name: "SJC", entries: []Entry{{Source: "SJC", Product: "miếng", Buy: int64(1)}}},
		&stubFetcher{name: "Doji", err: errors.New("connection refused")},
		&stubFetcher{name: "PNJ", entries: []Entry{{Source: "PNJ", Product: "nhẫn", Buy: int64(2)}}},
	)

	entries := m.FetchAll(context.Background())
	require.Len(t, entries, 2)
	// Registration order survives concurrent fetching.
	assert.Equal(t, "SJC", entries[0].Source)
	assert.Equal(t, "PNJ", entries[1].Source)
}

func TestManager_FetchAll_TotalFailure(t *testing.T) {
	m := NewManagerWith(
		&stubFetcher{name: "a", err: errors.New("down")},
		&stubFetcher{name: "b", err: errors.New("down")},
	)
	assert.Empty(t, m.FetchAll(context.Background()))
}
