package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"WatchlistScanner/internal/model"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.NormalizeDate(t), true
		}
	}
	return time.Time{}, false
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

type columns struct {
	date, open, high, low, close, volume int
}

// headerColumns maps the named OHLCV columns of a header row. A header
// without a date column keeps its dates in the first column.
func headerColumns(header []string) (columns, bool) {
	cols := columns{date: 0, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date", "datetime", "timestamp":
			cols.date = i
		case "open":
			cols.open = i
		case "high":
			cols.high = i
		case "low":
			cols.low = i
		case "close":
			cols.close = i
		case "volume":
			cols.volume = i
		}
	}
	ok := cols.open >= 0 && cols.high >= 0 && cols.low >= 0 && cols.close >= 0 && cols.volume >= 0
	return cols, ok
}

// ParseCSV reads date, open, high, low, close, volume rows. Rows whose date
// does not parse, whose fields are not numeric or whose prices are not
// positive are dropped and counted. The result is sorted by date with later
// duplicates winning.
func ParseCSV(r io.Reader, symbol string) (model.BarSeries, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.BarSeries{}, 0, fmt.Errorf("%s: %w", symbol, ErrNoData)
		}
		return model.BarSeries{}, 0, fmt.Errorf("%s: read header: %w", symbol, err)
	}
	cols, ok := headerColumns(header)
	if !ok {
		return model.BarSeries{}, 0, fmt.Errorf("%s: header %v lacks open/high/low/close/volume", symbol, header)
	}

	var bars []model.PriceBar
	dropped := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				dropped++
				continue
			}
			return model.BarSeries{}, dropped, fmt.Errorf("%s: read row: %w", symbol, err)
		}
		bar, ok := parseRow(rec, cols)
		if !ok {
			dropped++
			continue
		}
		bars = append(bars, bar)
	}
	return model.BarSeries{Symbol: symbol, Bars: cleanBars(bars)}, dropped, nil
}

func parseRow(rec []string, c columns) (model.PriceBar, bool) {
	need := max(c.date, c.open, c.high, c.low, c.close, c.volume)
	if len(rec) <= need {
		return model.PriceBar{}, false
	}
	date, ok := parseDate(rec[c.date])
	if !ok {
		return model.PriceBar{}, false
	}
	var vals [5]float64
	for i, idx := range []int{c.open, c.high, c.low, c.close, c.volume} {
		v, ok := parseNumber(rec[idx])
		if !ok {
			return model.PriceBar{}, false
		}
		vals[i] = v
	}
	bar := model.PriceBar{
		Date:   date,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: int64(math.Round(vals[4])),
	}
	if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 || bar.Volume < 0 {
		return model.PriceBar{}, false
	}
	return bar, true
}

// cleanBars normalizes dates, sorts and removes duplicate days, keeping the
// last bar seen for a day.
func cleanBars(bars []model.PriceBar) []model.PriceBar {
	for i := range bars {
		bars[i].Date = model.NormalizeDate(bars[i].Date)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// WriteCSV writes a series in the layout ParseCSV reads.
func WriteCSV(w io.Writer, series model.BarSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Open", "High", "Low", "Close", "Volume"}); err != nil {
		return err
	}
	for _, b := range series.Bars {
		rec := []string{
			b.Date.Format("2006-01-02"),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatInt(b.Volume, 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVSource reads <Dir>/<TICKER>.csv files.
type CSVSource struct {
	Dir string
}

func (s *CSVSource) path(ticker string) string {
	return filepath.Join(s.Dir, ticker+".csv")
}

func (s *CSVSource) Load(ctx context.Context, ticker string) (model.BarSeries, error) {
	if err := ctx.Err(); err != nil {
		return model.BarSeries{}, err
	}
	f, err := os.Open(s.path(ticker))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.BarSeries{}, fmt.Errorf("%s: %w", ticker, ErrNoData)
		}
		return model.BarSeries{}, fmt.Errorf("open %s: %w", ticker, err)
	}
	defer f.Close()

	series, dropped, err := ParseCSV(f, ticker)
	if err != nil {
		return model.BarSeries{}, err
	}
	if dropped > 0 {
		log.Debug().Str("ticker", ticker).Int("dropped", dropped).Msg("dropped malformed csv rows")
	}
	if series.Len() == 0 {
		return model.BarSeries{}, fmt.Errorf("%s: %w", ticker, ErrNoData)
	}
	return series, nil
}

// Save writes a series to its ticker file, replacing it atomically.
func (s *CSVSource) Save(series model.BarSeries) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, series.Symbol+".*.tmp")
	if err != nil {
		return fmt.Errorf("save %s: %w", series.Symbol, err)
	}
	defer os.Remove(tmp.Name())
	if err := WriteCSV(tmp, series); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", series.Symbol, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", series.Symbol, err)
	}
	return os.Rename(tmp.Name(), s.path(series.Symbol))
}

// ListTickers returns the ticker of every .csv file in dir, sorted.
func ListTickers(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	var tickers []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		tickers = append(tickers, strings.TrimSuffix(name, filepath.Ext(name)))
	}
	sort.Strings(tickers)
	return tickers, nil
}

// ReadTickerList reads tickers from a list file: the "Ticker" column when
// the header has one, otherwise the first column.
func ReadTickerList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ticker list: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ticker list: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	col, start := 0, 0
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(h), "ticker") {
			col, start = i, 1
			break
		}
	}
	seen := make(map[string]bool)
	var tickers []string
	for _, row := range rows[start:] {
		if len(row) <= col {
			continue
		}
		t := strings.ToUpper(strings.TrimSpace(row[col]))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tickers = append(tickers, t)
	}
	return tickers, nil
}
