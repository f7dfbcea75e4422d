package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"coinboard/internal/logger"
	"coinboard/internal/model"
	"coinboard/internal/series"
)

// requiredColumns are the header names the input file must carry.
// Ordering in the file does not matter; extra columns are ignored.
var requiredColumns = []string{"Open time", "Open", "High", "Low", "Close", "Volume"}

// timeFormats are tried in order against the Open time column.
var timeFormats = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// LoadFile reads a candlestick history CSV from disk.
func LoadFile(path string) (series.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return series.Frame{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses candlestick bars from r. A row is dropped when its
// timestamp or close cannot be parsed; the remaining numeric fields
// fall back to undefined individually. Only structural problems, an
// unreadable input or a missing required column, are errors. An empty
// frame with a nil error means no row survived; callers decide whether
// that is fatal.
func Load(r io.Reader) (series.Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // short rows are data errors, not structural ones

	header, err := cr.Read()
	if err == io.EOF {
		return series.Frame{}, fmt.Errorf("csv has no header row")
	}
	if err != nil {
		return series.Frame{}, fmt.Errorf("read csv header: %w", err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return series.Frame{}, err
	}

	var bars []model.Bar
	dropped := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return series.Frame{}, fmt.Errorf("read csv row: %w", err)
		}
		b, ok := parseBar(record, idx)
		if !ok {
			dropped++
			continue
		}
		bars = append(bars, b)
	}

	if dropped > 0 {
		logger.Default().WithComponent("loader").WithFields(logger.Fields{
			"kept":    len(bars),
			"dropped": dropped,
		}).Warn("dropped rows with unparsable timestamp or close")
	}
	return series.NewFrame(bars), nil
}

// columns maps each required field to its position in the header.
type columns struct {
	time, open, high, low, close, volume int
}

func columnIndex(header []string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := pos[name]; !ok {
			return columns{}, fmt.Errorf("csv missing required column %q", name)
		}
	}
	return columns{
		time:   pos["Open time"],
		open:   pos["Open"],
		high:   pos["High"],
		low:    pos["Low"],
		close:  pos["Close"],
		volume: pos["Volume"],
	}, nil
}

func parseBar(record []string, idx columns) (model.Bar, bool) {
	ts, ok := parseTime(field(record, idx.time))
	if !ok {
		return model.Bar{}, false
	}
	closeVal, ok := parseValue(field(record, idx.close))
	if !ok {
		return model.Bar{}, false
	}
	return model.Bar{
		Time:   ts,
		Open:   parseOptional(field(record, idx.open)),
		High:   parseOptional(field(record, idx.high)),
		Low:    parseOptional(field(record, idx.low)),
		Close:  closeVal,
		Volume: parseOptional(field(record, idx.volume)),
	}, true
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range timeFormats {
		if ts, err := time.Parse(format, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseValue accepts only finite numbers; a literal NaN in the file is
// as unusable as garbage text.
func parseValue(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseOptional(s string) float64 {
	v, ok := parseValue(s)
	if !ok {
		return math.NaN()
	}
	return v
}
