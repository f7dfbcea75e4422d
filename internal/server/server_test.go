package server

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"coinboard/internal/config"
	"coinboard/internal/loader"
	"coinboard/internal/logger"
)

const testCSV = `Open time,Open,High,Low,Close,Volume
2021-01-01 00:00:00,100,110,90,100,10
2021-01-02 00:00:00,100,112,95,104,20
2021-02-01 00:00:00,104,120,100,110,30
2021-02-02 00:00:00,110,125,105,121,40
2022-01-01 00:00:00,121,130,110,126,50
2022-01-02 00:00:00,126,140,120,133,60
`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return routerForDataset(t, path)
}

func routerForDataset(t *testing.T, csvPath string) *gin.Engine {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Address = ":0"
	cfg.Server.RateLimit = 1000
	cfg.Server.RateBurst = 1000
	cfg.Data.CSVPath = csvPath
	cfg.Data.Asset = "Ethereum"
	cfg.Resources.History = 4
	cfg.Resources.IntervalSeconds = 1

	srv := New(cfg, discardLogger(), loader.NewCache())
	router, err := srv.buildRouter()
	if err != nil {
		t.Fatalf("buildRouter returned error: %v", err)
	}
	return router
}

func get(t *testing.T, router *gin.Engine, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func decode(t *testing.T, res *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(res.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", res.Body.String(), err)
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func discardLogger() *logger.Log {
	log := logger.New()
	log.SetOutput(io.Discard)
	return log
}

func TestNormalizeAddress(t *testing.T) {
	cases := map[string]string{
		"":                               "0.0.0.0:8080",
		"  :9090  ":                      "0.0.0.0:9090",
		"localhost":                      "localhost:8080",
		"0.0.0.0:80":                     "0.0.0.0:80",
		"[::1]:443":                      "[::1]:443",
		"::1":                            "[::1]:8080",
		"*:8080":                         "0.0.0.0:8080",
		"http://10.0.0.7:8080":           "10.0.0.7:8080",
		"http://:7070":                   "0.0.0.0:7070",
		"https://dashboard.example.com/": "dashboard.example.com:8080",
	}

	for input, want := range cases {
		if got := normalizeAddress(input); got != want {
			t.Fatalf("normalizeAddress(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	res := get(t, router, "/healthz")
	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	var body struct {
		Status string `json:"status"`
	}
	decode(t, res, &body)
	if body.Status != "ok" {
		t.Fatalf("status = %q, want ok", body.Status)
	}
}

func TestIndexRendersAssetName(t *testing.T) {
	router := newTestRouter(t)

	res := get(t, router, "/")
	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	if ct := res.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q, want text/html", ct)
	}
	if !strings.Contains(res.Body.String(), "Ethereum dashboard") {
		t.Fatal("page does not mention the configured asset")
	}
}

func TestMetaEndpoint(t *testing.T) {
	router := newTestRouter(t)

	res := get(t, router, "/api/meta")
	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	var meta struct {
		Asset string    `json:"asset"`
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
		Rows  int       `json:"rows"`
		Years []int     `json:"years"`
	}
	decode(t, res, &meta)
	if meta.Asset != "Ethereum" {
		t.Fatalf("asset = %q, want Ethereum", meta.Asset)
	}
	if meta.Rows != 6 {
		t.Fatalf("rows = %d, want 6", meta.Rows)
	}
	if !meta.Start.Equal(time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", meta.Start)
	}
	if !meta.End.Equal(time.Date(2022, time.January, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %v", meta.End)
	}
	if len(meta.Years) != 2 || meta.Years[0] != 2021 || meta.Years[1] != 2022 {
		t.Fatalf("years = %v, want [2021 2022]", meta.Years)
	}
}

func TestEvolutionEndpointDefaults(t *testing.T) {
	router := newTestRouter(t)

	res := get(t, router, "/api/evolution")
	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	var view struct {
		Metric string `json:"metric"`
		Period string `json:"period"`
		Points []struct {
			Time      time.Time `json:"time"`
			Value     float64   `json:"value"`
			Direction string    `json:"direction"`
		} `json:"points"`
		Summary struct {
			First     float64 `json:"first"`
			Last      float64 `json:"last"`
			ChangePct float64 `json:"change_pct"`
		} `json:"summary"`
	}
	decode(t, res, &view)

	if view.Metric != "close" || view.Period != "month" {
		t.Fatalf("defaults = %s/%s, want close/month", view.Metric, view.Period)
	}
	if len(view.Points) != 3 {
		t.Fatalf("expected 3 monthly points, got %d", len(view.Points))
	}
	wantValues := []float64{104, 121, 133}
	wantDirs := []string{"flat", "up", "up"}
	for i, p := range view.Points {
		if !almostEqual(p.Value, wantValues[i]) {
			t.Fatalf("point %d value = %v, want %v", i, p.Value, wantValues[i])
		}
		if p.Direction != wantDirs[i] {
			t.Fatalf("point %d direction = %q, want %q", i, p.Direction, wantDirs[i])
		}
	}
	if !almostEqual(view.Summary.First, 104) || !almostEqual(view.Summary.Last, 133) {
		t.Fatalf("summary endpoints = %v/%v, want 104/133", view.Summary.First, view.Summary.Last)
	}
	if !almostEqual(view.Summary.ChangePct, (133-104)/104.0*100) {
		t.Fatalf("summary change = %v", view.Summary.ChangePct)
	}
}

func TestEvolutionEndpointVolumeSums(t *testing.T) {
	router := newTestRouter(t)

	res := get(t, router, "/api/evolution?metric=volume&period=month")
	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	var view struct {
		Points []struct {
			Value float64 `json:"value"`
		} `json:"points"`
	}
	decode(t, res, &view)
	want := []float64{30, 70, 110}
	if len(view.Points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(view.Points))
	}
	for i, p := range view.Points {
		if !almostEqual(p.Value, want[i]) {
			t.Fatalf("month %d volume = %v, want %v", i, p.Value, want[i])
		}
	}
}

func TestEvolutionEndpointRangeFilter(t *testing.T) {
	router := newTestRouter(t)

	res := get(t, router, "/api/evolution?start=2021-01-01&end=2021-02-02")
	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	var view struct {
		Points []struct {
			Value float64 `json:"value"`
		} `json:"points"`
	}
	decode(t, res, &view)
	// The end date is inclusive, so February keeps both bars.
	want := []float64{104, 121}
	if len(view.Points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(view.Points))
	}
	for i, p := range view.Points {
		if !almostEqual(p.Value, want[i]) {
			t.Fatalf("month %d close = %v, want %v", i, p.Value, want[i])
		}
	}
}

func TestEvolutionEndpointRejectsBadParams(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{
		"/api/evolution?metric=turnover",
		"/api/evolution?period=week",
		"/api/evolution?start=01/02/2021",
		"/api/evolution?end=yesterday",
	} {
		if res := get(t, router, target); res.Code != http.StatusBadRequest {
			t.Fatalf("GET %s status = %d, want 400", target, res.Code)
		}
	}
}

func TestEvolutionEndpointEmptySelection(t *testing.T) {
	router := newTestRouter(t)

	res := get(t, router, "/api/evolution?start=2023-01-01")
	if res.Code != http.StatusNotFound {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	decode(t, res, &body)
	if body.Error == "" {
		t.Fatal("expected an error message")
	}
}

func TestCandlesEndpointExplicitYear(t *testing.T) {
	router := newTestRouter(t)

	res := get(t, router, "/api/candles?year=2021")
	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	var view struct {
		Year    int `json:"year"`
		Candles []struct {
			Open   float64 `json:"open"`
			Close  float64 `json:"close"`
			Volume float64 `json:"volume"`
		} `json:"candles"`
		Summary struct {
			First     float64 `json:"first"`
			Last      float64 `json:"last"`
			ChangePct float64 `json:"change_pct"`
		} `json:"summary"`
	}
	decode(t, res, &view)
	if view.Year != 2021 {
		t.Fatalf("year = %d, want 2021", view.Year)
	}
	if len(view.Candles) != 4 {
		t.Fatalf("expected 4 daily candles, got %d", len(view.Candles))
	}
	if !almostEqual(view.Summary.First, 100) || !almostEqual(view.Summary.Last, 121) {
		t.Fatalf("summary endpoints = %v/%v, want 100/121", view.Summary.First, view.Summary.Last)
	}
	if !almostEqual(view.Summary.ChangePct, 21) {
		t.Fatalf("summary change = %v, want 21", view.Summary.ChangePct)
	}
}

func TestCandlesEndpointDefaultsToLatestYear(t *testing.T) {
	router := newTestRouter(t)

	res := get(t, router, "/api/candles")
	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	var view struct {
		Year    int `json:"year"`
		Candles []struct {
			Close float64 `json:"close"`
		} `json:"candles"`
	}
	decode(t, res, &view)
	if view.Year != 2022 {
		t.Fatalf("year = %d, want 2022", view.Year)
	}
	if len(view.Candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(view.Candles))
	}
}

func TestCandlesEndpointMissingYear(t *testing.T) {
	router := newTestRouter(t)

	if res := get(t, router, "/api/candles?year=2023"); res.Code != http.StatusNotFound {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	if res := get(t, router, "/api/candles?year=abc"); res.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
}

func TestReturnsEndpointKeepsLeadingNull(t *testing.T) {
	router := newTestRouter(t)

	res := get(t, router, "/api/returns")
	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	var view struct {
		Points []struct {
			Time  time.Time `json:"time"`
			Value *float64  `json:"value"`
		} `json:"points"`
	}
	decode(t, res, &view)
	if len(view.Points) != 3 {
		t.Fatalf("expected 3 monthly points, got %d", len(view.Points))
	}
	if view.Points[0].Value != nil {
		t.Fatalf("first month return = %v, want null", *view.Points[0].Value)
	}
	if view.Points[1].Value == nil || !almostEqual(*view.Points[1].Value, (121-104)/104.0*100) {
		t.Fatalf("unexpected second month return %v", view.Points[1].Value)
	}
	if view.Points[2].Value == nil || !almostEqual(*view.Points[2].Value, (133-121)/121.0*100) {
		t.Fatalf("unexpected third month return %v", view.Points[2].Value)
	}
}

func TestPriceVolumeEndpointWindowedMean(t *testing.T) {
	router := newTestRouter(t)

	res := get(t, router, "/api/pricevolume?window=2")
	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	var view struct {
		Window     int       `json:"window"`
		Close      []float64 `json:"close"`
		Volume     []float64 `json:"volume"`
		VolumeMean []float64 `json:"volume_mean"`
		VolumeDir  []string  `json:"volume_direction"`
	}
	decode(t, res, &view)
	if view.Window != 2 {
		t.Fatalf("window = %d, want 2", view.Window)
	}
	wantMeans := []float64{10, 15, 25, 35, 45, 55}
	if len(view.VolumeMean) != len(wantMeans) {
		t.Fatalf("expected %d means, got %d", len(wantMeans), len(view.VolumeMean))
	}
	for i, m := range view.VolumeMean {
		if !almostEqual(m, wantMeans[i]) {
			t.Fatalf("mean %d = %v, want %v", i, m, wantMeans[i])
		}
	}
	if view.VolumeDir[0] != "flat" {
		t.Fatalf("first volume direction = %q, want flat", view.VolumeDir[0])
	}
	for i := 1; i < len(view.VolumeDir); i++ {
		if view.VolumeDir[i] != "up" {
			t.Fatalf("volume direction %d = %q, want up", i, view.VolumeDir[i])
		}
	}
}

func TestPriceVolumeEndpointRejectsBadWindow(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{
		"/api/pricevolume?window=0",
		"/api/pricevolume?window=-3",
		"/api/pricevolume?window=five",
	} {
		if res := get(t, router, target); res.Code != http.StatusBadRequest {
			t.Fatalf("GET %s status = %d, want 400", target, res.Code)
		}
	}
}

func TestMovingAveragesEndpointDefaults(t *testing.T) {
	router := newTestRouter(t)

	res := get(t, router, "/api/movingavg")
	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	var view struct {
		ShortWindow int         `json:"short_window"`
		LongWindow  int         `json:"long_window"`
		Times       []time.Time `json:"times"`
		ShortMA     []float64   `json:"short_ma"`
		LongMA      []float64   `json:"long_ma"`
	}
	decode(t, res, &view)
	if view.ShortWindow != 7 || view.LongWindow != 30 {
		t.Fatalf("windows = %d/%d, want 7/30", view.ShortWindow, view.LongWindow)
	}
	if len(view.Times) != 6 || len(view.ShortMA) != 6 || len(view.LongMA) != 6 {
		t.Fatalf("expected 6 aligned samples, got %d/%d/%d",
			len(view.Times), len(view.ShortMA), len(view.LongMA))
	}
	// Both windows exceed the sample count, so the partial means agree.
	for i := range view.ShortMA {
		if !almostEqual(view.ShortMA[i], view.LongMA[i]) {
			t.Fatalf("sample %d short/long diverge: %v != %v", i, view.ShortMA[i], view.LongMA[i])
		}
	}
}

func TestMovingAveragesEndpointDetectsCrosses(t *testing.T) {
	const dipCSV = `Open time,Open,High,Low,Close,Volume
2021-01-01 00:00:00,10,11,9,10,1
2021-01-02 00:00:00,10,12,1,2,1
2021-01-03 00:00:00,2,13,1,12,1
2021-01-04 00:00:00,12,13,2,3,1
`
	path := filepath.Join(t.TempDir(), "dip.csv")
	if err := os.WriteFile(path, []byte(dipCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	router := routerForDataset(t, path)

	res := get(t, router, "/api/movingavg?short=1&long=2")
	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	var view struct {
		CrossUp []struct {
			Time  time.Time `json:"time"`
			Value float64   `json:"value"`
		} `json:"cross_up"`
		CrossDown []struct {
			Time time.Time `json:"time"`
		} `json:"cross_down"`
	}
	decode(t, res, &view)
	if len(view.CrossUp) != 1 {
		t.Fatalf("expected 1 upward cross, got %d", len(view.CrossUp))
	}
	if !view.CrossUp[0].Time.Equal(time.Date(2021, time.January, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected upward cross time %v", view.CrossUp[0].Time)
	}
	if !almostEqual(view.CrossUp[0].Value, 12) {
		t.Fatalf("upward cross anchored at %v, want 12", view.CrossUp[0].Value)
	}
	if len(view.CrossDown) != 1 {
		t.Fatalf("expected 1 downward cross, got %d", len(view.CrossDown))
	}
	if !view.CrossDown[0].Time.Equal(time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected downward cross time %v", view.CrossDown[0].Time)
	}
}

func TestMovingAveragesEndpointRejectsBadWindows(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{
		"/api/movingavg?short=30&long=30",
		"/api/movingavg?short=31&long=30",
		"/api/movingavg?short=0",
		"/api/movingavg?long=junk",
	} {
		if res := get(t, router, target); res.Code != http.StatusBadRequest {
			t.Fatalf("GET %s status = %d, want 400", target, res.Code)
		}
	}
}

func TestMissingDatasetReportsServerError(t *testing.T) {
	router := routerForDataset(t, filepath.Join(t.TempDir(), "absent.csv"))

	res := get(t, router, "/api/meta")
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	decode(t, res, &body)
	if body.Error != "failed to load dataset" {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestResourcesEndpointShape(t *testing.T) {
	router := newTestRouter(t)

	res := get(t, router, "/api/resources")
	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	var body struct {
		Resources []resourceSample `json:"resources"`
	}
	decode(t, res, &body)
	// The sampler only runs inside Run, so the history starts empty.
	if len(body.Resources) != 0 {
		t.Fatalf("expected empty history, got %d samples", len(body.Resources))
	}
}
