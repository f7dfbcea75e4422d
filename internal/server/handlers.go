package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"coinboard/internal/series"
	"coinboard/internal/views"
)

// Query parameter defaults, matching the dashboard controls.
const (
	defaultMetric       = series.FieldClose
	defaultPeriod       = series.PeriodMonth
	defaultVolumeWindow = 30
	defaultShortWindow  = 7
	defaultLongWindow   = 30
)

const dateLayout = "2006-01-02"

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"Asset": s.cfg.Data.Asset,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleMeta(c *gin.Context) {
	full, ok := s.loadFrame(c)
	if !ok {
		return
	}
	meta, err := views.BuildMeta(full, s.cfg.Data.Asset)
	if err != nil {
		s.renderViewError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (s *Server) handleEvolution(c *gin.Context) {
	f, ok := s.frameForRange(c)
	if !ok {
		return
	}
	metric, err := series.ParseField(c.DefaultQuery("metric", string(defaultMetric)))
	if err != nil {
		s.badRequest(c, err)
		return
	}
	period, err := series.ParsePeriod(c.DefaultQuery("period", string(defaultPeriod)))
	if err != nil {
		s.badRequest(c, err)
		return
	}
	view, err := views.BuildEvolution(f, metric, period)
	if err != nil {
		s.renderViewError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleCandles(c *gin.Context) {
	f, ok := s.frameForRange(c)
	if !ok {
		return
	}
	var year int
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.badRequest(c, fmt.Errorf("invalid year %q", v))
			return
		}
		year = n
	} else {
		// default to the latest year in the selection
		years := f.Years()
		if len(years) == 0 {
			s.renderViewError(c, views.ErrNoData)
			return
		}
		year = years[len(years)-1]
	}
	view, err := views.BuildAnnualCandles(f, year)
	if err != nil {
		s.renderViewError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleReturns(c *gin.Context) {
	f, ok := s.frameForRange(c)
	if !ok {
		return
	}
	view, err := views.BuildMonthlyReturns(f)
	if err != nil {
		s.renderViewError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handlePriceVolume(c *gin.Context) {
	f, ok := s.frameForRange(c)
	if !ok {
		return
	}
	window, err := intQuery(c, "window", defaultVolumeWindow)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	view, err := views.BuildPriceVolume(f, window)
	if err != nil {
		s.renderViewError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleMovingAverages(c *gin.Context) {
	f, ok := s.frameForRange(c)
	if !ok {
		return
	}
	short, err := intQuery(c, "short", defaultShortWindow)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	long, err := intQuery(c, "long", defaultLongWindow)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	view, err := views.BuildMovingAverages(f, short, long)
	if err != nil {
		s.renderViewError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleResources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"resources": s.sampler.snapshot()})
}

// loadFrame fetches the full dataset through the cache. Responds with
// a 500 and returns false when the file cannot be read.
func (s *Server) loadFrame(c *gin.Context) (series.Frame, bool) {
	full, err := s.cache.Load(s.cfg.Data.CSVPath)
	if err != nil {
		s.log.WithComponent("server").WithError(err).Error("failed to load dataset")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dataset"})
		return series.Frame{}, false
	}
	return full, true
}

// frameForRange loads the dataset and applies the optional start and
// end query parameters. Both are dates; end is inclusive through the
// whole day.
func (s *Server) frameForRange(c *gin.Context) (series.Frame, bool) {
	full, ok := s.loadFrame(c)
	if !ok {
		return series.Frame{}, false
	}
	lo := time.Time{}
	hi := time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
	if v := c.Query("start"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			s.badRequest(c, fmt.Errorf("invalid start date %q", v))
			return series.Frame{}, false
		}
		lo = t
	}
	if v := c.Query("end"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			s.badRequest(c, fmt.Errorf("invalid end date %q", v))
			return series.Frame{}, false
		}
		hi = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return full.FilterRange(lo, hi), true
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return n, nil
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// renderViewError maps domain errors onto HTTP statuses: selections
// with nothing in them are 404, unusable parameters are 400, anything
// else is a 500.
func (s *Server) renderViewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, views.ErrNoData):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, series.ErrBadWindow):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.log.WithComponent("server").WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
