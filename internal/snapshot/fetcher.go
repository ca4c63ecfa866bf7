package snapshot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/bikeflow-data/internal/common/logger"
	"github.com/bikeflow-data/pkg/bikeshare/models"
)

const userAgent = "bikeflow-data/1.0"

// HTTPSource fetches the station JSON and the trip CSV from static URLs
type HTTPSource struct {
	client      *http.Client
	stationsURL string
	tripsURL    string
	parser      *TripParser
	logger      logger.Logger
}

func NewHTTPSource(stationsURL, tripsURL string, timeout time.Duration, loc *time.Location, logger logger.Logger) *HTTPSource {
	return &HTTPSource{
		client: &http.Client{
			Timeout: timeout, // trip logs are large
		},
		stationsURL: stationsURL,
		tripsURL:    tripsURL,
		parser:      NewTripParser(loc, logger),
		logger:      logger,
	}
}

// FetchStations downloads and decodes the station feed
func (s *HTTPSource) FetchStations(ctx context.Context) ([]models.Station, error) {
	body, err := s.open(ctx, s.stationsURL)
	if err != nil {
		return nil, errors.Wrap(err, "fetching stations")
	}
	defer body.Close()

	stations, err := ParseStations(body)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stations fetched",
		"url", s.stationsURL,
		"count", len(stations),
		"size_bytes", body.read)
	return stations, nil
}

// FetchTrips downloads and parses the trip table
func (s *HTTPSource) FetchTrips(ctx context.Context) ([]models.Trip, error) {
	body, err := s.open(ctx, s.tripsURL)
	if err != nil {
		return nil, errors.Wrap(err, "fetching trips")
	}
	defer body.Close()

	trips, skipped, err := s.parser.ParseTrips(body)
	if err != nil {
		return nil, errors.Wrap(err, "parsing trips")
	}

	s.logger.Info("Trips fetched",
		"url", s.tripsURL,
		"count", len(trips),
		"skipped", skipped,
		"size_bytes", body.read)
	return trips, nil
}

func (s *HTTPSource) open(ctx context.Context, url string) (*progressReader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("User-Agent", userAgent)

	s.logger.Debug("Starting download", "url", url)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "executing request to %s", url)
	}

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		s.logger.Error("Snapshot endpoint returned error status",
			"status_code", resp.StatusCode,
			"url", url,
			"response_body", string(snippet))
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url)
	}

	return &progressReader{
		body:     resp.Body,
		total:    resp.ContentLength,
		url:      url,
		logger:   s.logger,
		lastLog:  time.Now(),
		interval: 5 * time.Second,
	}, nil
}

// progressReader logs download progress while the body is being parsed
type progressReader struct {
	body     io.ReadCloser
	read     int64
	total    int64
	url      string
	logger   logger.Logger
	lastLog  time.Time
	interval time.Duration
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.body.Read(p)
	r.read += int64(n)

	if r.total > 0 && time.Since(r.lastLog) > r.interval {
		progress := float64(r.read) / float64(r.total) * 100
		r.logger.Debug("Download progress",
			"url", r.url,
			"progress_percent", fmt.Sprintf("%.1f", progress),
			"bytes_downloaded", r.read,
			"total_bytes", r.total)
		r.lastLog = time.Now()
	}
	return n, err
}

func (r *progressReader) Close() error {
	return r.body.Close()
}
