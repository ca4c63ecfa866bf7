package snapshot

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/bikeflow-data/internal/common/logger"
	"github.com/bikeflow-data/pkg/bikeshare/models"
)

// ErrMissingColumn is returned when the trip table lacks a required header
var ErrMissingColumn = errors.New("missing required column")

var requiredTripColumns = []string{"started_at", "ended_at", "start_station_id", "end_station_id"}

// ParseStations decodes the station feed document
func ParseStations(r io.Reader) ([]models.Station, error) {
	var doc models.StationsDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding station document")
	}
	return doc.Data.Stations, nil
}

// TripParser reads the delimited trip table
type TripParser struct {
	loc    *time.Location
	logger logger.Logger
}

func NewTripParser(loc *time.Location, logger logger.Logger) *TripParser {
	if loc == nil {
		loc = time.Local
	}
	return &TripParser{loc: loc, logger: logger}
}

// ParseTrips reads every row of the trip table. Columns are found by header
// name. Rows with unparseable timestamps are skipped and counted.
func (p *TripParser) ParseTrips(r io.Reader) ([]models.Trip, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Variable number of fields
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, 0, errors.Wrap(ErrMissingColumn, "empty trip table")
	}
	if err != nil {
		return nil, 0, errors.Wrap(err, "reading header")
	}

	headerMap := make(map[string]int, len(header))
	for i, h := range header {
		// strip a UTF-8 BOM some exports put on the first column
		headerMap[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}
	for _, column := range requiredTripColumns {
		if _, ok := headerMap[column]; !ok {
			return nil, 0, errors.Wrapf(ErrMissingColumn, "column %q", column)
		}
	}

	var trips []models.Trip
	skipped := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, skipped, errors.Wrapf(err, "reading record on line %d", line)
		}

		trip, err := p.parseTrip(record, headerMap)
		if err != nil {
			skipped++
			p.logger.Warn("Skipping trip record", "line", line, "error", err)
			continue
		}
		trips = append(trips, trip)

		if len(trips)%100000 == 0 {
			p.logger.Debug("Progress", "records", len(trips))
		}
	}

	p.logger.Info("Trip table parsed", "records", len(trips), "skipped", skipped)
	return trips, skipped, nil
}

func (p *TripParser) parseTrip(record []string, headerMap map[string]int) (models.Trip, error) {
	started, err := models.ParseTimestamp(getString(record, headerMap, "started_at"), p.loc)
	if err != nil {
		return models.Trip{}, errors.Wrap(err, "parsing started_at")
	}
	ended, err := models.ParseTimestamp(getString(record, headerMap, "ended_at"), p.loc)
	if err != nil {
		return models.Trip{}, errors.Wrap(err, "parsing ended_at")
	}

	return models.Trip{
		RideID:         getString(record, headerMap, "ride_id"),
		StartStationID: getString(record, headerMap, "start_station_id"),
		EndStationID:   getString(record, headerMap, "end_station_id"),
		StartedAt:      started,
		EndedAt:        ended,
	}, nil
}

// getString safely gets a value from a CSV record
func getString(record []string, headerMap map[string]int, field string) string {
	if idx, ok := headerMap[field]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
