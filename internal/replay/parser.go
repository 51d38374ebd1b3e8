// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package replay

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tomtom215/shipwatch/internal/logging"
	"github.com/tomtom215/shipwatch/internal/models"
)

// Column layout of the historical position file.
const (
	colMMSI = iota
	colNavStatus
	colROT
	colSOG
	colCOG
	colHeading
	colLon
	colLat
	colTimestamp
	positionFieldCount
)

// notAvailable is the sentinel used by the source for a missing optional field.
const notAvailable = "NA"

var (
	// ErrFieldCount is returned when a line has the wrong number of fields.
	ErrFieldCount = errors.New("wrong field count")

	// ErrBadField is returned when a field cannot be parsed.
	ErrBadField = errors.New("unparsable field")
)

// ParsePositionRecord converts one split line into a PositionReport.
// "NA" in the rate-of-turn column and 511 in the heading column map to nil.
func ParsePositionRecord(fields []string) (models.PositionReport, error) {
	var r models.PositionReport
	if len(fields) != positionFieldCount {
		return r, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(fields), positionFieldCount)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	r.MMSI = fields[colMMSI]
	if r.MMSI == "" {
		return r, fmt.Errorf("%w: empty mmsi", ErrBadField)
	}

	var err error
	if r.NavStatus, err = strconv.Atoi(fields[colNavStatus]); err != nil {
		return r, fmt.Errorf("%w: nav_status %q", ErrBadField, fields[colNavStatus])
	}
	if fields[colROT] != notAvailable && fields[colROT] != "" {
		rot, err := strconv.ParseFloat(fields[colROT], 64)
		if err != nil {
			return r, fmt.Errorf("%w: rot %q", ErrBadField, fields[colROT])
		}
		r.ROT = &rot
	}
	if r.SOG, err = strconv.ParseFloat(fields[colSOG], 64); err != nil {
		return r, fmt.Errorf("%w: sog %q", ErrBadField, fields[colSOG])
	}
	if r.COG, err = strconv.ParseFloat(fields[colCOG], 64); err != nil {
		return r, fmt.Errorf("%w: cog %q", ErrBadField, fields[colCOG])
	}
	if fields[colHeading] != notAvailable && fields[colHeading] != "" {
		heading, err := strconv.Atoi(fields[colHeading])
		if err != nil {
			return r, fmt.Errorf("%w: heading %q", ErrBadField, fields[colHeading])
		}
		if heading != models.HeadingNotAvailable {
			r.Heading = &heading
		}
	}
	if r.Longitude, err = strconv.ParseFloat(fields[colLon], 64); err != nil || r.Longitude < -180 || r.Longitude > 180 {
		return r, fmt.Errorf("%w: lon %q", ErrBadField, fields[colLon])
	}
	if r.Latitude, err = strconv.ParseFloat(fields[colLat], 64); err != nil || r.Latitude < -90 || r.Latitude > 90 {
		return r, fmt.Errorf("%w: lat %q", ErrBadField, fields[colLat])
	}
	if r.Timestamp, err = strconv.ParseInt(fields[colTimestamp], 10, 64); err != nil {
		return r, fmt.Errorf("%w: timestamp %q", ErrBadField, fields[colTimestamp])
	}
	return r, nil
}

// ParsePositionLine splits a comma separated line and parses it.
func ParsePositionLine(line string) (models.PositionReport, error) {
	return ParsePositionRecord(strings.Split(line, ","))
}

// newReader returns a CSV reader that tolerates ragged lines so field count
// errors surface per record instead of aborting the file.
func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return cr
}

// RegistryResult summarises a static registry load.
type RegistryResult struct {
	Vessels  []models.VesselStaticInfo
	Rejected int
}

// LoadStaticRegistry reads the two-column vessel registry (mmsi, type).
// Unknown types and malformed lines are rejected per line; only failure to
// open the file is returned as an error.
func LoadStaticRegistry(path string) (RegistryResult, error) {
	var res RegistryResult

	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return res, fmt.Errorf("open static registry %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	cr := newReader(f)
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		return res, fmt.Errorf("read static registry header: %w", err)
	}

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil || len(rec) != 2 {
			res.Rejected++
			logging.Warn().Int("line", line).Msg("Malformed static registry line")
			continue
		}
		mmsi := strings.TrimSpace(rec[0])
		shipType, err := models.ParseShipType(rec[1])
		if mmsi == "" || err != nil {
			res.Rejected++
			logging.Warn().Int("line", line).Str("type", rec[1]).Msg("Rejected static registry line")
			continue
		}
		res.Vessels = append(res.Vessels, models.VesselStaticInfo{MMSI: mmsi, ShipType: shipType})
	}

	logging.Info().
		Str("path", path).
		Int("vessels", len(res.Vessels)).
		Int("rejected", res.Rejected).
		Msg("Static registry loaded")
	return res, nil
}
