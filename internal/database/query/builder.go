// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package query

import (
	"strings"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddTimeRange filters on the report timestamp (epoch seconds, inclusive).
// Nil bounds are skipped.
func (wb *WhereBuilder) AddTimeRange(from, to *int64) *WhereBuilder {
	if from != nil {
		wb.AddClause("ts >= ?", *from)
	}
	if to != nil {
		wb.AddClause("ts <= ?", *to)
	}
	return wb
}

// AddMMSIs adds "mmsi IN (...)". An empty slice is skipped.
func (wb *WhereBuilder) AddMMSIs(mmsis []string) *WhereBuilder {
	return wb.addIn("mmsi", mmsis)
}

// AddBoundingBox restricts positions to a latitude/longitude box. Boxes
// crossing the antimeridian (minLon > maxLon) are split in two.
func (wb *WhereBuilder) AddBoundingBox(minLat, minLon, maxLat, maxLon float64) *WhereBuilder {
	wb.AddClause("lat BETWEEN ? AND ?", minLat, maxLat)
	if minLon <= maxLon {
		return wb.AddClause("lon BETWEEN ? AND ?", minLon, maxLon)
	}
	return wb.AddClause("(lon >= ? OR lon <= ?)", minLon, maxLon)
}

func (wb *WhereBuilder) addIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return wb.AddClause(column+" IN ("+placeholders+")", args...)
}

// Build joins the clauses with AND. It returns ("1=1", []) if no clauses
// were added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
