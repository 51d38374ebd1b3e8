// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

/*
Package query builds parameterized WHERE clauses for the history store.

Every value is bound through a placeholder; column names come only from
the builder methods, never from callers.

	wb := query.NewWhereBuilder()
	wb.AddMMSIs([]string{"219000001"})
	wb.AddTimeRange(&from, &to)
	where, args := wb.BuildWithPrefix()
	// WHERE mmsi IN (?) AND ts >= ? AND ts <= ?
*/
package query
