// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package replay

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/tomtom215/shipwatch/internal/metrics"
)

// ErrInvalidSpeedFactor is returned for zero, negative or non-finite factors.
var ErrInvalidSpeedFactor = errors.New("speed factor must be a positive finite number")

// SpeedControl holds the live replay speed multiplier. A factor of 1 replays
// in real time, 10 replays ten times faster.
type SpeedControl struct {
	bits atomic.Uint64
}

// NewSpeedControl creates a control initialised to factor.
func NewSpeedControl(factor float64) (*SpeedControl, error) {
	s := &SpeedControl{}
	if err := s.Set(factor); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the current factor.
func (s *SpeedControl) Get() float64 {
	return math.Float64frombits(s.bits.Load())
}

// Set replaces the factor. Non-positive values are rejected and leave the
// current factor unchanged.
func (s *SpeedControl) Set(factor float64) error {
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSpeedFactor, factor)
	}
	s.bits.Store(math.Float64bits(factor))
	metrics.SetReplaySpeed(factor)
	return nil
}
