// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package eventprocessor

import (
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/shipwatch/internal/models"
	"github.com/tomtom215/shipwatch/internal/validation"
)

// Metadata keys set on every position message.
const (
	MetadataMMSI      = "mmsi"
	MetadataTimestamp = "ts"
)

// positionNamespace scopes name-based message IDs.
var positionNamespace = uuid.MustParse("6f1c1e0a-4b7d-5d8e-9a51-3c2f7a0b9e44")

// MessageIDFor returns the deterministic message UUID for a report.
// Publishing the same report twice yields the same ID.
func MessageIDFor(r models.PositionReport) string {
	return uuid.NewSHA1(positionNamespace, []byte(r.Key())).String()
}

// Serializer encodes position reports for the transport.
type Serializer struct{}

// NewSerializer creates a new serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Marshal validates and encodes a report.
func (s *Serializer) Marshal(r *models.PositionReport) ([]byte, error) {
	if verr := validation.ValidateStruct(r); verr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, verr.Error())
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal position: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates a report.
func (s *Serializer) Unmarshal(data []byte) (models.PositionReport, error) {
	var r models.PositionReport
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if verr := validation.ValidateStruct(&r); verr != nil {
		return r, fmt.Errorf("%w: %s", ErrInvalidPayload, verr.Error())
	}
	return r, nil
}

// NewPositionMessage builds the transport message for a report.
func NewPositionMessage(r models.PositionReport) (*message.Message, error) {
	data, err := NewSerializer().Marshal(&r)
	if err != nil {
		return nil, err
	}
	msg := message.NewMessage(MessageIDFor(r), data)
	msg.Metadata.Set(MetadataMMSI, r.MMSI)
	msg.Metadata.Set(MetadataTimestamp, strconv.FormatInt(r.Timestamp, 10))
	return msg, nil
}

// DecodePosition extracts the report from a transport message.
func DecodePosition(msg *message.Message) (models.PositionReport, error) {
	return NewSerializer().Unmarshal(msg.Payload)
}
