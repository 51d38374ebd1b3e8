// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownShipType is returned when a vessel type string is not recognised.
var ErrUnknownShipType = errors.New("unknown ship type")

// ShipType is the coarse vessel classification from the static registry.
type ShipType string

const (
	ShipTypeUnknown        ShipType = "unknown" // no registry entry
	ShipTypeCargo          ShipType = "cargo"
	ShipTypeTanker         ShipType = "tanker"
	ShipTypePassenger      ShipType = "passenger"
	ShipTypeFishing        ShipType = "fishing"
	ShipTypeTug            ShipType = "tug"
	ShipTypePleasure       ShipType = "pleasure"
	ShipTypeSailing        ShipType = "sailing"
	ShipTypeMilitary       ShipType = "military"
	ShipTypeHighSpeedCraft ShipType = "hsc"
	ShipTypePilot          ShipType = "pilot"
	ShipTypeSearchRescue   ShipType = "sar"
	ShipTypeLawEnforcement ShipType = "law_enforcement"
	ShipTypeOther          ShipType = "other"
)

var shipTypeAliases = map[string]ShipType{
	"cargo":             ShipTypeCargo,
	"tanker":            ShipTypeTanker,
	"passenger":         ShipTypePassenger,
	"fishing":           ShipTypeFishing,
	"tug":               ShipTypeTug,
	"towing":            ShipTypeTug,
	"pleasure":          ShipTypePleasure,
	"pleasure_craft":    ShipTypePleasure,
	"sailing":           ShipTypeSailing,
	"military":          ShipTypeMilitary,
	"hsc":               ShipTypeHighSpeedCraft,
	"high_speed_craft":  ShipTypeHighSpeedCraft,
	"pilot":             ShipTypePilot,
	"sar":               ShipTypeSearchRescue,
	"search_and_rescue": ShipTypeSearchRescue,
	"law_enforcement":   ShipTypeLawEnforcement,
	"other":             ShipTypeOther,
}

// ParseShipType normalizes a registry string ("Law Enforcement", "high-speed craft")
// into a ShipType. Unknown strings return ErrUnknownShipType.
func ParseShipType(s string) (ShipType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	if t, ok := shipTypeAliases[norm]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownShipType, s)
}

// VesselStaticInfo is the long-lived registry record for a vessel.
type VesselStaticInfo struct {
	MMSI     string   `json:"mmsi"`
	ShipType ShipType `json:"ship_type"`
}

// WatchEntry records that a subscriber follows a vessel.
type WatchEntry struct {
	SubscriberID string    `json:"subscriber_id"`
	MMSI         string    `json:"mmsi"`
	CreatedAt    time.Time `json:"created_at"`
}
