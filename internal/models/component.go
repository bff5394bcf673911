package models

import "strings"

// HoursInYear is the length of every resolved hourly load array.
const HoursInYear = 8760

// SecondsInYear is the span covered by an hourly year, used to anchor schedules.
const SecondsInYear = HoursInYear * 3600

// ComponentType classifies a network component.
type ComponentType string

const (
	ComponentEnergyTransferStation ComponentType = "ENERGY_TRANSFER_STATION"
	ComponentFan                   ComponentType = "FAN"
	ComponentGroundHeatExchanger   ComponentType = "GROUND_HEAT_EXCHANGER"
	ComponentHeatPump              ComponentType = "HEAT_PUMP"
	ComponentPump                  ComponentType = "PUMP"
	ComponentWasteHeatSource       ComponentType = "WASTE_HEAT_SOURCE"
)

// ValidComponentTypes is the set of all valid component types.
var ValidComponentTypes = []ComponentType{
	ComponentEnergyTransferStation,
	ComponentFan,
	ComponentGroundHeatExchanger,
	ComponentHeatPump,
	ComponentPump,
	ComponentWasteHeatSource,
}

// IsValid returns true if the component type is recognized.
func (ct ComponentType) IsValid() bool {
	for _, v := range ValidComponentTypes {
		if ct == v {
			return true
		}
	}
	return false
}

// ParseComponentType accepts either the underscored form or the legacy
// run-together spelling ("GROUNDHEATEXCHANGER"), in any case.
func ParseComponentType(s string) (ComponentType, bool) {
	key := strings.ToUpper(strings.TrimSpace(s))
	flat := strings.ReplaceAll(key, "_", "")
	for _, v := range ValidComponentTypes {
		if key == string(v) || flat == strings.ReplaceAll(string(v), "_", "") {
			return v, true
		}
	}
	return "", false
}

// NormalizeName trims and upper-cases a component name. Names are unique per
// component type within a network.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
