package geometry

import "log/slog"

// Esri linear and map unit tags.
const (
	UnitCentimeters    = "esriCentimeters"
	UnitDecimeters     = "esriDecimeters"
	UnitFeet           = "esriFeet"
	UnitInches         = "esriInches"
	UnitKilometers     = "esriKilometers"
	UnitMeters         = "esriMeters"
	UnitMiles          = "esriMiles"
	UnitMillimeters    = "esriMillimeters"
	UnitNauticalMiles  = "esriNauticalMiles"
	UnitYards          = "esriYards"
	UnitDecimalDegrees = "esriDecimalDegrees"
	UnitUnknown        = "esriUnknownUnits"
)

// unitsPerMeter is the factor table for linear unit conversion.
var unitsPerMeter = map[string]float64{
	UnitCentimeters:   100,
	UnitDecimeters:    10,
	UnitFeet:          3.2808398950131,
	UnitInches:        39.370078740157,
	UnitKilometers:    0.001,
	UnitMeters:        1,
	UnitMiles:         0.00062137119223733,
	UnitMillimeters:   1000,
	UnitNauticalMiles: 0.00053995680345572,
	UnitYards:         1.0936132983377,
}

// ConvertDistance converts a linear distance between units. Unknown
// units return the input unchanged and log a diagnostic.
func ConvertDistance(distance float64, fromUnits, toUnits string, log *slog.Logger) float64 {
	if fromUnits == "" || toUnits == "" || fromUnits == toUnits {
		return distance
	}
	from, fromOK := unitsPerMeter[fromUnits]
	to, toOK := unitsPerMeter[toUnits]
	if !fromOK || !toOK {
		if log == nil {
			log = slog.Default()
		}
		log.Warn("invalid units for distance conversion", "from", fromUnits, "to", toUnits)
		return distance
	}
	return to / from * distance
}

// MaxAllowableOffset calculates the offset for generalizing geometry.
// Common values for meters are 100 when only a rough extent is needed
// and 10 when the geometry is displayed. Degrees use a fixed estimate of
// distance at the equator; unknown map units return false, meaning no
// generalization.
func MaxAllowableOffset(meters float64, mapUnits string, log *slog.Logger) (float64, bool) {
	switch mapUnits {
	case UnitDecimalDegrees:
		return 0.00001 * meters, true
	case UnitUnknown, "":
		return 0, false
	default:
		return ConvertDistance(meters, UnitMeters, mapUnits, log), true
	}
}
