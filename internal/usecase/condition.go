package usecase

// Condition labels produced by ClassifyCondition.
const (
	ConditionSunny        = "sunny"
	ConditionCloudy       = "cloudy"
	ConditionFog          = "fog"
	ConditionDrizzle      = "drizzle"
	ConditionRainy        = "rainy"
	ConditionSnowy        = "snowy"
	ConditionThunderstorm = "thunderstorm"
	ConditionWindy        = "windy"
	ConditionOther        = "other"
)

// WMO weather-code groups as reported by Open-Meteo. Freezing rain is
// folded into rainy.
var conditionByCode = map[int]string{
	0: ConditionSunny,

	1: ConditionCloudy, 2: ConditionCloudy, 3: ConditionCloudy,

	45: ConditionFog, 48: ConditionFog,

	51: ConditionDrizzle, 53: ConditionDrizzle, 55: ConditionDrizzle,
	56: ConditionDrizzle, 57: ConditionDrizzle,

	61: ConditionRainy, 63: ConditionRainy, 65: ConditionRainy,
	66: ConditionRainy, 67: ConditionRainy,
	80: ConditionRainy, 81: ConditionRainy, 82: ConditionRainy,

	71: ConditionSnowy, 73: ConditionSnowy, 75: ConditionSnowy,
	77: ConditionSnowy, 85: ConditionSnowy, 86: ConditionSnowy,

	95: ConditionThunderstorm, 96: ConditionThunderstorm, 99: ConditionThunderstorm,
}

// ClassifyCondition maps a weather code and wind speed to a human label.
// Wind speed >= 10 wins over every code-based label; the check order is
// user-visible and must not change.
func ClassifyCondition(code int, windSpeed float64) string {
	if windSpeed >= 10 {
		return ConditionWindy
	}
	if label, ok := conditionByCode[code]; ok {
		return label
	}
	return ConditionOther
}
