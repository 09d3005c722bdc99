package weather

import "github.com/i474232898/weatherfo/internal/common"

// ClassifyCondition maps an OpenWeatherMap "main" group to a Condition.
func ClassifyCondition(main string) Condition {
	switch main {
	case "Clear":
		return ConditionClear
	case "Clouds":
		return ConditionCloudy
	case "Rain", "Drizzle":
		return ConditionRain
	case "Snow":
		return ConditionSnow
	case "Thunderstorm":
		return ConditionStorm
	case "Mist", "Fog", "Haze", "Smoke", "Dust", "Sand", "Ash":
		return ConditionMist
	default:
		return ConditionUnknown
	}
}

// ThemeFor picks the background theme. Order matters: "thunderstorm with rain"
// paints as rain, the same way the client always did.
func ThemeFor(main string) Theme {
	switch {
	case main == "":
		return ThemeDefault
	case common.HasAnyFold(main, "clear"):
		return ThemeClear
	case common.HasAnyFold(main, "rain", "drizzle"):
		return ThemeRain
	case common.HasAnyFold(main, "thunder"):
		return ThemeThunder
	case common.HasAnyFold(main, "cloud"):
		return ThemeCloud
	case common.HasAnyFold(main, "snow"):
		return ThemeSnow
	default:
		return ThemeDefault
	}
}
