package domain

import "strings"

const defaultTemperatureC = 18

// WeatherRequest is the observation a wake-up pick is derived from.
type WeatherRequest struct {
	Location    string   `json:"location,omitempty"`
	Condition   string   `json:"condition" validate:"required"`
	Temperature *float64 `json:"temperature,omitempty"`
	Weekday     string   `json:"weekday,omitempty"`
	Time        string   `json:"time,omitempty"`
}

// IsWeekend reports whether Weekday starts with "sat" or "sun".
func (w WeatherRequest) IsWeekend() bool {
	day := strings.ToLower(w.Weekday)
	if len(day) > 3 {
		day = day[:3]
	}
	return day == "sat" || day == "sun"
}

// TemperatureOr returns the temperature or fallback when absent.
func (w WeatherRequest) TemperatureOr(fallback float64) float64 {
	if w.Temperature == nil {
		return fallback
	}
	return *w.Temperature
}

// RuleBasedIntent derives an intent from the weather condition, temperature
// and weekday without any external service.
func RuleBasedIntent(w WeatherRequest) Intent {
	cond := strings.ToLower(w.Condition)
	temp := w.TemperatureOr(defaultTemperatureC)

	genres := []string{"jazz"}
	energy, valence, dance, tempo := 0.6, 0.6, 0.6, 118.0

	switch {
	case strings.Contains(cond, "rain") || strings.Contains(cond, "drizzle"):
		genres = []string{"indie", "jazz"}
		energy, valence, tempo = 0.55, 0.45, 100
	case strings.Contains(cond, "snow"):
		genres = []string{"ambient", "classical"}
		energy, valence, tempo = 0.5, 0.4, 95
	case containsAny(cond, "cloud", "overcast", "mist", "fog"):
		genres = []string{"indie", "folk"}
		energy, valence, tempo = 0.55, 0.5, 105
	case strings.Contains(cond, "clear") || strings.Contains(cond, "sun"):
		genres = []string{"pop", "dance"}
		energy, valence, tempo = 0.7, 0.7, 120
	}

	if temp >= 25 {
		energy += 0.05
		valence += 0.05
		tempo += 5
	}
	if temp <= 5 {
		energy -= 0.05
		valence -= 0.05
		tempo -= 5
	}
	if w.IsWeekend() {
		energy = Clamp01(energy + 0.05)
	}

	// no mood key: Normalize fills in the default mood
	return Normalize(map[string]any{
		"genres":              genres,
		"target_energy":       energy,
		"target_valence":      valence,
		"target_danceability": dance,
		"target_tempo":        tempo,
	})
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
