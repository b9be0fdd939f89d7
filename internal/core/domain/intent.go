package domain

import (
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Default intent values used whenever a field is missing or malformed.
const (
	DefaultMood    = "default"
	DefaultGenre   = "jazz"
	DefaultTarget  = 0.6
	DefaultTempo   = 118
	MinTempo       = 60
	MaxTempo       = 170
	MaxIntentGenre = 3
)

// AllowedGenres is the seed-genre vocabulary accepted by Normalize.
var AllowedGenres = map[string]struct{}{
	"pop":        {},
	"rock":       {},
	"indie":      {},
	"jazz":       {},
	"r-n-b":      {},
	"classical":  {},
	"folk":       {},
	"soul":       {},
	"ambient":    {},
	"dance":      {},
	"electronic": {},
	"country":    {},
	"blues":      {},
}

var genreSynonyms = map[string]string{
	"hiphop":  "hip-hop",
	"hip hop": "hip-hop",
	"rnb":     "r-n-b",
	"r&b":     "r-n-b",
}

// Intent is the bounded listening intent consumed by the track picker.
// Values produced by Normalize always satisfy the documented bounds.
type Intent struct {
	Mood               string   `json:"mood"`
	Genres             []string `json:"genres"`
	TargetEnergy       float64  `json:"target_energy"`
	TargetValence      float64  `json:"target_valence"`
	TargetDanceability float64  `json:"target_danceability"`
	TargetTempo        int      `json:"target_tempo"`
}

// DefaultIntent returns the intent used when nothing usable is available.
func DefaultIntent() Intent {
	return Intent{
		Mood:               DefaultMood,
		Genres:             []string{DefaultGenre},
		TargetEnergy:       DefaultTarget,
		TargetValence:      DefaultTarget,
		TargetDanceability: DefaultTarget,
		TargetTempo:        DefaultTempo,
	}
}

// Normalize turns an untrusted intent-like value into a bounded Intent.
// It accepts an Intent, a *Intent, a decoded JSON object, raw JSON bytes or
// string, and never fails: anything it cannot read falls back to defaults.
func Normalize(raw any) Intent {
	return normalizeFields(toFields(raw))
}

func toFields(raw any) map[string]any {
	switch v := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	case Intent:
		return intentFields(v)
	case *Intent:
		if v == nil {
			return nil
		}
		return intentFields(*v)
	case []byte:
		return decodeFields(v)
	case json.RawMessage:
		return decodeFields(v)
	case string:
		return decodeFields([]byte(v))
	default:
		return nil
	}
}

func decodeFields(b []byte) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

func intentFields(in Intent) map[string]any {
	var genres any
	if in.Genres != nil {
		list := make([]any, len(in.Genres))
		for i, g := range in.Genres {
			list[i] = g
		}
		genres = list
	}
	return map[string]any{
		"mood":                in.Mood,
		"genres":              genres,
		"target_energy":       in.TargetEnergy,
		"target_valence":      in.TargetValence,
		"target_danceability": in.TargetDanceability,
		"target_tempo":        in.TargetTempo,
	}
}

func normalizeFields(m map[string]any) Intent {
	out := Intent{
		Mood:               DefaultMood,
		Genres:             normalizeGenres(m["genres"]),
		TargetEnergy:       Clamp01(floatOr(m["target_energy"], DefaultTarget)),
		TargetValence:      Clamp01(floatOr(m["target_valence"], DefaultTarget)),
		TargetDanceability: Clamp01(floatOr(m["target_danceability"], DefaultTarget)),
		TargetTempo:        normalizeTempo(m["target_tempo"]),
	}
	if mood, ok := m["mood"].(string); ok {
		out.Mood = mood
	}
	return out
}

// normalizeGenres lowercases, canonicalizes synonyms, drops anything outside
// AllowedGenres and keeps at most MaxIntentGenre entries.
func normalizeGenres(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		if strs, isStrs := raw.([]string); isStrs {
			list = make([]any, len(strs))
			for i, s := range strs {
				list[i] = s
			}
			ok = true
		}
	}
	if !ok {
		return []string{DefaultGenre}
	}

	out := make([]string, 0, MaxIntentGenre)
	for _, item := range list {
		g := CanonicalGenre(stringify(item))
		if _, allowed := AllowedGenres[g]; !allowed {
			continue
		}
		out = append(out, g)
		if len(out) == MaxIntentGenre {
			break
		}
	}
	if len(out) == 0 {
		return []string{DefaultGenre}
	}
	return out
}

// CanonicalGenre lowercases a genre and maps known synonyms.
func CanonicalGenre(g string) string {
	g = strings.ToLower(strings.TrimSpace(g))
	if mapped, ok := genreSynonyms[g]; ok {
		return mapped
	}
	return g
}

func normalizeTempo(raw any) int {
	// tempo also accepts numeric strings such as "120"
	if s, ok := raw.(string); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			raw = parsed
		}
	}
	t := math.Round(floatOr(raw, DefaultTempo))
	return int(math.Max(MinTempo, math.Min(MaxTempo, t)))
}

func floatOr(raw any, fallback float64) float64 {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return fallback
		}
		f = parsed
	default:
		return fallback
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Clamp01 bounds n to [0,1].
func Clamp01(n float64) float64 {
	return math.Max(0, math.Min(1, n))
}
