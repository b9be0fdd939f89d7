package domain

import (
	"math"
	"strings"
	"unicode"
)

// DefaultWindowWidth is the total width of a feature tolerance window.
const DefaultWindowWidth = 0.30

// windowPrecision is the number of decimal places kept on window bounds.
const windowPrecision = 1e4

// TempoTolerance is the distance in BPM on each side of the target tempo.
const TempoTolerance = 10

const maxMoodKeywords = 5

// FeatureWindow is a tolerance window for a 0..1 audio feature.
type FeatureWindow struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// TempoBand is an inclusive BPM range.
type TempoBand struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ToWindow centers a window of the given width on target and clamps both
// bounds to [0,1], so windows near the edges are asymmetric. Bounds are
// rounded to four decimals.
func ToWindow(target float64, width float64) FeatureWindow {
	half := width / 2
	return FeatureWindow{
		Min: roundBound(Clamp01(target - half)),
		Max: roundBound(Clamp01(target + half)),
	}
}

func roundBound(v float64) float64 {
	return math.Round(v*windowPrecision) / windowPrecision
}

// ToTempoBand returns tempo ± TempoTolerance clamped to [MinTempo, MaxTempo].
func ToTempoBand(tempo int) TempoBand {
	return TempoBand{
		Min: max(MinTempo, tempo-TempoTolerance),
		Max: min(MaxTempo, tempo+TempoTolerance),
	}
}

// MoodKeywords returns up to five distinct lowercase keywords for free-text
// queries. A non-empty mood is tokenized on whitespace, commas, slashes and
// pipes; otherwise keywords are derived from the valence and energy targets.
func MoodKeywords(in Intent) []string {
	mood := strings.ToLower(strings.TrimSpace(in.Mood))
	if tokens := strings.FieldsFunc(mood, isMoodSeparator); len(tokens) > 0 {
		return dedupe(tokens, maxMoodKeywords)
	}

	var out []string
	switch {
	case in.TargetValence >= 0.6:
		out = append(out, "happy", "bright", "upbeat")
	case in.TargetValence <= 0.4:
		out = append(out, "moody", "melancholy", "calm")
	}
	switch {
	case in.TargetEnergy >= 0.65:
		out = append(out, "energetic", "morning")
	case in.TargetEnergy <= 0.4:
		out = append(out, "chill", "soft")
	}
	return dedupe(out, maxMoodKeywords)
}

func isMoodSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == ',' || r == '/' || r == '|'
}

func dedupe(in []string, limit int) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, min(len(in), limit))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
