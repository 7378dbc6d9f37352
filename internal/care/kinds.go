package care

import "fmt"

// Kind identifies a type of care activity.
type Kind string

const (
	KindWater     Kind = "water"
	KindFertilize Kind = "fertilize"
	KindWash      Kind = "wash"
	KindNeemOil   Kind = "neem_oil"
	KindPestMix   Kind = "pest_mix"
)

// Kinds lists every supported care kind, in display order.
var Kinds = []Kind{KindWater, KindFertilize, KindWash, KindNeemOil, KindPestMix}

// ParseKind validates a kind string from the API or the import layer.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown care kind: %q", s)
}

// Method identifies how a periodicity value was obtained.
type Method string

const (
	MethodMean          Method = "mean"
	MethodMovingAverage Method = "moving_average"
	// MethodDefault marks a periodicity taken from the configured
	// per-kind schedule because fewer than two events were recorded.
	MethodDefault Method = "default"
)

// Periodicity is the estimated recurrence interval for one (plant, kind),
// in days, together with how it was derived. It is recomputed on demand
// and never persisted.
type Periodicity struct {
	Days   float64 `json:"days"`
	Method Method  `json:"method"`
}
