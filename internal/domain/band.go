package domain

import "encoding/json"

// ReadinessBand is a discrete class of the AI readiness score. Bands are
// ordered: a higher band never has a lower score.
type ReadinessBand int

const (
	BandNeedsWork ReadinessBand = iota
	BandAverage
	BandGood
	BandExcellent
)

// Band thresholds are inclusive lower bounds.
const (
	ExcellentThreshold = 85
	GoodThreshold      = 60
	AverageThreshold   = 40
)

// Classify maps any score, including out-of-range ones, to its band.
func Classify(score float64) ReadinessBand {
	switch {
	case score >= ExcellentThreshold:
		return BandExcellent
	case score >= GoodThreshold:
		return BandGood
	case score >= AverageThreshold:
		return BandAverage
	default:
		return BandNeedsWork
	}
}

func (b ReadinessBand) String() string {
	switch b {
	case BandExcellent:
		return "Excellent"
	case BandGood:
		return "Good"
	case BandAverage:
		return "Average"
	default:
		return "NeedsWork"
	}
}

func (b ReadinessBand) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}
