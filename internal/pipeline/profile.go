package pipeline

import (
	"github.com/montanaflynn/stats"

	"catalogqa/domain/catalog"
)

// FieldProfile summarizes one numeric column's distribution.
type FieldProfile struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// PriceProfile summarizes the cost and sale price columns of an upload so
// the operator can spot unit mistakes (cents vs whole units) before
// normalizing.
type PriceProfile struct {
	Cost FieldProfile `json:"cost"`
	Sale FieldProfile `json:"sale"`
}

// ProfilePrices computes the profile over all rows. Returns nil when
// there are no rows to profile.
func ProfilePrices(rows []catalog.Row) *PriceProfile {
	if len(rows) == 0 {
		return nil
	}

	costs := make(stats.Float64Data, 0, len(rows))
	sales := make(stats.Float64Data, 0, len(rows))
	for _, row := range rows {
		costs = append(costs, row.Cost)
		sales = append(sales, row.SalePrice)
	}

	return &PriceProfile{
		Cost: profileData(costs),
		Sale: profileData(sales),
	}
}

func profileData(data stats.Float64Data) FieldProfile {
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	return FieldProfile{Min: min, Max: max, Mean: mean, Median: median}
}
