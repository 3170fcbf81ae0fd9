package occupancy

import (
	"math"
	"sort"
	"strconv"
	"time"
	"unicode"

	"github.com/OldStager01/parksense/pkg/models"
)

const DefaultTopN = 5

// GlobalOptions tunes CalculateGlobalMetrics. Zero values select defaults.
type GlobalOptions struct {
	Window   time.Duration
	TopN     int
	Location *time.Location
	NameFunc func(spotID string) string
}

func (o GlobalOptions) withDefaults() GlobalOptions {
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.NameFunc == nil {
		o.NameFunc = models.SpotName
	}
	return o
}

// CalculateGlobalMetrics aggregates every spot with a non-empty history.
// Spots are visited in natural ID order so ranking ties are deterministic.
func CalculateGlobalMetrics(spots map[string][]models.Observation, now time.Time, opts GlobalOptions) models.GlobalMetrics {
	opts = opts.withDefaults()

	perSpot := make([]models.SpotMetrics, 0, len(spots))
	for _, id := range SortedSpotIDs(spots) {
		history := spots[id]
		if len(history) == 0 {
			continue
		}
		perSpot = append(perSpot, calculateSpotMetrics(id, opts.NameFunc(id), history, now, opts.Window))
	}

	return aggregate(perSpot, HourlyOccupancy(spots, opts.Location), opts.TopN, now)
}

// AggregateSpotMetrics builds global metrics from already computed spot
// metrics, for callers that computed them concurrently.
func AggregateSpotMetrics(perSpot []models.SpotMetrics, peakHours []models.HourBucket, topN int, now time.Time) models.GlobalMetrics {
	if topN <= 0 {
		topN = DefaultTopN
	}
	ordered := make([]models.SpotMetrics, len(perSpot))
	copy(ordered, perSpot)
	sort.SliceStable(ordered, func(i, j int) bool {
		return NaturalLess(ordered[i].SpotID, ordered[j].SpotID)
	})
	return aggregate(ordered, peakHours, topN, now)
}

func aggregate(perSpot []models.SpotMetrics, peakHours []models.HourBucket, topN int, now time.Time) models.GlobalMetrics {
	global := models.GlobalMetrics{
		MostUsedSpots:  make([]models.SpotMetrics, 0, topN),
		LeastUsedSpots: make([]models.SpotMetrics, 0, topN),
		PeakHours:      peakHours,
		ComputedAt:     now,
	}

	sorted := make([]models.SpotMetrics, len(perSpot))
	copy(sorted, perSpot)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UtilizationRate > sorted[j].UtilizationRate
	})

	global.MostUsedSpots = append(global.MostUsedSpots, sorted[:min(topN, len(sorted))]...)

	used := make([]models.SpotMetrics, 0, len(sorted))
	for _, s := range sorted {
		if s.OccupancyCount > 0 {
			used = append(used, s)
		}
	}
	tail := used[max(0, len(used)-topN):]
	for i := len(tail) - 1; i >= 0; i-- {
		global.LeastUsedSpots = append(global.LeastUsedSpots, tail[i])
	}

	if len(perSpot) == 0 {
		return global
	}

	var totalMinutes, totalUtilization float64
	for _, s := range perSpot {
		totalMinutes += float64(s.AverageOccupancyMinutes)
		totalUtilization += s.UtilizationRate
		global.TotalOccupancyEvents += s.OccupancyCount
	}

	n := float64(len(perSpot))
	global.AverageOccupancyMinutes = int(math.Round(totalMinutes / n))
	global.AverageUtilization = roundTenth(totalUtilization / n)

	return global
}

// SortedSpotIDs returns the map keys in natural order (A2 before A10).
func SortedSpotIDs[V any](spots map[string]V) []string {
	ids := make([]string, 0, len(spots))
	for id := range spots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return NaturalLess(ids[i], ids[j]) })
	return ids
}

// NaturalLess compares strings treating digit runs as numbers.
func NaturalLess(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		if unicode.IsDigit(ra[i]) && unicode.IsDigit(rb[j]) {
			si := i
			for i < len(ra) && unicode.IsDigit(ra[i]) {
				i++
			}
			sj := j
			for j < len(rb) && unicode.IsDigit(rb[j]) {
				j++
			}
			na, _ := strconv.Atoi(string(ra[si:i]))
			nb, _ := strconv.Atoi(string(rb[sj:j]))
			if na != nb {
				return na < nb
			}
			if i-si != j-sj {
				return i-si < j-sj
			}
			continue
		}
		if ra[i] != rb[j] {
			return ra[i] < rb[j]
		}
		i++
		j++
	}
	return len(ra)-i < len(rb)-j
}
