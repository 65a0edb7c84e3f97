// Package stats computes derived report values from collection snapshots:
// status counts, revenue totals, vehicle popularity and monthly rental
// histograms. Every function is pure, and malformed data never raises an
// error: unknown statuses count as pending, unparseable prices count as 0
// and records with unreadable dates drop out of the histogram.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/yhamdani/locadrive/internal/docstore"
)

// Status is a canonical reservation state derived from the free-text
// status field.
type Status string

const (
	// StatusPending is the default bucket: new requests and any status
	// string that matches no known word list.
	StatusPending Status = "Pending"
	// StatusActive covers confirmed / approved / running rentals.
	StatusActive Status = "Active"
	// StatusCompleted covers finished rentals.
	StatusCompleted Status = "Completed"
)

// Word lists matched as substrings against the lowercased status value.
// They cover the French and English variants that coexist in stored data
// ("Confirmée", "approved", "Terminée", "completed", ...).
var (
	activeWords    = []string{"confirm", "approv", "activ", "en cours"}
	completedWords = []string{"term", "complet", "clotur", "clôtur", "done"}
)

// NormalizeStatus maps a free-text status value to its canonical bucket.
// Anything that matches no word list, including missing or garbage values,
// is pending.
func NormalizeStatus(raw any) Status {
	value := strings.ToLower(strings.TrimSpace(docstore.String(raw)))
	for _, w := range completedWords {
		if strings.Contains(value, w) {
			return StatusCompleted
		}
	}
	for _, w := range activeWords {
		if strings.Contains(value, w) {
			return StatusActive
		}
	}
	return StatusPending
}

// CountByStatus tallies a snapshot into canonical status buckets using the
// given status field. Every record lands in exactly one bucket.
func CountByStatus(snap docstore.Snapshot, field string) map[Status]int {
	counts := map[Status]int{
		StatusPending:   0,
		StatusActive:    0,
		StatusCompleted: 0,
	}
	for _, d := range snap {
		counts[NormalizeStatus(d[field])]++
	}
	return counts
}

// CountWhere counts the records satisfying the predicate.
func CountWhere(snap docstore.Snapshot, pred func(docstore.Document) bool) int {
	n := 0
	for _, d := range snap {
		if pred(d) {
			n++
		}
	}
	return n
}

// Revenue sums a numeric price field across the snapshot. Numeric strings
// are parsed; missing and non-numeric values contribute 0.
func Revenue(snap docstore.Snapshot, field string) float64 {
	total := 0.0
	for _, d := range snap {
		total += docstore.Number(d[field])
	}
	return total
}

// PopularVehicle returns the most frequently referenced vehicle in the
// snapshot, keyed by vehicleId with a fallback to the model string when no
// id is present. ok is false for an empty snapshot or when no record
// carries either key.
//
// Ties resolve to the earliest key to reach the winning count; callers must
// not rely on any particular total order among tied vehicles.
func PopularVehicle(snap docstore.Snapshot) (label string, count int, ok bool) {
	tally := make(map[string]int)
	labels := make(map[string]string)
	for _, d := range snap {
		key := docstore.String(d["vehicleId"])
		name := docstore.String(d["vehicleModel"])
		if key == "" {
			key = name
		}
		if key == "" {
			continue
		}
		if name == "" {
			name = key
		}
		tally[key]++
		if _, seen := labels[key]; !seen {
			labels[key] = name
		}
		if tally[key] > count {
			count = tally[key]
			label = labels[key]
			ok = true
		}
	}
	return label, count, ok
}

// MonthBucket is one (month, count) pair of a monthly histogram.
type MonthBucket struct {
	// Year and Month identify the bucket.
	Year  int
	Month time.Month
	// Count is the number of records whose date fell in the bucket.
	Count int
}

// Label formats the bucket as "Jan 2026".
func (b MonthBucket) Label() string {
	return time.Date(b.Year, b.Month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

// dateLayouts are the formats reservation dates appear in: the app stores
// YYYY-MM-DD, createdAt timestamps are RFC 3339.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
}

// ParseDate reads a date-like field value. ok is false when the value is
// missing or matches no known layout.
func ParseDate(v any) (time.Time, bool) {
	if t, isTime := v.(time.Time); isTime {
		return t, true
	}
	s := strings.TrimSpace(docstore.String(v))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MonthlyHistogram buckets the snapshot by the (year, month) of a date
// field and returns the buckets in chronological order. Records with
// unparseable dates are excluded, not zero-bucketed.
func MonthlyHistogram(snap docstore.Snapshot, field string) []MonthBucket {
	counts := make(map[[2]int]int)
	for _, d := range snap {
		t, ok := ParseDate(d[field])
		if !ok {
			continue
		}
		counts[[2]int{t.Year(), int(t.Month())}]++
	}

	buckets := make([]MonthBucket, 0, len(counts))
	for key, n := range counts {
		buckets = append(buckets, MonthBucket{Year: key[0], Month: time.Month(key[1]), Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Year != buckets[j].Year {
			return buckets[i].Year < buckets[j].Year
		}
		return buckets[i].Month < buckets[j].Month
	})
	return buckets
}

// DefaultCategory is the bucket for vehicles without a category label.
const DefaultCategory = "standard"

// NormalizeCategory lowercases and trims a free-text category label, mapping
// empty values to DefaultCategory.
func NormalizeCategory(v any) string {
	s := strings.ToLower(strings.TrimSpace(docstore.String(v)))
	if s == "" {
		return DefaultCategory
	}
	return s
}

// GroupByCategory splits a vehicle snapshot by normalized category.
func GroupByCategory(snap docstore.Snapshot) map[string]docstore.Snapshot {
	out := make(map[string]docstore.Snapshot)
	for _, d := range snap {
		key := NormalizeCategory(d["category"])
		out[key] = append(out[key], d)
	}
	return out
}
