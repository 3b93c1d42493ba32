// Package benchcheck compares two `go test -bench` outputs and reports the
// tracked benchmarks whose median regressed past a threshold.
package benchcheck

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// DefaultThreshold allows a 30% slowdown before failing.
const DefaultThreshold = 0.30

// Tracked lists the benchmarks and units the gate watches.
var Tracked = map[string][]string{
	"BenchmarkFetchUserCached":     {"ns/op", "allocs/op"},
	"BenchmarkAccessTokenParallel": {"ns/op"},
	"BenchmarkMetricsIncParallel":  {"ns/op"},
	"BenchmarkTokenPairDecode":     {"ns/op", "allocs/op"},
}

// Samples maps benchmark name to unit to every value seen across -count runs.
type Samples map[string]map[string][]float64

// Row is one compared benchmark metric.
type Row struct {
	Benchmark string
	Unit      string
	Baseline  float64
	Candidate float64
	Delta     float64
}

// Parse reads benchmark lines from r, keeping only names in tracked.
func Parse(r io.Reader, tracked map[string][]string) (Samples, error) {
	out := Samples{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Benchmark") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		name := normalizeName(fields[0])
		if _, ok := tracked[name]; !ok {
			continue
		}
		if out[name] == nil {
			out[name] = map[string][]float64{}
		}
		for i := 2; i+1 < len(fields); i += 2 {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				continue
			}
			out[name][fields[i+1]] = append(out[name][fields[i+1]], v)
		}
	}
	return out, scanner.Err()
}

// Compare returns one row per tracked metric, sorted by name, and a failure
// line for each metric that is missing or regressed beyond threshold.
func Compare(baseline, candidate Samples, tracked map[string][]string, threshold float64) ([]Row, []string) {
	names := make([]string, 0, len(tracked))
	for name := range tracked {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		rows     []Row
		failures []string
	)
	for _, name := range names {
		for _, unit := range tracked[name] {
			base, cand := baseline[name][unit], candidate[name][unit]
			if len(base) == 0 || len(cand) == 0 {
				failures = append(failures, fmt.Sprintf("missing samples for %s %s", name, unit))
				continue
			}
			bm, cm := median(base), median(cand)
			if bm <= 0 {
				// allocs/op of zero stays acceptable only while it stays zero
				if cm > 0 {
					failures = append(failures, fmt.Sprintf("%s %s grew from 0 to %.0f", name, unit, cm))
				}
				rows = append(rows, Row{Benchmark: name, Unit: unit, Baseline: bm, Candidate: cm})
				continue
			}
			row := Row{Benchmark: name, Unit: unit, Baseline: bm, Candidate: cm, Delta: (cm - bm) / bm}
			rows = append(rows, row)
			if row.Delta > threshold {
				failures = append(failures, fmt.Sprintf("%s %s regressed by %+0.2f%% (limit %+0.2f%%)", name, unit, row.Delta*100, threshold*100))
			}
		}
	}
	return rows, failures
}

// normalizeName strips the -GOMAXPROCS suffix.
func normalizeName(raw string) string {
	if idx := strings.LastIndexByte(raw, '-'); idx > 0 {
		if _, err := strconv.Atoi(raw[idx+1:]); err == nil {
			return raw[:idx]
		}
	}
	return raw
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
