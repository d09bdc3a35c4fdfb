package telemetry

import "fmt"

// RouteStats aggregates calls to one route.
type RouteStats struct {
	Count           int     `json:"count"`
	Errors          int     `json:"errors"`
	TotalDurationMs int64   `json:"totalDurationMs"`
	AvgDurationMs   float64 `json:"avgDurationMs"`
}

// Stats holds the incrementally maintained aggregate counters. They must
// always equal a full replay of the retained history; CalculateStats
// verifies that equivalence.
type Stats struct {
	TotalCalls      int                    `json:"totalCalls"`
	SuccessCount    int                    `json:"successCount"`
	ErrorCount      int                    `json:"errorCount"`
	TotalDurationMs int64                  `json:"totalDurationMs"`
	PerRoute        map[string]*RouteStats `json:"perRoute"`
}

// NewStats returns zeroed counters.
func NewStats() *Stats {
	return &Stats{PerRoute: make(map[string]*RouteStats)}
}

// add folds one entry into the counters in O(1).
func (s *Stats) add(e *Entry) {
	s.TotalCalls++
	if e.Status == StatusSuccess {
		s.SuccessCount++
	} else {
		s.ErrorCount++
	}
	s.TotalDurationMs += e.DurationMs

	rs := s.PerRoute[e.Route]
	if rs == nil {
		rs = &RouteStats{}
		s.PerRoute[e.Route] = rs
	}
	rs.Count++
	if e.Status != StatusSuccess {
		rs.Errors++
	}
	rs.TotalDurationMs += e.DurationMs
	rs.AvgDurationMs = float64(rs.TotalDurationMs) / float64(rs.Count)
}

// clone returns an independent copy of the counters.
func (s *Stats) clone() *Stats {
	out := &Stats{
		TotalCalls:      s.TotalCalls,
		SuccessCount:    s.SuccessCount,
		ErrorCount:      s.ErrorCount,
		TotalDurationMs: s.TotalDurationMs,
		PerRoute:        make(map[string]*RouteStats, len(s.PerRoute)),
	}
	for route, rs := range s.PerRoute {
		c := *rs
		out.PerRoute[route] = &c
	}
	return out
}

// equal reports whether two counter sets agree.
func (s *Stats) equal(o *Stats) bool {
	if s.TotalCalls != o.TotalCalls ||
		s.SuccessCount != o.SuccessCount ||
		s.ErrorCount != o.ErrorCount ||
		s.TotalDurationMs != o.TotalDurationMs ||
		len(s.PerRoute) != len(o.PerRoute) {
		return false
	}
	for route, rs := range s.PerRoute {
		ors, ok := o.PerRoute[route]
		if !ok || *rs != *ors {
			return false
		}
	}
	return true
}

// Summary is the read-time view of the counters: the raw aggregates plus
// derived averages and rates. Derived fields are never persisted.
type Summary struct {
	Stats
	AvgDuration float64 `json:"avgDuration"`
	SuccessRate string  `json:"successRate"`
	ErrorRate   string  `json:"errorRate"`
}

// summarize derives the read-time fields, zero-guarded for empty history.
func summarize(s *Stats) Summary {
	out := Summary{
		Stats:       *s.clone(),
		SuccessRate: "0.00",
		ErrorRate:   "0.00",
	}
	if s.TotalCalls == 0 {
		return out
	}
	out.AvgDuration = float64(s.TotalDurationMs) / float64(s.TotalCalls)
	out.SuccessRate = fmt.Sprintf("%.2f", float64(s.SuccessCount)*100/float64(s.TotalCalls))
	out.ErrorRate = fmt.Sprintf("%.2f", float64(s.ErrorCount)*100/float64(s.TotalCalls))
	return out
}
