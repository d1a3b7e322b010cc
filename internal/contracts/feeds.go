package contracts

// FeedSummary is one row of the feeds list
type FeedSummary struct {
	FeedID        string  `json:"feed_id"`
	AgencyName    *string `json:"agency_name,omitempty"`
	OverallGrade  string  `json:"overall_grade"`
	OverallScore  float64 `json:"overall_score"`
	UptimePercent float64 `json:"uptime_percent"`
}

// FeedsList is the aggregates/feeds.json document
// ⭐ SSOT: 피드 목록 문서 구조는 여기서만 정의
type FeedsList struct {
	GeneratedAt string        `json:"generated_at"`
	Feeds       []FeedSummary `json:"feeds"`
}

// FieldMetric grades how well a single GTFS-RT field is populated
type FieldMetric struct {
	AvgSupport float64 `json:"avg_support"`
	Stddev     float64 `json:"stddev"`
	Grade      string  `json:"grade"`
}

// EntityStats summarises the entities seen over the aggregation window
type EntityStats struct {
	AvgVehicles   float64 `json:"avg_vehicles"`
	UptimePercent float64 `json:"uptime_percent"`
}

// OverallScore is the feed-level score/grade pair
type OverallScore struct {
	Score float64 `json:"score"`
	Grade string  `json:"grade"`
}

// FeedDetail is the aggregates/feeds/{feed_id}.json document
// ⭐ SSOT: 피드 상세 문서 구조는 여기서만 정의
type FeedDetail struct {
	SchemaVersion    int                    `json:"schema_version"`
	AlgorithmVersion int                    `json:"algorithm_version"`
	FeedID           string                 `json:"feed_id"`
	AgencyName       *string                `json:"agency_name,omitempty"`
	LastUpdated      string                 `json:"last_updated"`
	WindowMinutes    int                    `json:"window_minutes"`
	EntityStats      EntityStats            `json:"entity_stats"`
	Fields           map[string]FieldMetric `json:"fields"`
	Overall          OverallScore           `json:"overall"`
}

// AgencyNames maps feed id to agency display name.
// Stored as a flat JSON object in aggregates/agency_names.json.
type AgencyNames map[string]string

// Clone returns an independent copy; a nil map clones to an empty one
func (n AgencyNames) Clone() AgencyNames {
	out := make(AgencyNames, len(n))
	for k, v := range n {
		out[k] = v
	}
	return out
}

// lookup returns a fresh pointer so enriched documents never share storage
func (n AgencyNames) lookup(feedID string) (*string, bool) {
	name, ok := n[feedID]
	if !ok {
		return nil, false
	}
	return &name, true
}

// ApplyAgencyNames sets AgencyName on every summary whose feed id is in names.
// Summaries without a mapping are left untouched.
func (l *FeedsList) ApplyAgencyNames(names AgencyNames) {
	if l == nil {
		return
	}
	for i := range l.Feeds {
		if name, ok := names.lookup(l.Feeds[i].FeedID); ok {
			l.Feeds[i].AgencyName = name
		}
	}
}

// ApplyAgencyNames sets AgencyName when the feed id is in names.
func (d *FeedDetail) ApplyAgencyNames(names AgencyNames) {
	if d == nil {
		return
	}
	if name, ok := names.lookup(d.FeedID); ok {
		d.AgencyName = name
	}
}
