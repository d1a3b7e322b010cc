package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleList() *FeedsList {
	return &FeedsList{
		GeneratedAt: "2026-10-15T00:00:00Z",
		Feeds: []FeedSummary{
			{FeedID: "mdb-1", OverallGrade: "A", OverallScore: 93.5, UptimePercent: 99.1},
			{FeedID: "mdb-2", OverallGrade: "C", OverallScore: 71, UptimePercent: 80},
			{FeedID: "mdb-3", OverallGrade: "F", OverallScore: 12, UptimePercent: 5},
		},
	}
}

func TestFeedsList_ApplyAgencyNames(t *testing.T) {
	tests := []struct {
		name  string
		names AgencyNames
		want  map[string]string // feed id -> expected name; absent means unset
	}{
		{
			name:  "partial mapping",
			names: AgencyNames{"mdb-1": "Metro Transit", "mdb-3": "Valley Bus", "other": "Unused"},
			want:  map[string]string{"mdb-1": "Metro Transit", "mdb-3": "Valley Bus"},
		},
		{
			name:  "empty mapping",
			names: AgencyNames{},
			want:  map[string]string{},
		},
		{
			name:  "nil mapping",
			names: nil,
			want:  map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := sampleList()
			list.ApplyAgencyNames(tt.names)

			for _, feed := range list.Feeds {
				want, ok := tt.want[feed.FeedID]
				if !ok {
					assert.Nil(t, feed.AgencyName, "feed %s", feed.FeedID)
					continue
				}
				require.NotNil(t, feed.AgencyName, "feed %s", feed.FeedID)
				assert.Equal(t, want, *feed.AgencyName)
			}
		})
	}
}

func TestFeedsList_ApplyAgencyNamesDoesNotAlias(t *testing.T) {
	names := AgencyNames{"mdb-1": "Metro Transit"}
	list := sampleList()
	list.ApplyAgencyNames(names)

	names["mdb-1"] = "Renamed"
	*list.Feeds[0].AgencyName = "Mutated"

	assert.Equal(t, "Renamed", names["mdb-1"])
}

func TestFeedDetail_ApplyAgencyNames(t *testing.T) {
	detail := &FeedDetail{FeedID: "mdb-2"}

	detail.ApplyAgencyNames(AgencyNames{"mdb-1": "Metro Transit"})
	assert.Nil(t, detail.AgencyName)

	detail.ApplyAgencyNames(AgencyNames{"mdb-2": "Coast Rail"})
	require.NotNil(t, detail.AgencyName)
	assert.Equal(t, "Coast Rail", *detail.AgencyName)

	var nilDetail *FeedDetail
	nilDetail.ApplyAgencyNames(AgencyNames{"mdb-2": "Coast Rail"})
}

func TestAgencyNames_Clone(t *testing.T) {
	var nilNames AgencyNames
	clone := nilNames.Clone()
	require.NotNil(t, clone)
	assert.Empty(t, clone)

	names := AgencyNames{"a": "A"}
	clone = names.Clone()
	clone["a"] = "B"
	assert.Equal(t, "A", names["a"])
}

func TestAgencyNameOmittedWhenUnset(t *testing.T) {
	data, err := json.Marshal(FeedSummary{FeedID: "mdb-1", OverallGrade: "B"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "agency_name")

	name := "Metro Transit"
	data, err = json.Marshal(FeedSummary{FeedID: "mdb-1", AgencyName: &name})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"agency_name":"Metro Transit"`)
}

func TestFeedDetailDecodes(t *testing.T) {
	raw := `{
		"schema_version": 1,
		"algorithm_version": 2,
		"feed_id": "mdb-7",
		"last_updated": "2026-10-15T00:00:00Z",
		"window_minutes": 1440,
		"entity_stats": {"avg_vehicles": 120.5, "uptime_percent": 98.2},
		"fields": {"vehicle.position.bearing": {"avg_support": 0.82, "stddev": 0.05, "grade": "B"}},
		"overall": {"score": 84.1, "grade": "B"}
	}`

	var detail FeedDetail
	require.NoError(t, json.Unmarshal([]byte(raw), &detail))

	assert.Equal(t, 2, detail.AlgorithmVersion)
	assert.Equal(t, 1440, detail.WindowMinutes)
	assert.Equal(t, "B", detail.Fields["vehicle.position.bearing"].Grade)
	assert.Equal(t, 84.1, detail.Overall.Score)
	assert.Nil(t, detail.AgencyName)
}
