package metrics

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// ExposureSummary is the per-save rollup written to InfluxDB.
type ExposureSummary struct {
	// SiteID tags the installation the snapshot belongs to.
	SiteID string

	// Exposed is the number of entities resolved to expose=true.
	Exposed int

	// Excluded is the number of entities resolved to expose=false.
	Excluded int

	// Unset is the number of entities with no decision.
	Unset int

	// Filtered is the number of entities hidden from bulk operations.
	Filtered int

	// Revision is the saved configuration revision ID.
	Revision string
}

// WriteExposureSummary records the outcome counts of a configuration
// save. The write is non-blocking; a dropped point on shutdown is
// acceptable for this data.
func (c *Client) WriteExposureSummary(s ExposureSummary) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"exposure_summary",
		map[string]string{
			"site_id":  s.SiteID,
			"revision": s.Revision,
		},
		map[string]interface{}{
			"exposed":  s.Exposed,
			"excluded": s.Excluded,
			"unset":    s.Unset,
			"filtered": s.Filtered,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSaveDuration records how long a save pipeline run took,
// from validation through artifact write.
func (c *Client) WriteSaveDuration(siteID string, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"save_duration",
		map[string]string{
			"site_id": siteID,
		},
		map[string]interface{}{
			"milliseconds": duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
