// Package domain synthesizes weather observations and wildfire-ignition events
// for a fixed catalog of German weather stations.
//
// # Stations
//
// The catalog is a fixed, ordered list of station templates. A station's ID is
// derived from its template name and catalog position:
//
//	"Berlin Tempelhof" at index 0  →  "WS_BERLIN_TEMPELHOF_001"
//
// IDs are never randomly minted, so the same catalog always produces the same
// station identities. [Reconcile] relies on this to split a generated batch
// into inserts and updates against the persisted ID set.
//
// # Seasonal Model
//
// Baseline temperature follows a sine wave over the day of year, peaking in
// mid-summer:
//
//	baseTemp = 10 + 15·sin(2π·(dayOfYear − 80) / 365)
//
// Season bands by day of year:
//
//	spring  80–172   variance 8
//	summer  173–266  variance 5
//	autumn  267–355  variance 8
//	winter  otherwise variance 5
//
// Elevation lowers the baseline by the standard lapse rate of 6.5°C per 1000m.
// A diurnal term 5·sin(π·(hour − 6)/12) makes afternoons warmer than nights.
//
// # Conditions
//
// A condition is drawn uniformly from a temperature band:
//
//	< −5     snowy, cloudy, foggy
//	−5..5    cloudy, foggy, rainy, partly_cloudy
//	5..15    cloudy, rainy, partly_cloudy, sunny
//	15..25   sunny, partly_cloudy, cloudy
//	≥ 25     sunny, partly_cloudy
//
// Each condition carries an envelope (temperature range, humidity range,
// maximum precipitation) that bounds the other sampled readings.
//
// # Fire Risk
//
// Daily ignition probability is the product of a regional base risk, a
// monthly multiplier and a weather multiplier (capped at 10):
//
//	p = baseRisk(region) · seasonal(month) · weather(temp, humidity, wind, drySpell)
//
// A Bernoulli trial on p decides whether a fire starts at the station that day.
//
// # Randomness
//
// All sampling goes through [Rand], an explicitly seeded source. Nothing in
// this package touches global random state, so a run is fully reproducible
// from its seed.
//
// # Rows
//
// Records are encoded into [Row] values for a named [Table]. Locations use WKT
// ("POINT(lon lat)") and timestamps use RFC 3339 in UTC.
package domain
