package main

import (
	"bytes"
	"math"
	"time"

	"github.com/couchcryptid/weather-seeder/internal/domain"
	"github.com/couchcryptid/weather-seeder/internal/fixture"
)

const maxFireOffsetDeg = 0.5

// ── Phase 1: stations ──

func validateStations(ds *dataset) *phase {
	p := &phase{name: "Phase 1: Station catalog"}
	catalog := domain.DefaultCatalog()

	want := ds.manifest.Stations
	if want <= 0 || want > len(catalog) {
		want = len(catalog)
	}
	if len(ds.stations) != want {
		p.errorf("station count: got %d, want %d", len(ds.stations), want)
	}

	expected := make(map[string]domain.StationTemplate, want)
	for i := 0; i < want; i++ {
		expected[domain.StationID(catalog[i].Name, i)] = catalog[i]
	}

	seen := make(map[string]bool, len(ds.stations))
	for _, st := range ds.stations {
		if seen[st.ID] {
			p.errorf("duplicate station id %s", st.ID)
		}
		seen[st.ID] = true

		tmpl, ok := expected[st.ID]
		if !ok {
			p.errorf("station %s: id does not derive from any catalog entry", st.ID)
			continue
		}
		if st.Name != tmpl.Name || st.City != tmpl.City || st.Region != tmpl.Region {
			p.errorf("station %s: fields differ from catalog entry %q", st.ID, tmpl.Name)
		}
		pt, err := domain.ParsePoint(st.Location)
		if err != nil {
			p.errorf("station %s: %v", st.ID, err)
		} else if pt.Lat != tmpl.Lat || pt.Lon != tmpl.Lon {
			p.errorf("station %s: location %s, catalog has (%g, %g)", st.ID, st.Location, tmpl.Lat, tmpl.Lon)
		}
		if !st.CreatedAt.Equal(ds.manifest.GeneratedAt) {
			p.errorf("station %s: created_at %s, want %s", st.ID,
				st.CreatedAt.Format(time.RFC3339), ds.manifest.GeneratedAt.Format(time.RFC3339))
		}
		if st.UpdatedAt != nil {
			p.errorf("station %s: fresh fixture should have no updated_at", st.ID)
		}
	}
	return p
}

// ── Phase 2: observations ──

func validateObservations(ds *dataset, r domain.DateRange) *phase {
	p := &phase{name: "Phase 2: Observation integrity"}
	perDay := ds.manifest.ObservationsPerDay
	if perDay < 1 || perDay > 24 {
		p.errorf("manifest observations_per_day %d outside [1, 24]", perDay)
		return p
	}
	step := 24 * time.Hour / time.Duration(perDay)

	stations := make(map[string]domain.Station, len(ds.stations))
	for _, st := range ds.stations {
		stations[st.ID] = st
	}

	ids := make(map[string]bool, len(ds.observations))
	perStationDay := make(map[string]int)
	finished := make(map[string]bool)
	var current string
	var last time.Time

	for i, o := range ds.observations {
		if ids[o.ID] {
			p.errorf("obs[%d]: duplicate observation_id %s", i, o.ID)
		}
		ids[o.ID] = true

		st, ok := stations[o.StationID]
		switch {
		case !ok:
			p.errorf("obs[%d]: unknown station %s", i, o.StationID)
		case !st.Active:
			p.errorf("obs[%d]: inactive station %s has observations", i, o.StationID)
		case o.Location != st.Location:
			p.errorf("obs[%d]: location %s differs from station %s", i, o.Location, st.Location)
		}

		// Grouped by station, chronological within a station.
		if o.StationID != current {
			if finished[o.StationID] {
				p.errorf("obs[%d]: station %s is not contiguous", i, o.StationID)
			}
			if current != "" {
				finished[current] = true
			}
			current = o.StationID
		} else if !o.Timestamp.After(last) {
			p.errorf("obs[%d]: %s not after previous reading", i, o.Timestamp.Format(time.RFC3339))
		}
		last = o.Timestamp

		if o.Timestamp.Before(r.Start) || !o.Timestamp.Before(r.End) {
			p.errorf("obs[%d]: timestamp %s outside range", i, o.Timestamp.Format(time.RFC3339))
		}
		if o.Timestamp.Sub(r.Start)%step != 0 {
			p.errorf("obs[%d]: timestamp %s not on the %s cadence", i, o.Timestamp.Format(time.RFC3339), step)
		}
		perStationDay[o.StationID+"|"+o.Timestamp.Format(time.DateOnly)]++

		checkEnvelope(p, i, o)
	}

	for key, n := range perStationDay {
		if n > perDay {
			p.errorf("%s: %d readings exceed cadence %d", key, n, perDay)
		}
	}
	return p
}

func checkEnvelope(p *phase, i int, o domain.Observation) {
	if !o.Condition.Valid() {
		p.errorf("obs[%d]: unknown condition %q", i, o.Condition)
		return
	}
	env := o.Condition.Envelope()
	if !env.Humidity.Contains(o.HumidityPct) {
		p.errorf("obs[%d]: humidity %g outside %s envelope", i, o.HumidityPct, o.Condition)
	}
	// Out-of-envelope temperatures are pulled back to within 2°C of the bound.
	if o.TemperatureC < env.Temp.Min-2.05 || o.TemperatureC > env.Temp.Max+2.05 {
		p.errorf("obs[%d]: temperature %g too far outside %s envelope", i, o.TemperatureC, o.Condition)
	}
	if o.PrecipitationMM < 0 {
		p.errorf("obs[%d]: negative precipitation %g", i, o.PrecipitationMM)
	}
	if o.WindDirectionDeg < 0 || o.WindDirectionDeg > 360 {
		p.errorf("obs[%d]: wind direction %g outside [0, 360]", i, o.WindDirectionDeg)
	}
	minVis := 5.0
	if o.Condition == domain.ConditionFoggy {
		minVis = 0.1
	}
	if o.VisibilityKM < minVis || o.VisibilityKM > 50 {
		p.errorf("obs[%d]: visibility %g outside [%g, 50]", i, o.VisibilityKM, minVis)
	}
}

// ── Phase 3: fires ──

func validateFires(ds *dataset, r domain.DateRange) *phase {
	p := &phase{name: "Phase 3: Fire record integrity"}
	if !ds.manifest.Fires && len(ds.fires) > 0 {
		p.errorf("fires disabled in manifest but %d fire records present", len(ds.fires))
	}

	origins := make(map[string][]domain.Point)
	for _, st := range domain.ActiveStations(ds.stations) {
		pt, _ := st.Point()
		origins[st.City] = append(origins[st.City], pt)
	}

	validCause := setOf(domain.FireCauses)
	validStatus := setOf(domain.FireStatuses)

	for i, f := range ds.fires {
		if f.FireID != int64(i+1) {
			p.errorf("fire[%d]: id %d, want %d", i, f.FireID, i+1)
		}
		if f.Name != domain.FireName(f.City, f.FireID) {
			p.errorf("fire %d: name %q, want %q", f.FireID, f.Name, domain.FireName(f.City, f.FireID))
		}
		if !f.ContainmentDate.After(f.FireDate) {
			p.errorf("fire %d: containment %s not after ignition %s", f.FireID,
				f.ContainmentDate.Format(time.RFC3339), f.FireDate.Format(time.RFC3339))
		}
		if f.ContainmentDate.Sub(f.FireDate) > 14*24*time.Hour {
			p.errorf("fire %d: contained after more than 14 days", f.FireID)
		}
		if f.FireDate.Before(r.Start) || !f.FireDate.Before(r.End) {
			p.errorf("fire %d: fire_date %s outside range", f.FireID, f.FireDate.Format(time.RFC3339))
		}
		if f.SizeHectares < 0.1 {
			p.errorf("fire %d: size %g below 0.1 ha", f.FireID, f.SizeHectares)
		}
		if !validCause[f.Cause] {
			p.errorf("fire %d: unknown cause %q", f.FireID, f.Cause)
		}
		if !validStatus[f.Status] {
			p.errorf("fire %d: unknown status %q", f.FireID, f.Status)
		}

		pt, err := domain.ParsePoint(f.Location)
		if err != nil {
			p.errorf("fire %d: %v", f.FireID, err)
			continue
		}
		if !nearAny(pt, origins[f.City]) {
			p.errorf("fire %d: location %s not within %g° of an active %s station", f.FireID, f.Location, maxFireOffsetDeg, f.City)
		}
	}
	return p
}

func nearAny(pt domain.Point, origins []domain.Point) bool {
	const eps = 1e-4 // coordinates are rounded to four places
	for _, o := range origins {
		if math.Abs(pt.Lat-o.Lat) <= maxFireOffsetDeg+eps && math.Abs(pt.Lon-o.Lon) <= maxFireOffsetDeg+eps {
			return true
		}
	}
	return false
}

func setOf[T comparable](items []T) map[T]bool {
	m := make(map[T]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// ── Phase 4: reproducibility ──

func validateReproducibility(ds *dataset) *phase {
	p := &phase{name: "Phase 4: Reproducible from manifest"}

	files, err := regenerate(ds.manifest)
	if err != nil {
		p.errorf("regenerate: %v", err)
		return p
	}
	for _, name := range []string{fixture.ManifestFile, fixture.StationsFile, fixture.ObservationsFile, fixture.FiresFile} {
		if !bytes.Equal(files[name], ds.raw[name]) {
			p.errorf("%s differs from a fresh generation with seed %d", name, ds.manifest.Seed)
		}
	}
	return p
}
