package domain

import "time"

// Plan partitions a generated station set against what is already persisted.
type Plan struct {
	ToInsert []Station
	ToUpdate []Station
}

// Empty reports whether the plan has no work.
func (p Plan) Empty() bool {
	return len(p.ToInsert) == 0 && len(p.ToUpdate) == 0
}

// Reconcile splits generated stations into inserts (unknown IDs) and updates
// (IDs already in persisted). Inserts are stamped CreatedAt=now; updates carry
// UpdatedAt=now and leave CreatedAt for the store to keep. When generated
// repeats an ID the first entry wins.
func Reconcile(generated []Station, persisted map[string]struct{}, now time.Time) Plan {
	var plan Plan
	seen := make(map[string]struct{}, len(generated))

	for _, s := range generated {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}

		if _, ok := persisted[s.ID]; ok {
			updated := now
			s.UpdatedAt = &updated
			s.CreatedAt = time.Time{}
			plan.ToUpdate = append(plan.ToUpdate, s)
			continue
		}
		s.CreatedAt = now
		s.UpdatedAt = nil
		plan.ToInsert = append(plan.ToInsert, s)
	}
	return plan
}

// Dedupe finds stations that share a name and location. In each group the
// most recently created station survives (the first seen on ties); the rest
// are returned for deletion in input order.
func Dedupe(stations []Station) []Station {
	type key struct{ name, location string }

	survivor := make(map[key]int, len(stations))
	for i, s := range stations {
		k := key{s.Name, normalizedLocation(s.Location)}
		j, ok := survivor[k]
		if !ok || s.CreatedAt.After(stations[j].CreatedAt) {
			survivor[k] = i
		}
	}

	var losers []Station
	for i, s := range stations {
		if survivor[key{s.Name, normalizedLocation(s.Location)}] != i {
			losers = append(losers, s)
		}
	}
	return losers
}

func normalizedLocation(wkt string) string {
	p, err := ParsePoint(wkt)
	if err != nil {
		return wkt
	}
	return p.WKT()
}
