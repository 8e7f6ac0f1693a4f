package retention

import (
	"sort"
	"time"

	"mercator-hq/cardvault/pkg/archive"
	"mercator-hq/cardvault/pkg/archive/policy"
)

// EvictionPlan is the outcome of planning a sweep over one set of records.
type EvictionPlan struct {
	// ByAge are the records older than the policy's time limit, oldest first.
	ByAge []*archive.Record

	// ByCount are the non-favorite survivors beyond MaxSize, newest first.
	ByCount []*archive.Record

	// Kept is the number of records that survive both passes.
	Kept int
}

// IDs returns the archive ids of every record the plan evicts.
func (p *EvictionPlan) IDs() []string {
	ids := make([]string, 0, len(p.ByAge)+len(p.ByCount))
	for _, r := range p.ByAge {
		ids = append(ids, r.ArchiveID)
	}
	for _, r := range p.ByCount {
		ids = append(ids, r.ArchiveID)
	}
	return ids
}

// Len returns the number of records the plan evicts.
func (p *EvictionPlan) Len() int {
	return len(p.ByAge) + len(p.ByCount)
}

// Plan decides which records a policy evicts at time now. It does not
// filter by item type; callers pass the records of one pair.
//
// Pruning happens in two passes:
//  1. Age: every record archived strictly before now minus the time limit,
//     favorites included.
//  2. Count: among the survivors, non-favorites ordered newest first are cut
//     after MaxSize. Favorites are never cut and do not count against the cap.
//
// Plan is pure and deterministic: ties on ArchivedAt are broken by archive id.
func Plan(records []*archive.Record, p policy.Policy, now time.Time) *EvictionPlan {
	plan := &EvictionPlan{}

	survivors := records
	if p.HasTimeLimit() {
		cutoff := now.AddDate(0, 0, -p.TimeLimitDays)
		survivors = make([]*archive.Record, 0, len(records))
		for _, r := range records {
			if r.ArchivedAt.Before(cutoff) {
				plan.ByAge = append(plan.ByAge, r)
			} else {
				survivors = append(survivors, r)
			}
		}
		sortOldestFirst(plan.ByAge)
	}

	if p.HasMaxSize() {
		var candidates []*archive.Record
		for _, r := range survivors {
			if !r.IsFavorite {
				candidates = append(candidates, r)
			}
		}
		if len(candidates) > p.MaxSize {
			sortNewestFirst(candidates)
			plan.ByCount = candidates[p.MaxSize:]
		}
	}

	plan.Kept = len(survivors) - len(plan.ByCount)
	return plan
}

func sortNewestFirst(records []*archive.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.ArchivedAt.Equal(b.ArchivedAt) {
			return a.ArchivedAt.After(b.ArchivedAt)
		}
		return a.ArchiveID > b.ArchiveID
	})
}

func sortOldestFirst(records []*archive.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.ArchivedAt.Equal(b.ArchivedAt) {
			return a.ArchivedAt.Before(b.ArchivedAt)
		}
		return a.ArchiveID < b.ArchiveID
	})
}
