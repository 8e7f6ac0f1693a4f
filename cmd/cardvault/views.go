package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"mercator-hq/cardvault/pkg/archive"
	"mercator-hq/cardvault/pkg/archive/orchestrator"
	"mercator-hq/cardvault/pkg/archive/policy"
	"mercator-hq/cardvault/pkg/archive/retention"
)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// recordList renders archive records one per row.
type recordList []*archive.Record

func (l recordList) Header() []string {
	return []string{"ARCHIVE ID", "ITEM ID", "TYPE", "ARCHIVED AT", "FAVORITE", "MANUAL"}
}

func (l recordList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{
			r.ArchiveID,
			r.ItemID,
			string(r.ItemType),
			r.ArchivedAt.UTC().Format(time.RFC3339),
			yesNo(r.IsFavorite),
			yesNo(r.IsManual),
		})
	}
	return rows
}

// recordDetail renders one record with a payload summary.
type recordDetail struct {
	*archive.Record
}

func (d recordDetail) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Record)
}

func (d recordDetail) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Archive ID:  %s\n", d.ArchiveID)
	fmt.Fprintf(&b, "Item ID:     %s\n", d.ItemID)
	fmt.Fprintf(&b, "Type:        %s\n", d.ItemType)
	fmt.Fprintf(&b, "Archived At: %s\n", d.ArchivedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Favorite:    %s\n", yesNo(d.IsFavorite))
	fmt.Fprintf(&b, "Manual:      %s\n", yesNo(d.IsManual))

	switch p := d.Payload.(type) {
	case *archive.PackBundle:
		fmt.Fprintf(&b, "Pack:        %s (%d cards)", p.Pack.Name, len(p.Cards))
	case *archive.DeckSnapshot:
		fmt.Fprintf(&b, "Deck:        %s (main %d, side %d, extra %d)",
			p.Name, zoneTotal(p.Main), zoneTotal(p.Side), zoneTotal(p.Extra))
	}
	return b.String()
}

func zoneTotal(zone []archive.CardCount) int {
	n := 0
	for _, c := range zone {
		n += c.Count
	}
	return n
}

// reportList renders sweep results one pair per row.
type reportList []*retention.EvictionReport

func (l reportList) Header() []string {
	return []string{"COLLECTION", "TYPE", "POLICY", "PURGED", "BY AGE", "BY COUNT", "KEPT", "DRY RUN"}
}

func (l reportList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{
			string(r.Collection),
			string(r.ItemType),
			r.Policy.String(),
			strconv.Itoa(len(r.PurgedIDs)),
			strconv.Itoa(r.AgePurged),
			strconv.Itoa(r.CountPurged),
			strconv.Itoa(r.KeptCount),
			yesNo(r.DryRun),
		})
	}
	return rows
}

// policyRow is one resolved policy.
type policyRow struct {
	Collection archive.Collection `json:"collection"`
	ItemType   archive.ItemType   `json:"item_type"`
	Policy     policy.Policy      `json:"policy"`
}

type policyTable []policyRow

func newPolicyTable(all map[archive.Collection]map[archive.ItemType]policy.Policy) policyTable {
	var t policyTable
	for _, c := range archive.Collections {
		for _, it := range archive.ItemTypes {
			t = append(t, policyRow{Collection: c, ItemType: it, Policy: all[c][it]})
		}
	}
	return t
}

func (t policyTable) Header() []string {
	return []string{"COLLECTION", "TYPE", "TIME LIMIT", "MAX SIZE"}
}

func (t policyTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		days, size := "unlimited", "unlimited"
		if r.Policy.HasTimeLimit() {
			days = fmt.Sprintf("%d days", r.Policy.TimeLimitDays)
		}
		if r.Policy.HasMaxSize() {
			size = strconv.Itoa(r.Policy.MaxSize)
		}
		rows = append(rows, []string{string(r.Collection), string(r.ItemType), days, size})
	}
	return rows
}

// itemResult is the printable outcome of one item of a batch command.
type itemResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type resultList []itemResult

func newResultList(results []orchestrator.ItemResult) resultList {
	out := make(resultList, 0, len(results))
	for _, r := range results {
		res := itemResult{ID: r.ID, Status: "ok"}
		if r.Err != nil {
			res.Status = "failed"
			res.Error = r.Err.Error()
		}
		out = append(out, res)
	}
	return out
}

func (l resultList) Header() []string { return []string{"ID", "STATUS", "ERROR"} }

func (l resultList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{r.ID, r.Status, r.Error})
	}
	return rows
}

// idList renders deleted ids, one per line.
type idList []string

func (l idList) Header() []string { return []string{"ARCHIVE ID"} }

func (l idList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, id := range l {
		rows = append(rows, []string{id})
	}
	return rows
}
