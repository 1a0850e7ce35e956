/*
report.go - Utilization summary over a plan window

PURPOSE:
  Aggregates plan items into per-technician-per-date utilization: minutes
  used and the used/cap ratio. Backs the plan overview endpoint.
*/
package planner

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TechDayUtilization is one technician's load on one date.
type TechDayUtilization struct {
	TechnicianID string
	Date         time.Time
	MinutesUsed  int
	Items        int
	// Utilization is MinutesUsed / DailyCap, e.g. "0.75" at 360 of 480.
	Utilization decimal.Decimal
}

// Utilization summarizes plan items (auto and manual alike) per
// technician-day, sorted by date then technician id.
func Utilization(items []PlanItem, capMinutes int) []TechDayUtilization {
	type key struct {
		tech string
		date string
	}
	agg := make(map[key]*TechDayUtilization)

	for _, item := range items {
		k := key{tech: item.TechnicianID, date: DateKey(item.PlanDate)}
		u, ok := agg[k]
		if !ok {
			u = &TechDayUtilization{TechnicianID: item.TechnicianID, Date: item.PlanDate}
			agg[k] = u
		}
		u.MinutesUsed += item.DurationMinutes()
		u.Items++
	}

	capDec := decimal.NewFromInt(int64(capMinutes))
	out := make([]TechDayUtilization, 0, len(agg))
	for _, u := range agg {
		if capMinutes > 0 {
			u.Utilization = decimal.NewFromInt(int64(u.MinutesUsed)).DivRound(capDec, 4)
		}
		out = append(out, *u)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].TechnicianID < out[j].TechnicianID
	})
	return out
}
