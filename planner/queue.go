/*
queue.go - Backlog loading order

PURPOSE:
  Filters the raw work-item backlog to schedulable categories and imposes
  the strict total order the allocator walks. Because allocation is greedy
  and single-pass, this comparator IS the scheduling policy: an item sorted
  earlier can starve one sorted later, never the reverse.

COMPARATOR (applied in order until a tie-break resolves):
  1. Criticality: critical (or sla_business_days = 0) before non-critical
  2. Priority rank: urgent(4) > high(3) > normal(2) > low(1)
  3. created_at ascending (oldest first)
*/
package planner

import "sort"

// OrderBacklog filters items to the schedulable categories and returns them
// in allocation order. Items in other categories are excluded entirely; the
// input slice is not modified.
func OrderBacklog(items []WorkItem, schedulable []Category) []WorkItem {
	allowed := make(map[Category]bool, len(schedulable))
	for _, c := range schedulable {
		allowed[c] = true
	}

	queue := make([]WorkItem, 0, len(items))
	for _, item := range items {
		if allowed[item.Category] {
			queue = append(queue, item)
		}
	}

	sort.SliceStable(queue, func(i, j int) bool {
		a, b := queue[i], queue[j]
		if a.Critical() != b.Critical() {
			return a.Critical()
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	return queue
}
