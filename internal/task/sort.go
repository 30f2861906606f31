package task

import "sort"

// SortPolicy names a listing order. The project changed its mind about the
// default order between releases, so the policy is explicit and swappable
// rather than baked into the store.
type SortPolicy string

const (
	// SortCompletedFirst puts completed tasks at the top and the
	// in-progress task at the bottom, right above the prompt. Within each
	// bucket, newest first. This is the default.
	SortCompletedFirst SortPolicy = "completed-first"

	// SortActiveFirst puts active (non-completed) tasks at the top,
	// newest first, with completed tasks in a trailing bucket.
	SortActiveFirst SortPolicy = "active-first"
)

// ParseSortPolicy validates a policy name from the command line.
func ParseSortPolicy(s string) (SortPolicy, error) {
	switch SortPolicy(s) {
	case SortCompletedFirst, SortActiveFirst:
		return SortPolicy(s), nil
	case "":
		return SortCompletedFirst, nil
	}
	return "", &ValidationError{Field: "order", Reason: "invalid order (valid: completed-first, active-first)"}
}

// displayTime is the timestamp a list entry is ordered by: completion time
// for completed tasks, creation time otherwise.
func displayTime(t Task) int64 {
	if t.Status == StatusCompleted && !t.CompletedAt.IsZero() {
		return t.CompletedAt.Unix()
	}
	return t.CreatedAt.Unix()
}

func completedFirstRank(s Status) int {
	switch s {
	case StatusCompleted:
		return 0
	case StatusDraft:
		return 1
	default: // in-progress last, visible without scrolling
		return 2
	}
}

// Sort orders tasks in place according to the policy.
func Sort(tasks []Task, policy SortPolicy) {
	switch policy {
	case SortActiveFirst:
		sort.SliceStable(tasks, func(i, j int) bool {
			ci, cj := tasks[i].Status == StatusCompleted, tasks[j].Status == StatusCompleted
			if ci != cj {
				return !ci
			}
			return displayTime(tasks[i]) > displayTime(tasks[j])
		})
	default: // SortCompletedFirst
		sort.SliceStable(tasks, func(i, j int) bool {
			ri, rj := completedFirstRank(tasks[i].Status), completedFirstRank(tasks[j].Status)
			if ri != rj {
				return ri < rj
			}
			return displayTime(tasks[i]) > displayTime(tasks[j])
		})
	}
}
