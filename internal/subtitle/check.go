package subtitle

import "fmt"

type Issue struct {
	ID      int
	Problem string
}

func (i Issue) String() string {
	return fmt.Sprintf("entry %d: %s", i.ID, i.Problem)
}

// Check reports entries that are well-formed JSON but questionable as subtitles:
// non-positive or duplicate ids, unparseable timestamps, end not after start,
// id order disagreeing with start order, and empty text. It never modifies entries.
func Check(entries []Entry) []Issue {
	var issues []Issue
	seen := make(map[int]bool, len(entries))

	var (
		prevID    int
		prevStart int64
		havePrev  bool
	)

	for _, entry := range entries {
		if entry.ID <= 0 {
			issues = append(issues, Issue{ID: entry.ID, Problem: "id is not positive"})
		}
		if seen[entry.ID] {
			issues = append(issues, Issue{ID: entry.ID, Problem: "duplicate id"})
		}
		seen[entry.ID] = true

		if entry.Text == "" {
			issues = append(issues, Issue{ID: entry.ID, Problem: "empty text"})
		}

		start, startErr := ParseTimestamp(entry.StartTime)
		end, endErr := ParseTimestamp(entry.EndTime)
		if startErr != nil {
			issues = append(issues, Issue{ID: entry.ID, Problem: fmt.Sprintf("bad start time %q", entry.StartTime)})
		}
		if endErr != nil {
			issues = append(issues, Issue{ID: entry.ID, Problem: fmt.Sprintf("bad end time %q", entry.EndTime)})
		}
		if startErr != nil || endErr != nil {
			continue
		}

		if end <= start {
			issues = append(issues, Issue{ID: entry.ID, Problem: "end time is not after start time"})
		}

		if havePrev && entry.ID > prevID && start.Milliseconds() < prevStart {
			issues = append(issues, Issue{ID: entry.ID, Problem: "starts before the previous entry"})
		}
		if havePrev && entry.ID < prevID {
			issues = append(issues, Issue{ID: entry.ID, Problem: "id is lower than the previous entry"})
		}

		prevID = entry.ID
		prevStart = start.Milliseconds()
		havePrev = true
	}

	return issues
}
