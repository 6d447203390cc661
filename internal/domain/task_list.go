package domain

import "strings"

// TaskList is the ordered sequence of tasks. Insertion order is list order.
type TaskList []TaskItem

// FilterOptions narrows a list for display.
type FilterOptions struct {
	Query         string
	HideCompleted bool
	Priority      *Priority
}

// IndexOf returns the position of the item with id, or -1.
func (l TaskList) IndexOf(id string) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy that does not share backing storage with l.
func (l TaskList) Clone() TaskList {
	out := make(TaskList, len(l))
	copy(out, l)
	return out
}

// IsEmpty reports whether the list has no items.
func (l TaskList) IsEmpty() bool {
	return len(l) == 0
}

// HasNoCompletedItems reports whether no item is completed.
func (l TaskList) HasNoCompletedItems() bool {
	for _, item := range l {
		if item.IsCompleted {
			return false
		}
	}
	return true
}

// FilterByTitle returns the items whose title contains query, ignoring
// case, in list order. An empty query returns a copy of the whole list.
func (l TaskList) FilterByTitle(query string) TaskList {
	if query == "" {
		return l.Clone()
	}
	needle := strings.ToLower(query)
	out := TaskList{}
	for _, item := range l {
		if strings.Contains(strings.ToLower(item.Title), needle) {
			out = append(out, item)
		}
	}
	return out
}

// Filter applies opts on top of FilterByTitle.
func (l TaskList) Filter(opts FilterOptions) TaskList {
	matched := l.FilterByTitle(opts.Query)
	out := matched[:0]
	for _, item := range matched {
		if opts.HideCompleted && item.IsCompleted {
			continue
		}
		if opts.Priority != nil && item.Priority != *opts.Priority {
			continue
		}
		out = append(out, item)
	}
	return out
}
