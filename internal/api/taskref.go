package api

import (
	"strconv"
	"strings"
	"unicode"

	"task-planner/internal/domain"
	"task-planner/internal/errors"
)

// ResolveTask finds a task by reference. A reference is either a 1-based
// list position (all digits), a full id, or an id prefix that matches
// exactly one task.
func (a *apiImpl) ResolveTask(ref string) (domain.TaskItem, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.TaskItem{}, errors.NewInvalidInputError("task", ref, "task reference required")
	}

	items := a.manager.Items()

	if isAllDigits(ref) {
		pos, err := strconv.Atoi(ref)
		if err != nil || pos < 1 || pos > len(items) {
			return domain.TaskItem{}, errors.NewNotFoundError("task", ref)
		}
		return items[pos-1], nil
	}

	if i := items.IndexOf(ref); i >= 0 {
		return items[i], nil
	}

	var matches []domain.TaskItem
	for _, item := range items {
		if strings.HasPrefix(item.ID, ref) {
			matches = append(matches, item)
		}
	}

	switch len(matches) {
	case 0:
		return domain.TaskItem{}, errors.NewNotFoundError("task", ref)
	case 1:
		return matches[0], nil
	default:
		return domain.TaskItem{}, errors.NewInvalidInputError("task", ref, "ambiguous task reference, "+strconv.Itoa(len(matches))+" tasks match")
	}
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
