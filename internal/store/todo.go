package store

import (
	"sort"
	"strings"
)

// TodoItem is one entry of the persisted todo list.
type TodoItem struct {
	Text     string `json:"text"`
	Author   string `json:"author,omitempty"`
	Deadline int64  `json:"deadline,omitempty"`
	Done     bool   `json:"done"`
}

// SortTodos orders items open first, then by deadline. Ties keep their order.
func SortTodos(items []TodoItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Done != items[j].Done {
			return !items[i].Done
		}
		return items[i].Deadline < items[j].Deadline
	})
}

func todoIndex(items []TodoItem, text string) int {
	text = strings.TrimSpace(text)
	for i, it := range items {
		if it.Text == text {
			return i
		}
	}
	return -1
}
