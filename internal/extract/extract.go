// Package extract finds domain records inside decoded webhook responses whose
// envelope shape is not fixed. Every search is an explicit depth-first walk
// bounded by a Budget; hitting the budget yields a partial Result with
// Truncated set rather than an error.
package extract

import (
	"sort"
	"strings"

	"github.com/spf13/cast"
)

const (
	DefaultMaxDepth = 32
	DefaultMaxNodes = 100000
)

type Budget struct {
	MaxDepth int
	MaxNodes int
}

func DefaultBudget() Budget {
	return Budget{MaxDepth: DefaultMaxDepth, MaxNodes: DefaultMaxNodes}
}

func (b Budget) normalized() Budget {
	if b.MaxDepth <= 0 {
		b.MaxDepth = DefaultMaxDepth
	}
	if b.MaxNodes <= 0 {
		b.MaxNodes = DefaultMaxNodes
	}
	return b
}

type Result struct {
	Records   []map[string]any
	Truncated bool
}

type frame struct {
	value any
	depth int
}

// walker drives a depth-first, pre-order traversal. visit returns false to stop
// the walk and descend=false to skip the children of the current node.
type walker struct {
	budget    Budget
	visited   int
	truncated bool
}

func (w *walker) walk(root any, visit func(v any, depth int) (descend, cont bool)) {
	stack := []frame{{value: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if w.visited >= w.budget.MaxNodes {
			w.truncated = true
			return
		}
		w.visited++

		descend, cont := visit(f.value, f.depth)
		if !cont {
			return
		}
		if !descend {
			continue
		}

		children := childrenOf(f.value)
		if len(children) == 0 {
			continue
		}
		if f.depth+1 > w.budget.MaxDepth {
			w.truncated = true
			continue
		}
		// Push in reverse so the first child is popped first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{value: children[i], depth: f.depth + 1})
		}
	}
}

func childrenOf(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		keys := orderedKeys(t)
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, t[k])
		}
		return out
	}
	return nil
}

// orderedKeys visits "data" first, then the remaining keys lexicographically.
// Decoded objects carry no insertion order.
func orderedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	hasData := false
	for k := range m {
		if k == "data" {
			hasData = true
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if hasData {
		keys = append([]string{"data"}, keys...)
	}
	return keys
}

// FirstArray returns the object elements of the first array met in a
// depth-first walk of v. v itself counts when it is an array.
func FirstArray(v any, b Budget) Result {
	w := &walker{budget: b.normalized()}
	var found []any
	w.walk(v, func(node any, _ int) (bool, bool) {
		if arr, ok := node.([]any); ok {
			found = arr
			return false, false
		}
		return true, true
	})
	return Result{Records: objects(found), Truncated: w.truncated}
}

// Tasks dispatches on the common envelope shapes:
//   - a bare array of records
//   - {data: [...]}
//   - {data: {id: ...}} for a single record
//   - anything else: the first array found under data, then under the whole value
func Tasks(v any, b Budget) Result {
	switch t := v.(type) {
	case []any:
		return Result{Records: objects(t)}
	case map[string]any:
		data, ok := t["data"]
		if !ok {
			return FirstArray(t, b)
		}
		switch d := data.(type) {
		case []any:
			return Result{Records: objects(d)}
		case map[string]any:
			if _, hasID := d["id"]; hasID {
				return Result{Records: []map[string]any{d}}
			}
		}
		if r := FirstArray(data, b); len(r.Records) > 0 || r.Truncated {
			return r
		}
		return FirstArray(t, b)
	}
	return Result{}
}

// IsStaffLike reports whether m looks like a roster entry: a non-empty
// username plus either a password key (any value) or a role key.
func IsStaffLike(m map[string]any) bool {
	if strings.TrimSpace(cast.ToString(m["username"])) == "" {
		return false
	}
	_, hasPassword := m["password"]
	_, hasRole := m["role"]
	return hasPassword || hasRole
}

// Staff collects every staff-like object anywhere in v, deduplicated by id,
// or by username when id is absent. The first occurrence wins.
func Staff(v any, b Budget) Result {
	w := &walker{budget: b.normalized()}
	seen := map[string]bool{}
	var out []map[string]any
	w.walk(v, func(node any, _ int) (bool, bool) {
		m, ok := node.(map[string]any)
		if !ok || !IsStaffLike(m) {
			return true, true
		}
		key := staffKey(m)
		if !seen[key] {
			seen[key] = true
			out = append(out, m)
		}
		return false, true
	})
	return Result{Records: out, Truncated: w.truncated}
}

func staffKey(m map[string]any) string {
	if id, ok := m["id"]; ok && id != nil {
		return "id:" + cast.ToString(id)
	}
	return "username:" + cast.ToString(m["username"])
}

var departmentTags = []string{"departments", "department_list", "depts"}

// Departments looks for an explicitly tagged department list: one of the
// departmentTags keys, or an object whose type/entity field says
// "departments" next to a data field. Untagged responses fall back to Tasks.
// Elements without an id or a name are dropped.
func Departments(v any, b Budget) Result {
	w := &walker{budget: b.normalized()}
	var found any
	w.walk(v, func(node any, _ int) (bool, bool) {
		m, ok := node.(map[string]any)
		if !ok {
			return true, true
		}
		for _, tag := range departmentTags {
			if arr, ok := m[tag].([]any); ok {
				found = arr
				return false, false
			}
		}
		kind := strings.ToLower(cast.ToString(m["type"]))
		if kind == "" {
			kind = strings.ToLower(cast.ToString(m["entity"]))
		}
		if (kind == "departments" || kind == "department") && m["data"] != nil {
			found = m["data"]
			return false, false
		}
		return true, true
	})

	var r Result
	if found != nil {
		r = Tasks(found, b)
		if arr, ok := found.([]any); ok {
			r = Result{Records: objects(arr)}
		}
	} else {
		r = Tasks(v, b)
	}
	r.Truncated = r.Truncated || w.truncated

	kept := r.Records[:0:0]
	for _, m := range r.Records {
		_, hasID := m["id"]
		if hasID || strings.TrimSpace(cast.ToString(m["name"])) != "" {
			kept = append(kept, m)
		}
	}
	r.Records = kept
	return r
}

func objects(arr []any) []map[string]any {
	out := make([]map[string]any, 0, len(arr))
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
