package quiz

import "strings"

// AllowList is an ordered set of accepted answers. Entries are normalized
// (trimmed, lower-cased) on construction and matched case-insensitively.
type AllowList struct {
	entries []string
	index   map[string]struct{}
}

// NewAllowList builds an allow-list. Blank values are dropped and duplicates
// collapse onto their first occurrence.
func NewAllowList(values ...string) *AllowList {
	a := &AllowList{
		entries: make([]string, 0, len(values)),
		index:   make(map[string]struct{}, len(values)),
	}
	for _, v := range values {
		n := normalize(v)
		if n == "" {
			continue
		}
		if _, dup := a.index[n]; dup {
			continue
		}
		a.index[n] = struct{}{}
		a.entries = append(a.entries, n)
	}
	return a
}

// Contains reports whether input matches an entry, ignoring case and
// surrounding whitespace.
func (a *AllowList) Contains(input string) bool {
	if a == nil {
		return false
	}
	_, ok := a.index[normalize(input)]
	return ok
}

// Entries returns a copy of the normalized entries in insertion order.
func (a *AllowList) Entries() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.entries))
	copy(out, a.entries)
	return out
}

// Len returns the number of distinct entries.
func (a *AllowList) Len() int {
	if a == nil {
		return 0
	}
	return len(a.entries)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DefaultNames is the built-in list of accepted names.
func DefaultNames() []string {
	return []string{
		"pavita",
		"papita",
		"pavita rheanne",
		"papita rheanne",
		"pavita rheanne alastair",
		"papita rheanne alastair",
		"riona",
		"gienka",
		"irish",
		"jolene",
	}
}

// DefaultPartners is the built-in list of accepted partner names.
func DefaultPartners() []string {
	return []string{
		"heru",
		"heiu",
		"heru dewanto",
		"heiu dewanto",
		"stiven",
		"stiven cullen",
		"gohyong",
		"gohyong hotteok",
		"kang deni mujaer",
		"juned",
	}
}
