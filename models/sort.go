package models

// SortKey selects the ordering of a result list.
type SortKey string

const (
	SortDefault   SortKey = ""
	SortRelevance SortKey = "relevance"
	SortNameAsc   SortKey = "name_asc"
	SortNameDesc  SortKey = "name_desc"
)

func (s SortKey) Valid() bool {
	switch s {
	case SortDefault, SortRelevance, SortNameAsc, SortNameDesc:
		return true
	}
	return false
}

// Effective resolves relevance without supporting search text to name_asc.
func (s SortKey) Effective(hasText bool) SortKey {
	if s == SortRelevance && !hasText {
		return SortNameAsc
	}
	return s
}
