package csvimport

import "strings"

// DuplicatePolicy decides how rows sharing a natural key with an
// existing record are handled during processing.
type DuplicatePolicy string

const (
	DuplicateSkip   DuplicatePolicy = "skip"
	DuplicateUpdate DuplicatePolicy = "update"
	DuplicateMerge  DuplicatePolicy = "merge"
)

// Valid reports whether the policy is one of the accepted values
func (p DuplicatePolicy) Valid() bool {
	switch p {
	case DuplicateSkip, DuplicateUpdate, DuplicateMerge:
		return true
	}
	return false
}

// DuplicateGroup is a set of rows sharing the same natural key within
// a single file. Indices are 0-based positions in the parsed row slice.
type DuplicateGroup struct {
	Key        string `json:"key"`
	RowIndices []int  `json:"row_indices"`
}

// FindDuplicates scans rows for natural-key collisions. Keys compare
// case-insensitively after trimming; rows with an empty key are left
// out since the required-field check already flags them. Only groups
// with more than one row are returned, in first-occurrence order.
func FindDuplicates(rows []*Row, mapping FieldMapping) []DuplicateGroup {
	column := mapping.ColumnFor(FieldOrderNumber)
	if column == "" {
		return nil
	}

	byKey := make(map[string][]int)
	var order []string
	for i, row := range rows {
		key := strings.ToLower(strings.TrimSpace(row.Get(column)))
		if key == "" {
			continue
		}
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], i)
	}

	var groups []DuplicateGroup
	for _, key := range order {
		if indices := byKey[key]; len(indices) > 1 {
			groups = append(groups, DuplicateGroup{Key: key, RowIndices: indices})
		}
	}
	return groups
}
