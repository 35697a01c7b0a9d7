package domain

import (
	"fmt"

	"golang.org/x/text/cases"
)

// CriterionKind selects how posts qualify for a request.
type CriterionKind int

const (
	CriterionAll CriterionKind = iota
	CriterionTag
	CriterionTimeRange
)

func (k CriterionKind) String() string {
	switch k {
	case CriterionAll:
		return "all"
	case CriterionTag:
		return "tag"
	case CriterionTimeRange:
		return "time_range"
	default:
		return fmt.Sprintf("CriterionKind(%d)", int(k))
	}
}

// Criterion is the selection rule of a request. Start and End are inclusive
// unix timestamps and are only meaningful for CriterionTimeRange.
type Criterion struct {
	Kind  CriterionKind
	Tag   string
	Start int64
	End   int64
}

// All selects every post.
func All() Criterion {
	return Criterion{Kind: CriterionAll}
}

// ByTag selects posts carrying tag, compared case-insensitively.
func ByTag(tag string) Criterion {
	return Criterion{Kind: CriterionTag, Tag: tag}
}

// ByTimeRange selects posts created within [start, end].
func ByTimeRange(start, end int64) (Criterion, error) {
	if start > end {
		return Criterion{}, fmt.Errorf("invalid time range: start %d is after end %d", start, end)
	}
	return Criterion{Kind: CriterionTimeRange, Start: start, End: end}, nil
}

// InRange reports whether ctime falls within the criterion's bounds.
func (c Criterion) InRange(ctime int64) bool {
	return ctime >= c.Start && ctime <= c.End
}

// HasTag reports whether tags contains the criterion's tag.
func (c Criterion) HasTag(tags []string) bool {
	want := FoldTag(c.Tag)
	for _, t := range tags {
		if FoldTag(t) == want {
			return true
		}
	}
	return false
}

// FoldTag returns the key under which tag names compare equal.
func FoldTag(name string) string {
	return cases.Fold().String(name)
}
