package types

// IssueType classifies a problem the judge found in a plan.
type IssueType string

const (
	IssueLogicalContradiction  IssueType = "logical_contradiction"
	IssueTemporalImpossibility IssueType = "temporal_impossibility"
	IssueGeographicError       IssueType = "geographic_error"
	IssueFabricatedDetail      IssueType = "fabricated_detail"
)

// Severe issues force an option down to low confidence.
func (t IssueType) Severe() bool {
	switch t {
	case IssueFabricatedDetail, IssueLogicalContradiction, IssueTemporalImpossibility:
		return true
	}
	return false
}

type JudgeIssue struct {
	OptionID    string    `json:"optionId"`
	Type        IssueType `json:"type"`
	Description string    `json:"description"`
}

// JudgeResult is the judge's verdict on a whole plan.
type JudgeResult struct {
	Valid  bool         `json:"valid"`
	Issues []JudgeIssue `json:"issues"`
}

// NoIssues is what a failed or timed-out judge reports.
func NoIssues() JudgeResult {
	return JudgeResult{Valid: true, Issues: []JudgeIssue{}}
}
