package domain

// Market is descriptive metadata for a Polymarket market, used only for
// labeling output. The matching logic never reads it.
type Market struct {
	ID          string
	ConditionID string
	Question    string
	Slug        string
}
