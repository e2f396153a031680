package models

// ReferenceLists holds the catalog choices of the completion form. They are
// fetched once when the flow enters the completion screen.
type ReferenceLists struct {
	Areas   []string `json:"areas"`
	Setores []string `json:"setores"`
}
