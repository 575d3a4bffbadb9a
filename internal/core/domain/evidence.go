package domain

// EvidenceItem is one ranked, classified artifact group surfaced for
// analyst review. Items are built only from databases passing the
// inclusion rule and persist until handed to the reporting stage.
type EvidenceItem struct {
	// ID is a unique identifier assigned at aggregation time.
	ID string

	// AppID is the owning application identifier.
	AppID string

	// DBPath is the database path relative to the data root.
	DBPath string

	// Category and Priority come from the catalog match for the app.
	Category string
	Priority int

	// ImportantTables are tables whose name matched the app's pattern set
	// or whose classification carries a content signal.
	ImportantTables []TableSample

	// OtherTables are the remaining successfully analysed tables.
	OtherTables []TableSample

	// TotalRows is the aggregate true row count across all analysed tables.
	TotalRows int64

	// ScriptTables and EmailTables name the tables carrying each signal,
	// in encounter order.
	ScriptTables []string
	EmailTables  []string

	// Principal is the selected principal identity for this item,
	// empty when none was found.
	Principal string
}

// TableCount returns the number of analysed tables in the item.
func (e EvidenceItem) TableCount() int {
	return len(e.ImportantTables) + len(e.OtherTables)
}
