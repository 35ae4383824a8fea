package store

// Setting keys seeded by the first migration.
const (
	SettingCollaborator = "collaborator"
	SettingCompany      = "company"
	SettingHourlyRate   = "hourly_rate"
	SettingExportDir    = "export_dir"
)

type Setting struct {
	Key   string
	Value string
}

// ActivityFilter narrows ListActivities. Dates are inclusive YYYY-MM-DD bounds.
type ActivityFilter struct {
	From         string
	To           string
	Collaborator string
	Limit        int
}

// DailySummary is the logged total of one date.
type DailySummary struct {
	Date          string
	TotalMinutes  int
	ActivityCount int
	WarningCount  int
}
