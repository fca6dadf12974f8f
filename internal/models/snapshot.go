package models

import "sort"

// Snapshot is the complete persisted state of an account. It is also the
// export format.
type Snapshot struct {
	Records                   []Record     `json:"records" yaml:"records"`
	Loans                     []LoanRecord `json:"loans" yaml:"loans"`
	Settings                  Settings     `json:"settings" yaml:"settings"`
	OverconsumptionCategories []string     `json:"overconsumption_categories" yaml:"overconsumption_categories"`
}

// BackupSnapshot is a Snapshot stamped with the backup time and format version.
type BackupSnapshot struct {
	Snapshot   `yaml:",inline"`
	BackupTime string `json:"backup_time" yaml:"backup_time"`
	Version    string `json:"version" yaml:"version"`
}

// Snapshot top-level keys
const (
	KeyRecords                   = "records"
	KeyLoans                     = "loans"
	KeySettings                  = "settings"
	KeyOverconsumptionCategories = "overconsumption_categories"
	KeyBackupTime                = "backup_time"
	KeyVersion                   = "version"
)

// DefaultSnapshot is the state used when nothing has been persisted yet.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Records:                   []Record{},
		Loans:                     []LoanRecord{},
		Settings:                  DefaultSettings(),
		OverconsumptionCategories: []string{},
	}
}

// Clone returns a deep copy, so the result shares no slices with s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Records:                   make([]Record, len(s.Records)),
		Loans:                     make([]LoanRecord, len(s.Loans)),
		Settings:                  s.Settings,
		OverconsumptionCategories: make([]string, len(s.OverconsumptionCategories)),
	}
	copy(out.Records, s.Records)
	for i, loan := range s.Loans {
		if loan.DueDate != nil {
			due := *loan.DueDate
			loan.DueDate = &due
		}
		out.Loans[i] = loan
	}
	copy(out.OverconsumptionCategories, s.OverconsumptionCategories)
	return out
}

// CategorySet converts a category list into a set.
func CategorySet(categories []string) map[string]struct{} {
	set := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}
	return set
}

// SortedCategories returns the members of set in ascending order.
func SortedCategories(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
