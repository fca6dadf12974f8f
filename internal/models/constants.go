package models

// Record kinds
const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// IncomeBucket is the category breakdown label every income record is summed under.
const IncomeBucket = "Income"

// BackupVersion is the format tag written into every backup file.
const BackupVersion = "1.0"

// Default settings of a fresh account
const (
	DefaultInitialBalance  = 0.0
	DefaultThresholdWarn   = 3000.0
	DefaultThresholdUrgent = 1000.0
	DefaultReminderEnabled = false
	DefaultReminderTime    = "20:00"
)

// File permissions
const (
	PermissionDataFile   = 0600
	PermissionDirectory  = 0750
	PermissionExportFile = 0644
)
