package logging

// Standardized field names for structured logging.
const (
	FieldFile      = "file_path"
	FieldRecordID  = "record_id"
	FieldLoanID    = "loan_id"
	FieldCategory  = "category"
	FieldKind      = "kind"
	FieldOperation = "operation"
	FieldBalance   = "balance"
	FieldAmount    = "amount"
	FieldError     = "error"
	FieldCount     = "count"
	FieldDuration  = "duration_ms"
	FieldComponent = "component"
)
