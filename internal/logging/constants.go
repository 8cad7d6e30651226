package logging

// Field names shared by every component so log lines can be filtered the same
// way regardless of which stage emitted them.
const (
	FieldFile            = "file_path"
	FieldKind            = "file_kind"
	FieldStage           = "stage"
	FieldErrorCode       = "error_code"
	FieldCount           = "count"
	FieldPages           = "pages"
	FieldModel           = "model"
	FieldTokens          = "total_tokens"
	FieldUserID          = "user_id"
	FieldTransactionID   = "transaction_id"
	FieldUploadID        = "upload_id"
	FieldCategory        = "category"
	FieldDate            = "date"
	FieldDuration        = "duration_ms"
	FieldOutputFile      = "output_file"
	FieldStoreDriver     = "store_driver"
	FieldDuplicateGroups = "duplicate_groups"
	FieldRawResponse     = "raw_response"
)
