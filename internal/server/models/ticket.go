package models

// UploadTicket is a single-use authorization to PUT one object into
// storage under ObjectKey. Produced per file, never persisted, never
// reused across files.
type UploadTicket struct {
	UploadURL string
	ObjectKey string
}
