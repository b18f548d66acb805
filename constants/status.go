package constants

// JobStatus is the canonical status for rows in the documents table.
type JobStatus string

// Stable values (store these exact strings in the DB).
const (
	JobStatusQueued  JobStatus = "QUEUED"  // queued for processing
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusOCROK   JobStatus = "OCR_OK"  // stage 1 completed (text recognized)
	JobStatusParsed  JobStatus = "PARSED"  // stage 2 completed (fields extracted)
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)
