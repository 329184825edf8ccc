package constants

// ScanStatus is the canonical status for background scan jobs.
type ScanStatus string

// Stable values (store these exact strings in DB).
const (
	ScanStatusQueued  ScanStatus = "QUEUED"  // waiting for a worker
	ScanStatusRunning ScanStatus = "RUNNING" // in progress
	ScanStatusDone    ScanStatus = "DONE"    // pipeline finished, entry written
	ScanStatusFailed  ScanStatus = "FAILED"  // terminal failure
)
