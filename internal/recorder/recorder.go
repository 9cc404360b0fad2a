package recorder

// RunRecord holds the outcome of one per-ticker analysis run.
type RunRecord struct {
	Ticker       string
	Period       string
	Status       string // "success" or "failed"
	Attempts     int
	CurrentPrice float64
	FilesWritten int
	OutputDir    string
	DurationMS   int64
	Error        string
}

// Recorder persists per-ticker run outcomes for later inspection.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	Close() error
}
