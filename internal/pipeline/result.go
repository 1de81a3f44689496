package pipeline

// ConvertStatus is the terminal state of a conversion run.
type ConvertStatus string

const (
	ConvertStatusSuccess ConvertStatus = "Success"
	ConvertStatusFailure ConvertStatus = "Failure"
	ConvertStatusSkipped ConvertStatus = "Skipped"
)

// ConvertResult contains structured outputs from RunConvert.
type ConvertResult struct {
	Status     ConvertStatus
	OutputPath string
	RunID      string

	// Records counts emitted lines; UnitsSeen counts every closed unit.
	// The gap between the two is the number of incomplete units dropped.
	Records   int64
	UnitsSeen int64
	BytesRead int64

	// LimitReached is set when the run stopped early at the record limit.
	LimitReached bool
}
