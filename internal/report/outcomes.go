package report

import (
	"time"

	"github.com/Ning0612/Drivemover/internal/domain"
)

var outcomeFields = append([]string{"result_name", "result_description"}, planFields...)

// OutcomeWriter writes the outcomes report, one row per applied plan item
type OutcomeWriter struct {
	file *csvFile
}

// NewOutcomeWriter creates a timestamped outcomes report in dir
func NewOutcomeWriter(dir string, now time.Time) (*OutcomeWriter, error) {
	file, err := newCSVFile(dir, "outcomes", now, outcomeFields)
	if err != nil {
		return nil, err
	}
	return &OutcomeWriter{file: file}, nil
}

// Write records one outcome
func (w *OutcomeWriter) Write(item domain.OutcomeItem) error {
	record := append([]string{string(item.Result), item.ResultDescription},
		planRecord(item.PlanItem)...)
	return w.file.write(record)
}

// Path returns the report file path
func (w *OutcomeWriter) Path() string {
	return w.file.Path()
}

// Close flushes and closes the report
func (w *OutcomeWriter) Close() error {
	return w.file.Close()
}
