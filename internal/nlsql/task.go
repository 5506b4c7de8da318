// Package nlsql turns natural-language demo requests into structured results
// by way of a single hosted-model round trip per request.
package nlsql

// TaskType selects which demo operation a dispatch performs.
type TaskType string

const (
	TaskNLToSQL       TaskType = "nl_to_sql"
	TaskSyntheticData TaskType = "synthetic_data"
	TaskValidation    TaskType = "validation"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskNLToSQL, TaskSyntheticData, TaskValidation:
		return true
	default:
		return false
	}
}

// MaxTokens is the output-size cap sent with the model call for this task.
func (t TaskType) MaxTokens() int {
	switch t {
	case TaskNLToSQL:
		return 500
	case TaskValidation:
		return 300
	case TaskSyntheticData:
		return 200
	default:
		return 300
	}
}
