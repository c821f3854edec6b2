package tracker

import "errors"

// Validation failures. Every ConfigError wraps exactly one of these, so
// callers can branch with errors.Is.
var (
	ErrMissingType        = errors.New("missing required field \"type\"")
	ErrMissingSource      = errors.New("missing required field \"source\"")
	ErrInvalidSource      = errors.New("invalid source")
	ErrMissingKeyColumn   = errors.New("table mode requires \"keyColumn\"")
	ErrMissingValueColumn = errors.New("table mode requires \"valueColumn\"")
	ErrMissingValue       = errors.New("table mode requires \"value\"")
	ErrConflictingModes   = errors.New("cannot combine table mode (keyColumn/valueColumn) with pattern mode (pattern)")
	ErrNoMode             = errors.New("no extraction mode: set keyColumn, valueColumn and value, or set pattern")
)

// ConfigError reports structurally invalid block text. It is surfaced to the
// user as-is and never retried.
type ConfigError struct {
	Field   Field
	Message string
	Hint    string
	Example string
	Err     error
}

func (e *ConfigError) Error() string {
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// newConfigError creates a ConfigError carrying the hint and example
// registered for the sentinel.
func newConfigError(sentinel error, field Field, message string) *ConfigError {
	if message == "" {
		message = sentinel.Error()
	}
	r := remediations[sentinel]
	return &ConfigError{
		Field:   field,
		Message: message,
		Hint:    r.hint,
		Example: r.example,
		Err:     sentinel,
	}
}

type remediation struct {
	hint    string
	example string
}

var remediations = map[error]remediation{
	ErrMissingType: {
		hint:    "Add a type line: progress_bar, counter, percentage, streak or line_plot.",
		example: "type: counter\nsource: current-file\npattern: - [x]",
	},
	ErrMissingSource: {
		hint:    "Add a source line: current-file, file:<path> or folder:<path>.",
		example: "type: streak\nsource: folder:Daily\npattern: #workout",
	},
	ErrInvalidSource: {
		hint:    "Use current-file, file:<path> or folder:<path> with a non-empty path.",
		example: "source: folder:Journal/2026",
	},
	ErrMissingKeyColumn: {
		hint:    "Name the column that identifies each row.",
		example: "keyColumn: Activity\nvalueColumn: Done\nvalue: ✓",
	},
	ErrMissingValueColumn: {
		hint:    "Name the column whose cells are measured.",
		example: "keyColumn: Activity\nvalueColumn: Done\nvalue: ✓",
	},
	ErrMissingValue: {
		hint:    "Set value to numeric, any, or the text that marks a row as done.",
		example: "value: numeric",
	},
	ErrConflictingModes: {
		hint:    "Remove either the pattern line or the table column lines.",
		example: "type: counter\nsource: current-file\npattern: - [x]",
	},
	ErrNoMode: {
		hint:    "Count text with pattern, or read a table with keyColumn, valueColumn and value.",
		example: "type: counter\nsource: current-file\nkeyColumn: Task\nvalueColumn: Status\nvalue: done",
	},
}
