package schedule

import "fmt"

// ConfigurationError reports a malformed template: bad clock strings, a
// non-positive slot duration, inverted working hours. Fatal for the request,
// never retried.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Field, e.Message)
}

func NewConfigurationError(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown provider or slot.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// SlotConflictError reports a commit-time reservation loss: the slot was
// taken (or removed by a template change) between selection and commit.
// Recoverable, the caller should re-run time selection.
type SlotConflictError struct {
	SlotID string
	Reason string
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slot %s conflict: %s", e.SlotID, e.Reason)
}
