package workflow

import (
	"fmt"

	"medibook/models"
)

// stepIndex returns a step's position in the wizard order, or -1.
func stepIndex(step models.Step) int {
	for i, s := range models.StepOrder {
		if s == step {
			return i
		}
	}
	return -1
}

// ErrStepUnreachable is returned when navigation targets a step whose
// prerequisites are not all completed.
type ErrStepUnreachable struct {
	Step    models.Step
	Missing models.Step
}

func (e *ErrStepUnreachable) Error() string {
	return fmt.Sprintf("step %s is not reachable: %s has not been completed", e.Step, e.Missing)
}

// firstMissingPrerequisite returns the earliest incomplete step before the
// target, or "" when the target is reachable.
func firstMissingPrerequisite(target models.Step, completed map[models.Step]bool) models.Step {
	idx := stepIndex(target)
	for i := 0; i < idx; i++ {
		if !completed[models.StepOrder[i]] {
			return models.StepOrder[i]
		}
	}
	return ""
}
