package intake

import "strings"

// Step is one page of the wizard with its own required fields.
type Step struct {
	ID          int
	Title       string
	Description string
	Fields      []Field
	Validate    func(FormData) bool
}

// DefaultSteps returns the intake sequence: project details, services, then
// budget and timeline.
func DefaultSteps() []Step {
	return []Step{
		{
			ID:          1,
			Title:       "Project Details",
			Description: "Tell us about your project requirements",
			Fields:      []Field{FieldProjectName, FieldDescription},
			Validate:    ValidateDetails,
		},
		{
			ID:          2,
			Title:       "Services Selection",
			Description: "Choose the services you need",
			Fields:      []Field{FieldServices},
			Validate:    ValidateServices,
		},
		{
			ID:          3,
			Title:       "Budget & Timeline",
			Description: "Define your budget and timeline",
			Fields:      []Field{FieldBudget, FieldTimeline},
			Validate:    ValidateBudgetTimeline,
		},
	}
}

// ValidateDetails requires a project name and a description.
func ValidateDetails(f FormData) bool {
	return strings.TrimSpace(f.ProjectName) != "" && strings.TrimSpace(f.Description) != ""
}

// ValidateServices requires at least one selected service.
func ValidateServices(f FormData) bool {
	return len(f.Services) > 0
}

// ValidateBudgetTimeline requires both a budget and a timeline.
func ValidateBudgetTimeline(f FormData) bool {
	return f.Budget != BudgetUnset && f.Timeline != TimelineUnset
}

// ValidateAll runs every step's validator in order and returns the ID of the
// first step that fails. ok is true when the whole form is complete.
func ValidateAll(steps []Step, f FormData) (failedStep int, ok bool) {
	for _, s := range steps {
		if s.Validate == nil || !s.Validate(f) {
			return s.ID, false
		}
	}
	return 0, true
}
