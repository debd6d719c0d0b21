package nats

import "fmt"

// SubjectSubmissions is the request subject the intake desk answers on.
const SubjectSubmissions = "intake.submissions"

// SubjectForDesk returns the submission subject of a named desk, so several
// desks can share one server. An empty name is the default desk.
// Example: "intake.submissions.design"
func SubjectForDesk(desk string) string {
	if desk == "" {
		return SubjectSubmissions
	}
	return fmt.Sprintf("%s.%s", SubjectSubmissions, desk)
}
