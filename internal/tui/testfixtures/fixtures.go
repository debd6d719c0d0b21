package testfixtures

import (
	"time"

	"github.com/mark3labs/intake/internal/intake"
)

// Fixed test values for consistent output
const (
	FixedProjectName = "Acme Site"
	FixedReference   = "acme-site-0f1e2d3c"
)

var (
	FixedTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
)

// CompleteForm returns a form that passes every default step.
func CompleteForm() intake.FormData {
	return intake.FormData{
		ProjectName: FixedProjectName,
		Description: "Rebuild the marketing site",
		Services:    intake.NewServiceSet(intake.ServiceWebsite, intake.ServiceMarketing),
		Budget:      intake.Budget10kTo25k,
		Timeline:    intake.Timeline3To4,
	}
}

// FixedReceipt returns the receipt MockBackend.Succeed hands out.
func FixedReceipt() intake.Receipt {
	return intake.Receipt{Reference: FixedReference, ReceivedAt: FixedTime}
}
