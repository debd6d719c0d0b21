package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/mcp-go/mcp"
)

// stateView is the JSON shape returned to agents.
type stateView struct {
	Step        int             `json:"step"`
	StepCount   int             `json:"stepCount"`
	Title       string          `json:"title"`
	Direction   string          `json:"direction"`
	Status      string          `json:"status"`
	Form        intake.FormData `json:"form"`
	CanAdvance  bool            `json:"canAdvance"`
	CanSubmit   bool            `json:"canSubmit"`
	Error       string          `json:"error,omitempty"`
	Receipt     *intake.Receipt `json:"receipt,omitempty"`
	LastReceipt *intake.Receipt `json:"lastReceipt,omitempty"`
	Dismissals  int             `json:"dismissals"`
}

func (s *Server) view(st intake.State) stateView {
	last, dismissals := s.events()
	v := stateView{
		Step:        st.Step(),
		StepCount:   st.StepCount,
		Title:       s.ctrl.Steps()[st.StepIndex].Title,
		Direction:   st.Direction.String(),
		Status:      st.Status.String(),
		Form:        st.Form,
		CanAdvance:  st.CanAdvance,
		CanSubmit:   st.CanSubmit,
		Receipt:     st.Receipt,
		LastReceipt: last,
		Dismissals:  len(dismissals),
	}
	if st.Err != nil {
		v.Error = st.Err.Error()
	}
	return v
}

// result renders a one-line outcome followed by the state as JSON.
func (s *Server) result(msg string, st intake.State) *mcp.CallToolResult {
	data, err := json.MarshalIndent(s.view(st), "", "  ")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: failed to marshal state: %v", err))
	}
	return mcp.NewToolResultText(msg + "\n" + string(data))
}

// handleGetState returns the current snapshot.
func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.ctrl.State()
	return s.result(fmt.Sprintf("Step %d of %d", st.Step(), st.StepCount), st), nil
}

// handleUpdateField sets one field from its string form.
func (s *Server) handleUpdateField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("field")
	if err != nil {
		return mcp.NewToolResultText("error: missing 'field' parameter"), nil
	}
	field, err := intake.ParseField(name)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
	}

	raw, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultText("error: missing 'value' parameter"), nil
	}

	var value any = raw
	if field == intake.FieldServices {
		value = splitServices(raw)
	}

	if err := s.ctrl.UpdateField(field, value); err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
	}
	return s.result(fmt.Sprintf("Updated %s", field), s.ctrl.State()), nil
}

// splitServices turns "A, B" into ["A", "B"], dropping empty entries.
func splitServices(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// handleToggleService flips one service.
func (s *Server) handleToggleService(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("service")
	if err != nil {
		return mcp.NewToolResultText("error: missing 'service' parameter"), nil
	}
	if err := s.ctrl.ToggleService(name); err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
	}
	return s.result(fmt.Sprintf("Toggled %s", name), s.ctrl.State()), nil
}

// handleAdvance moves forward one step.
func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.ctrl.Advance() {
		st := s.ctrl.State()
		return s.result(fmt.Sprintf("Cannot advance: step %d (%s) is incomplete or not editable",
			st.Step(), s.ctrl.Steps()[st.StepIndex].Title), st), nil
	}
	return s.result("Advanced", s.ctrl.State()), nil
}

// handleRetreat moves back one step.
func (s *Server) handleRetreat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.ctrl.Retreat() {
		return s.result("Cannot go back from here", s.ctrl.State()), nil
	}
	return s.result("Went back", s.ctrl.State()), nil
}

// handleSubmit starts the submission and, unless wait is false, blocks
// until it settles.
func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.ctrl.Submit() {
		st := s.ctrl.State()
		msg := "Cannot submit: the form is incomplete or a submission is in flight"
		if !st.IsLastStep() {
			msg = fmt.Sprintf("Cannot submit from step %d; advance to step %d first", st.Step(), st.StepCount)
		}
		return s.result(msg, st), nil
	}

	if !request.GetBool("wait", true) {
		return s.result("Submission started", s.ctrl.State()), nil
	}

	st := s.waitSettled(ctx)
	switch st.Status {
	case intake.StatusSucceeded:
		return s.result("Project submitted: "+st.Receipt.Reference, st), nil
	case intake.StatusFailed:
		return s.result("Submission failed; edit the form or submit again", st), nil
	case intake.StatusIdle:
		// The dismiss delay already elapsed and the session reset.
		return s.result("Project submitted; wizard reset", st), nil
	default:
		return s.result("Submission still in flight", st), nil
	}
}

// handleClose discards the form.
func (s *Server) handleClose(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.ctrl.Close() {
		return s.result("Cannot close while a submission is in flight", s.ctrl.State()), nil
	}
	return s.result("Wizard closed", s.ctrl.State()), nil
}
