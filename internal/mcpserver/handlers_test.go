package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// gatedBackend blocks each submission until the test sends an outcome.
type gatedBackend struct {
	outcomes chan error
}

func newGatedBackend() *gatedBackend {
	return &gatedBackend{outcomes: make(chan error, 4)}
}

func (b *gatedBackend) Submit(ctx context.Context, form intake.FormData) (intake.Receipt, error) {
	select {
	case err := <-b.outcomes:
		if err != nil {
			return intake.Receipt{}, err
		}
		return intake.Receipt{Reference: "acme-0001", ReceivedAt: time.Now()}, nil
	case <-ctx.Done():
		return intake.Receipt{}, ctx.Err()
	}
}

func setupTestServer(t *testing.T, backend intake.Backend, opts ...intake.Option) *Server {
	t.Helper()
	srv := New(backend, opts...)
	t.Cleanup(func() { _ = srv.Stop() })
	return srv
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) string {
	t.Helper()
	result, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return extractText(result)
}

// extractText extracts text from CallToolResult.Content[0]
func extractText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := result.Content[0].(mcp.TextContent); ok {
		return textContent.Text
	}
	return ""
}

// decodeView parses the JSON state that follows the first line.
func decodeView(t *testing.T, text string) stateView {
	t.Helper()
	_, body, ok := strings.Cut(text, "\n")
	if !ok {
		t.Fatalf("result has no state body: %q", text)
	}
	var v stateView
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("failed to decode state: %v\n%s", err, body)
	}
	return v
}

// fillForm completes every step and leaves the wizard on the last one.
func fillForm(t *testing.T, srv *Server) {
	t.Helper()
	call(t, srv.handleUpdateField, map[string]any{"field": "projectName", "value": "Acme"})
	call(t, srv.handleUpdateField, map[string]any{"field": "description", "value": "Build site"})
	call(t, srv.handleAdvance, nil)
	call(t, srv.handleToggleService, map[string]any{"service": intake.ServiceWebsite})
	call(t, srv.handleAdvance, nil)
	call(t, srv.handleUpdateField, map[string]any{"field": "budget", "value": "10000-25000"})
	call(t, srv.handleUpdateField, map[string]any{"field": "timeline", "value": "3-4"})
	if !srv.Controller().CanSubmit() {
		t.Fatalf("form should be ready to submit, state: %+v", srv.Controller().State())
	}
}

func TestHandleGetState_Initial(t *testing.T) {
	srv := setupTestServer(t, newGatedBackend())

	text := call(t, srv.handleGetState, nil)
	if !strings.HasPrefix(text, "Step 1 of 3") {
		t.Errorf("unexpected headline: %q", text)
	}
	v := decodeView(t, text)
	if v.Title != "Project Details" || v.Status != "idle" || v.CanAdvance {
		t.Errorf("unexpected initial state: %+v", v)
	}
}

func TestHandleUpdateField(t *testing.T) {
	srv := setupTestServer(t, newGatedBackend())

	text := call(t, srv.handleUpdateField, map[string]any{"field": "projectName", "value": "Acme"})
	if v := decodeView(t, text); v.Form.ProjectName != "Acme" {
		t.Errorf("projectName = %q, want Acme", v.Form.ProjectName)
	}

	text = call(t, srv.handleUpdateField, map[string]any{"field": "services", "value": "Marketing, Website Development,"})
	v := decodeView(t, text)
	if !v.Form.Services.Has(intake.ServiceMarketing) || !v.Form.Services.Has(intake.ServiceWebsite) || len(v.Form.Services) != 2 {
		t.Errorf("services = %v", v.Form.Services.List())
	}

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "missing field", args: map[string]any{"value": "x"}, want: "missing 'field'"},
		{name: "unknown field", args: map[string]any{"field": "email", "value": "x"}, want: "unknown field"},
		{name: "missing value", args: map[string]any{"field": "budget"}, want: "missing 'value'"},
		{name: "bad budget", args: map[string]any{"field": "budget", "value": "free"}, want: "invalid value"},
		{name: "unknown service", args: map[string]any{"field": "services", "value": "Catering"}, want: "unknown service"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := call(t, srv.handleUpdateField, tt.args)
			if !strings.HasPrefix(text, "error:") || !strings.Contains(text, tt.want) {
				t.Errorf("got %q, want error containing %q", text, tt.want)
			}
		})
	}
}

func TestHandleAdvance_RequiresValidStep(t *testing.T) {
	srv := setupTestServer(t, newGatedBackend())

	text := call(t, srv.handleAdvance, nil)
	if !strings.HasPrefix(text, "Cannot advance: step 1 (Project Details)") {
		t.Errorf("unexpected result: %q", text)
	}

	call(t, srv.handleUpdateField, map[string]any{"field": "projectName", "value": "Acme"})
	call(t, srv.handleUpdateField, map[string]any{"field": "description", "value": "Build site"})
	text = call(t, srv.handleAdvance, nil)
	v := decodeView(t, text)
	if v.Step != 2 || v.Direction != "forward" {
		t.Errorf("after advance: %+v", v)
	}

	text = call(t, srv.handleRetreat, nil)
	v = decodeView(t, text)
	if v.Step != 1 || v.Direction != "backward" || v.Form.ProjectName != "Acme" {
		t.Errorf("after retreat: %+v", v)
	}

	if text := call(t, srv.handleRetreat, nil); !strings.HasPrefix(text, "Cannot go back") {
		t.Errorf("retreat on first step: %q", text)
	}
}

func TestHandleToggleService(t *testing.T) {
	srv := setupTestServer(t, newGatedBackend())

	call(t, srv.handleToggleService, map[string]any{"service": intake.ServiceBrand})
	if !srv.Controller().State().Form.Services.Has(intake.ServiceBrand) {
		t.Fatal("service should be selected")
	}
	call(t, srv.handleToggleService, map[string]any{"service": intake.ServiceBrand})
	if srv.Controller().State().Form.Services.Has(intake.ServiceBrand) {
		t.Fatal("service should be deselected")
	}

	if text := call(t, srv.handleToggleService, nil); !strings.Contains(text, "missing 'service'") {
		t.Errorf("unexpected result: %q", text)
	}
}

func TestHandleSubmit_NotOnLastStep(t *testing.T) {
	srv := setupTestServer(t, newGatedBackend())

	text := call(t, srv.handleSubmit, nil)
	if !strings.HasPrefix(text, "Cannot submit from step 1") {
		t.Errorf("unexpected result: %q", text)
	}
}

func TestHandleSubmit_WaitsForSuccess(t *testing.T) {
	backend := newGatedBackend()
	srv := setupTestServer(t, backend, intake.WithDismissDelay(time.Hour))
	fillForm(t, srv)

	backend.outcomes <- nil
	text := call(t, srv.handleSubmit, nil)
	if !strings.HasPrefix(text, "Project submitted: acme-0001") {
		t.Fatalf("unexpected result: %q", text)
	}
	v := decodeView(t, text)
	if v.Status != "succeeded" || v.Receipt == nil || v.LastReceipt == nil {
		t.Errorf("unexpected state: %+v", v)
	}

	// The form is frozen until the wizard dismisses itself.
	text = call(t, srv.handleUpdateField, map[string]any{"field": "projectName", "value": "Other"})
	if !strings.Contains(text, intake.ErrFrozen.Error()) {
		t.Errorf("expected frozen error, got %q", text)
	}
}

func TestHandleSubmit_FailureThenRetry(t *testing.T) {
	backend := newGatedBackend()
	srv := setupTestServer(t, backend)
	fillForm(t, srv)

	backend.outcomes <- errors.New("desk offline")
	text := call(t, srv.handleSubmit, map[string]any{"wait": true})
	v := decodeView(t, text)
	if v.Status != "failed" || v.Error != "desk offline" || v.Step != 3 {
		t.Fatalf("unexpected state after failure: %+v", v)
	}

	backend.outcomes <- nil
	text = call(t, srv.handleSubmit, nil)
	if !strings.HasPrefix(text, "Project submitted") {
		t.Errorf("retry should succeed, got %q", text)
	}
}

func TestHandleSubmit_NoWaitAndSingleFlight(t *testing.T) {
	backend := newGatedBackend()
	srv := setupTestServer(t, backend)
	fillForm(t, srv)

	text := call(t, srv.handleSubmit, map[string]any{"wait": false})
	if v := decodeView(t, text); v.Status != "submitting" {
		t.Fatalf("status = %s, want submitting", v.Status)
	}

	if text := call(t, srv.handleSubmit, map[string]any{"wait": false}); !strings.HasPrefix(text, "Cannot submit") {
		t.Errorf("second submit should be rejected, got %q", text)
	}
	if text := call(t, srv.handleClose, nil); !strings.HasPrefix(text, "Cannot close") {
		t.Errorf("close should be rejected while submitting, got %q", text)
	}

	backend.outcomes <- nil
}

func TestHandleSubmit_SessionReopensAfterDismissal(t *testing.T) {
	backend := newGatedBackend()
	srv := setupTestServer(t, backend, intake.WithDismissDelay(10*time.Millisecond))
	fillForm(t, srv)

	backend.outcomes <- nil
	call(t, srv.handleSubmit, nil)

	deadline := time.Now().Add(5 * time.Second)
	for {
		_, dismissals := srv.events()
		if len(dismissals) == 1 {
			if dismissals[0] != intake.DismissCompleted {
				t.Fatalf("dismissal reason = %s, want completed", dismissals[0])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("wizard was never dismissed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	v := decodeView(t, call(t, srv.handleGetState, nil))
	if v.Step != 1 || v.Status != "idle" || !v.Form.IsEmpty() {
		t.Errorf("session should restart empty: %+v", v)
	}
	if v.LastReceipt == nil || v.LastReceipt.Reference != "acme-0001" {
		t.Errorf("last receipt should survive the reset: %+v", v.LastReceipt)
	}

	// A new session accepts input right away.
	call(t, srv.handleUpdateField, map[string]any{"field": "projectName", "value": "Second"})
	if srv.Controller().State().Form.ProjectName != "Second" {
		t.Error("new session should be editable")
	}
}

func TestHandleClose(t *testing.T) {
	srv := setupTestServer(t, newGatedBackend())
	call(t, srv.handleUpdateField, map[string]any{"field": "projectName", "value": "Acme"})

	text := call(t, srv.handleClose, nil)
	v := decodeView(t, text)
	if !strings.HasPrefix(text, "Wizard closed") || !v.Form.IsEmpty() || v.Dismissals != 1 {
		t.Errorf("unexpected close result: %q", text)
	}
}

func TestServer_HTTPRoundTrip(t *testing.T) {
	srv := setupTestServer(t, newGatedBackend())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	port, err := srv.Start(ctx, 0)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if port == 0 {
		t.Fatal("Start() should bind a port")
	}
	if _, err := srv.Start(ctx, 0); err == nil {
		t.Error("second Start() should fail")
	}

	c, err := client.NewStreamableHttpClient(srv.URL())
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer func() { _ = c.Close() }()

	if err := c.Start(ctx); err != nil {
		t.Fatalf("client start: %v", err)
	}
	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "intake-test", Version: "1.0.0"}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := make(map[string]bool)
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"get-state", "update-field", "toggle-service", "advance", "retreat", "submit", "close"} {
		if !names[want] {
			t.Errorf("tool %q not registered", want)
		}
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = "update-field"
	req.Params.Arguments = map[string]any{"field": "projectName", "value": "Over HTTP"}
	res, err := c.CallTool(ctx, req)
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if !strings.HasPrefix(extractText(res), "Updated projectName") {
		t.Errorf("unexpected tool result: %q", extractText(res))
	}
	if got := srv.Controller().State().Form.ProjectName; got != "Over HTTP" {
		t.Errorf("projectName = %q, want Over HTTP", got)
	}

	if err := srv.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
