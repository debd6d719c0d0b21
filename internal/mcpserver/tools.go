package mcpserver

import (
	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/mcp-go/mcp"
)

func fieldNames() []string {
	names := make([]string, len(intake.Fields))
	for i, f := range intake.Fields {
		names[i] = string(f)
	}
	return names
}

// registerTools registers one tool per wizard intent.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get-state",
			mcp.WithDescription("Show the current wizard step, form data, submission status and last receipt"),
		),
		s.handleGetState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("update-field",
			mcp.WithDescription("Set one form field. services takes a comma-separated list of service names; "+
				"budget and timeline take their option value (e.g. 10000-25000, 3-4)"),
			mcp.WithString("field", mcp.Required(),
				mcp.Description("Field to update"),
				mcp.Enum(fieldNames()...),
			),
			mcp.WithString("value", mcp.Required(),
				mcp.Description("New value"),
			),
		),
		s.handleUpdateField,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("toggle-service",
			mcp.WithDescription("Add the service if it is not selected, otherwise remove it"),
			mcp.WithString("service", mcp.Required(),
				mcp.Description("Service name"),
				mcp.Enum(intake.ServiceCatalog...),
			),
		),
		s.handleToggleService,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("advance",
			mcp.WithDescription("Move to the next step. Only allowed when the current step is complete"),
		),
		s.handleAdvance,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("retreat",
			mcp.WithDescription("Move back one step, keeping all entered data"),
		),
		s.handleRetreat,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("submit",
			mcp.WithDescription("Submit the project from the last step"),
			mcp.WithBoolean("wait",
				mcp.Description("Block until the submission succeeds or fails (default: true)"),
			),
		),
		s.handleSubmit,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("close",
			mcp.WithDescription("Discard the form and dismiss the wizard"),
		),
		s.handleClose,
	)
}
