package mcp

import "github.com/mark3labs/mcp-go/mcp"

// profileNameSchema validates the arguments of the name-carrying tools.
const profileNameSchema = `{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string", "minLength": 1}
	}
}`

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check that the OpenRGB server is reachable"),
		),
		s.handleGetHealth,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_profiles",
			mcp.WithDescription("List the lighting profiles saved on the OpenRGB server, in server order"),
		),
		s.handleListProfiles,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("load_profile",
			mcp.WithDescription("Activate a saved lighting profile"),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Exact profile name, case-sensitive"),
			),
		),
		s.handleLoadProfile,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("save_profile",
			mcp.WithDescription("Save the current lighting state as a profile, replacing any profile with the same name"),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Profile name"),
			),
		),
		s.handleSaveProfile,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_profile",
			mcp.WithDescription("Delete a saved lighting profile"),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Exact profile name, case-sensitive"),
			),
		),
		s.handleDeleteProfile,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_devices",
			mcp.WithDescription("List RGB devices of one type with their mode and LED counts"),
			mcp.WithString("type",
				mcp.Description("Device type such as DRAM, GPU or Keyboard (default DRAM)"),
			),
		),
		s.handleListDevices,
	)
}
