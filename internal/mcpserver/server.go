// Package mcpserver exposes the cookbook and the weekly planner as MCP
// tools over stdio.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"recipe-planner/internal/planner"
	"recipe-planner/internal/recipeclient"
)

// Server serves the planner tools. The meal plan lives as long as the
// server process.
type Server struct {
	mcpServer *server.MCPServer
	client    recipeclient.Client
	planner   *planner.Planner
}

// NewServer creates the MCP server and registers every tool.
func NewServer(client recipeclient.Client, p *planner.Planner, version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Recipe Planner",
			version,
			server.WithLogging(),
			server.WithRecovery(),
		),
		client:  client,
		planner: p,
	}
	s.registerTools()
	return s
}

// Start runs the stdio event loop.
func (s *Server) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPRawServer exposes the underlying mcp-go server.
func (s *Server) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_recipes",
		mcp.WithDescription("Lists every recipe in the cookbook, grouped by category."),
	), s.listRecipes)

	s.mcpServer.AddTool(mcp.NewTool("search_recipes",
		mcp.WithDescription("Finds recipes whose name, category or tags contain the query."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Case-insensitive search text.")),
	), s.searchRecipes)

	s.mcpServer.AddTool(mcp.NewTool("get_recipe",
		mcp.WithDescription("Returns a recipe with its ingredients and instructions."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Recipe ID.")),
	), s.getRecipe)

	s.mcpServer.AddTool(mcp.NewTool("plan_meal",
		mcp.WithDescription("Plans a recipe on a day of the current work week."),
		mcp.WithString("recipe_id", mcp.Required(), mcp.Description("Recipe ID.")),
		mcp.WithString("day", mcp.Required(), mcp.Description("Weekday name, DD.MM, YYYY-MM-DD or 1-5.")),
		mcp.WithNumber("servings", mcp.Description("Servings to cook, 4 when omitted.")),
	), s.planMeal)

	s.mcpServer.AddTool(mcp.NewTool("remove_meal",
		mcp.WithDescription("Removes a planned recipe from a day."),
		mcp.WithString("recipe_id", mcp.Required(), mcp.Description("Recipe ID.")),
		mcp.WithString("day", mcp.Required(), mcp.Description("Weekday name, DD.MM, YYYY-MM-DD or 1-5.")),
	), s.removeMeal)

	s.mcpServer.AddTool(mcp.NewTool("show_week",
		mcp.WithDescription("Shows the meals planned for Monday to Friday of the current week."),
	), s.showWeek)

	s.mcpServer.AddTool(mcp.NewTool("shopping_list",
		mcp.WithDescription("Builds the consolidated shopping list for everything planned, optionally mailing it."),
		mcp.WithNumber("persons", mcp.Description("Head count for meals without servings, 4 when omitted.")),
		mcp.WithString("email", mcp.Description("Send the list to this address instead of returning it.")),
	), s.shoppingList)
}
