package mcp

import "github.com/modelcontextprotocol/go-sdk/mcp"

// CoverBetweenTokensInput represents the MCP tool input for a token-to-token
// cover evaluation.
type CoverBetweenTokensInput struct {
	SceneID    string `json:"scene_id" jsonschema:"stored scene identifier"`
	AttackerID string `json:"attacker_id" jsonschema:"attacking token identifier"`
	TargetID   string `json:"target_id" jsonschema:"target token identifier"`
	Mode       string `json:"mode,omitempty" jsonschema:"evaluation mode (size_differential, tactical, coverage, sampled_3d)"`
}

// CoverFromPointInput represents the MCP tool input for a point-to-token
// cover evaluation.
type CoverFromPointInput struct {
	SceneID  string  `json:"scene_id" jsonschema:"stored scene identifier"`
	X        float64 `json:"x" jsonschema:"origin x coordinate in scene units"`
	Y        float64 `json:"y" jsonschema:"origin y coordinate in scene units"`
	TargetID string  `json:"target_id" jsonschema:"target token identifier"`
	Mode     string  `json:"mode,omitempty" jsonschema:"evaluation mode (size_differential, tactical, coverage, sampled_3d)"`
}

// CoverResult represents the MCP tool output for a cover evaluation.
type CoverResult struct {
	SceneID    string `json:"scene_id" jsonschema:"scene identifier"`
	TargetID   string `json:"target_id" jsonschema:"target token identifier"`
	Mode       string `json:"mode" jsonschema:"evaluation mode used"`
	WallLevel  string `json:"wall_level" jsonschema:"cover level from walls alone"`
	TokenLevel string `json:"token_level" jsonschema:"cover level from blocking tokens alone"`
	Level      string `json:"level" jsonschema:"combined cover level (none, lesser, standard, greater)"`
	Degraded   bool   `json:"degraded,omitempty" jsonschema:"true when the result fell back to a single center ray"`
}

// SceneGetInput represents the MCP tool input for loading a scene.
type SceneGetInput struct {
	SceneID string `json:"scene_id" jsonschema:"stored scene identifier"`
}

// SceneGetResult represents the MCP tool output for a loaded scene.
type SceneGetResult struct {
	ID       string  `json:"id" jsonschema:"scene identifier"`
	Name     string  `json:"name" jsonschema:"scene name"`
	GridSize float64 `json:"grid_size" jsonschema:"scene units per grid square"`
	Document string  `json:"document" jsonschema:"full scene document as JSON"`
}

// ScenePutInput represents the MCP tool input for storing a scene.
type ScenePutInput struct {
	SceneID  string `json:"scene_id" jsonschema:"scene identifier to store under"`
	Document string `json:"document" jsonschema:"full scene document as JSON"`
}

// ScenePutResult represents the MCP tool output for a stored scene.
type ScenePutResult struct {
	ID     string `json:"id" jsonschema:"scene identifier"`
	Tokens int    `json:"tokens" jsonschema:"number of tokens stored"`
	Walls  int    `json:"walls" jsonschema:"number of walls stored"`
}

// SceneSummary represents one entry of the scene listing.
type SceneSummary struct {
	ID       string  `json:"id" jsonschema:"scene identifier"`
	Name     string  `json:"name" jsonschema:"scene name"`
	GridSize float64 `json:"grid_size" jsonschema:"scene units per grid square"`
	Tokens   int     `json:"tokens" jsonschema:"number of tokens"`
	Walls    int     `json:"walls" jsonschema:"number of walls"`
}

// SceneListInput represents the MCP tool input for listing scenes.
type SceneListInput struct{}

// SceneListResult represents the MCP tool output for listing scenes.
type SceneListResult struct {
	Scenes []SceneSummary `json:"scenes" jsonschema:"stored scenes"`
}

// EvaluationListInput represents the MCP tool input for listing past
// evaluations.
type EvaluationListInput struct {
	Filter   string `json:"filter,omitempty" jsonschema:"AIP-160 filter, e.g. scene_id = \"demo\" AND level != \"none\""`
	PageSize int    `json:"page_size,omitempty" jsonschema:"maximum rows to return"`
}

// EvaluationEntry represents one row of the evaluation listing.
type EvaluationEntry struct {
	ID         string `json:"id" jsonschema:"evaluation identifier"`
	SceneID    string `json:"scene_id" jsonschema:"scene identifier"`
	AttackerID string `json:"attacker_id,omitempty" jsonschema:"attacking token identifier"`
	TargetID   string `json:"target_id" jsonschema:"target token identifier"`
	Mode       string `json:"mode" jsonschema:"evaluation mode used"`
	WallLevel  string `json:"wall_level" jsonschema:"cover level from walls alone"`
	TokenLevel string `json:"token_level" jsonschema:"cover level from blocking tokens alone"`
	Level      string `json:"level" jsonschema:"combined cover level"`
	CreatedAt  string `json:"created_at" jsonschema:"RFC3339 timestamp of the evaluation"`
}

// EvaluationListResult represents the MCP tool output for listing evaluations.
type EvaluationListResult struct {
	Evaluations []EvaluationEntry `json:"evaluations" jsonschema:"recorded evaluations, newest first"`
}

// CoverBetweenTokensTool defines the MCP tool schema for token-to-token cover.
func CoverBetweenTokensTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "cover_between_tokens",
		Description: "Resolves the cover level a target token has against an attacking token",
	}
}

// CoverFromPointTool defines the MCP tool schema for point-to-token cover.
func CoverFromPointTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "cover_from_point",
		Description: "Resolves the cover level a target token has against an arbitrary origin point",
	}
}

// SceneGetTool defines the MCP tool schema for loading a scene.
func SceneGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_get",
		Description: "Loads a stored scene document",
	}
}

// ScenePutTool defines the MCP tool schema for storing a scene.
func ScenePutTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_put",
		Description: "Validates and stores a scene document",
	}
}

// SceneListTool defines the MCP tool schema for listing scenes.
func SceneListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_list",
		Description: "Lists stored scenes with token and wall counts",
	}
}

// EvaluationListTool defines the MCP tool schema for listing evaluations.
func EvaluationListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "evaluation_list",
		Description: "Lists recorded cover evaluations, optionally filtered",
	}
}
