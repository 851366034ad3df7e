// Package tools defines the request and response schemas of the rivet MCP
// tools. Vectors travel in their text form, e.g. "0|1 1|3 4|2 5".
package tools

const (
	// ToolGenerateLabel is the name of the generate_label MCP tool
	ToolGenerateLabel = "generate_label"

	// ToolCombine is the name of the combine MCP tool
	ToolCombine = "combine"

	// ToolScale is the name of the scale MCP tool
	ToolScale = "scale"

	// ToolNormalize is the name of the normalize MCP tool
	ToolNormalize = "normalize"

	// ToolMagnitude is the name of the magnitude MCP tool
	ToolMagnitude = "magnitude"

	// ToolPermute is the name of the permute MCP tool
	ToolPermute = "permute"

	// ToolSimilarity is the name of the similarity MCP tool
	ToolSimilarity = "similarity"

	// ToolSaveVector is the name of the save_vector MCP tool
	ToolSaveVector = "save_vector"

	// ToolLoadVector is the name of the load_vector MCP tool
	ToolLoadVector = "load_vector"

	// ToolDeleteLabel is the name of the delete_label MCP tool
	ToolDeleteLabel = "delete_label"

	// ToolClearLabels is the name of the clear_labels MCP tool
	ToolClearLabels = "clear_labels"
)

// Operations accepted by combine and scale
const (
	OpAdd      = "add"
	OpSubtract = "subtract"
	OpMultiply = "multiply"
	OpDivide   = "divide"
)

// ClearConfirmation must be sent with clear_labels.
const ClearConfirmation = "confirm"

// Response status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// GenerateLabelRequest defines the input schema for generate_label tool.
// When Source is set the token is Source[Start:Start+Length] in runes and
// the label is not cached; otherwise Word is labeled through the lexicon.
type GenerateLabelRequest struct {
	Word   string `json:"word,omitempty"`
	Source string `json:"source,omitempty"`
	Start  int    `json:"start,omitempty"`
	Length int    `json:"length,omitempty"`
}

// GenerateLabelResponse defines the output schema for generate_label tool
type GenerateLabelResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Label is the label vector in text form
	Label string `json:"label,omitempty"`

	// Count is the number of nonzero entries in Label
	Count int `json:"count"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`

	// ErrorCode classifies Error
	ErrorCode string `json:"error_code,omitempty"`
}

// CombineRequest defines the input schema for combine tool. With "add" all
// vectors are summed; with "subtract" the rest are subtracted from the first.
type CombineRequest struct {
	Vectors   []string `json:"vectors"`
	Operation string   `json:"operation"`
}

// VectorResponse is the output schema of every tool returning a single vector
type VectorResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Vector is the result in text form
	Vector string `json:"vector,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`

	// ErrorCode classifies Error
	ErrorCode string `json:"error_code,omitempty"`
}

// ScaleRequest defines the input schema for scale tool
type ScaleRequest struct {
	Vector    string  `json:"vector"`
	Operation string  `json:"operation"`
	Scalar    float64 `json:"scalar"`
}

// VectorRequest is the input schema of tools taking a single vector
type VectorRequest struct {
	Vector string `json:"vector"`
}

// MagnitudeResponse defines the output schema for magnitude tool
type MagnitudeResponse struct {
	Status    string  `json:"status"`
	Magnitude float64 `json:"magnitude"`
	Error     string  `json:"error,omitempty"`
	ErrorCode string  `json:"error_code,omitempty"`
}

// PermuteRequest defines the input schema for permute tool. Positive Times
// applies the forward table, negative applies the inverse.
type PermuteRequest struct {
	Vector string `json:"vector"`
	Times  int    `json:"times"`
}

// SimilarityRequest defines the input schema for similarity tool
type SimilarityRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// SimilarityResponse defines the output schema for similarity tool
type SimilarityResponse struct {
	Status     string  `json:"status"`
	Similarity float64 `json:"similarity"`
	Error      string  `json:"error,omitempty"`
	ErrorCode  string  `json:"error_code,omitempty"`
}

// SaveVectorResponse defines the output schema for save_vector tool
type SaveVectorResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// ID is the identifier assigned to the saved vector
	ID string `json:"id,omitempty"`

	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// LoadVectorRequest defines the input schema for load_vector tool
type LoadVectorRequest struct {
	ID string `json:"id"`
}

// DeleteLabelRequest defines the input schema for delete_label tool
type DeleteLabelRequest struct {
	Word string `json:"word"`
}

// StatusResponse is the output schema of tools that return no data
type StatusResponse struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// ClearLabelsRequest defines the input schema for clear_labels tool
type ClearLabelsRequest struct {
	// Confirmation must be set to "confirm" to prevent accidental clearing
	Confirmation string `json:"confirmation"`
}

// ClearLabelsResponse defines the output schema for clear_labels tool
type ClearLabelsResponse struct {
	Status       string `json:"status"`
	DeletedCount int    `json:"deleted_count"`
	Error        string `json:"error,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
}
