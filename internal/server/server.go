package server

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/localrivet/gomcp/server"

	"github.com/localrivet/rivet/internal/errortypes"
	"github.com/localrivet/rivet/internal/lexicon"
	"github.com/localrivet/rivet/internal/logger"
	"github.com/localrivet/rivet/internal/permutation"
	"github.com/localrivet/rivet/internal/riv"
	"github.com/localrivet/rivet/internal/telemetry"
	"github.com/localrivet/rivet/internal/tools"
)

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDependencies  = errors.New("one or more required dependencies are nil")
)

// MCPVectorToolServer implements the VectorToolServer interface for
// handling MCP tool calls on random index vectors.
type MCPVectorToolServer struct {
	lexicon   *lexicon.Lexicon
	perm      permutation.Pair
	metrics   *telemetry.MetricsCollector
	logger    *slog.Logger
	mcpServer server.Server
}

// NewVectorToolServer creates a new MCPVectorToolServer instance. metrics
// and logger may be nil.
func NewVectorToolServer(lex *lexicon.Lexicon, perm permutation.Pair, metrics *telemetry.MetricsCollector, log *slog.Logger) *MCPVectorToolServer {
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	return &MCPVectorToolServer{
		lexicon: lex,
		perm:    perm,
		metrics: metrics,
		logger:  logger.Component(log, "server"),
	}
}

// Initialize initializes the server with dependencies and configurations.
func (s *MCPVectorToolServer) Initialize() error {
	s.logger.Info("Initializing MCP Vector Tool Server")

	if s.lexicon == nil {
		return errortypes.ConfigError(ErrMissingDependencies, "server initialization failed")
	}
	if dims := s.lexicon.Generator().Dims(); s.perm.Dims() != dims {
		return errortypes.ConfigError(
			fmt.Errorf("%w: permutation has %d entries, labels have %d dimensions", riv.ErrSizeMismatch, s.perm.Dims(), dims),
			"server initialization failed")
	}

	srv := server.NewServer("rivet")

	srv = srv.Tool(tools.ToolGenerateLabel, "Generate the deterministic label vector of a word or of a span of source text",
		s.handleGenerateLabel)
	srv = srv.Tool(tools.ToolCombine, "Add or subtract a list of vectors",
		s.handleCombine)
	srv = srv.Tool(tools.ToolScale, "Multiply or divide every value of a vector by a scalar",
		s.handleScale)
	srv = srv.Tool(tools.ToolNormalize, "Scale a vector to unit magnitude",
		s.handleNormalize)
	srv = srv.Tool(tools.ToolMagnitude, "Compute the Euclidean magnitude of a vector",
		s.handleMagnitude)
	srv = srv.Tool(tools.ToolPermute, "Apply the configured index permutation a number of times",
		s.handlePermute)
	srv = srv.Tool(tools.ToolSimilarity, "Compute the cosine similarity of two vectors",
		s.handleSimilarity)
	srv = srv.Tool(tools.ToolSaveVector, "Save a vector and return its id",
		s.handleSaveVector)
	srv = srv.Tool(tools.ToolLoadVector, "Load a previously saved vector by id",
		s.handleLoadVector)
	srv = srv.Tool(tools.ToolDeleteLabel, "Remove the cached label of a word",
		s.handleDeleteLabel)
	srv = srv.Tool(tools.ToolClearLabels, "Remove every cached label and saved vector",
		s.handleClearLabels)

	s.mcpServer = srv
	s.logger.Info("MCP Vector Tool Server initialized successfully", "tool_count", 11)
	return nil
}

// Start starts the MCP server on the specified transport.
func (s *MCPVectorToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	s.logger.Info("Starting MCP Vector Tool Server")

	// Start the server using stdio transport
	stdioServer := s.mcpServer.AsStdio()
	return stdioServer.Run()
}

// Stop gracefully shuts down the MCP server.
func (s *MCPVectorToolServer) Stop() error {
	s.logger.Info("Stopping MCP Vector Tool Server")
	// The server will exit when stdin is closed
	return nil
}

// track records a tool call and returns a function that records its duration.
func (s *MCPVectorToolServer) track(tool string) func() {
	start := time.Now()
	s.metrics.IncrementCounter(telemetry.MetricToolCalls+tool, 1)
	s.metrics.RecordTimestamp(telemetry.MetricLastToolCall)
	return func() {
		s.metrics.RecordTimer(telemetry.MetricToolTime+tool, time.Since(start))
	}
}

// fail logs err and returns the status, message and code for a response.
func (s *MCPVectorToolServer) fail(tool string, err error) (string, string, string) {
	s.metrics.IncrementCounter(telemetry.MetricToolFailures+tool, 1)
	errortypes.LogError(s.logger, err)
	return tools.StatusError, err.Error(), errorCode(err)
}

// parseVector decodes a vector argument.
func parseVector(field, text string) (*riv.RIV, error) {
	v, err := riv.Parse(text)
	if err != nil {
		return nil, errortypes.ValidationError(err, "invalid vector").WithField("field", field)
	}
	return v, nil
}

// handleGenerateLabel handles the generate_label MCP tool call.
func (s *MCPVectorToolServer) handleGenerateLabel(ctx *server.Context, req tools.GenerateLabelRequest) (tools.GenerateLabelResponse, error) {
	defer s.track(tools.ToolGenerateLabel)()
	s.logger.Info("Processing generate_label request", "word", req.Word, "source_length", len(req.Source))

	response := tools.GenerateLabelResponse{Status: tools.StatusSuccess}

	var (
		label *riv.RIV
		err   error
	)
	switch {
	case req.Source != "":
		label, err = s.lexicon.Generator().LabelAt(req.Source, req.Start, req.Length)
	case req.Word != "":
		label, err = s.lexicon.Label(req.Word)
	default:
		err = errortypes.ValidationError(errors.New("word or source is required"), "invalid generate_label request")
	}
	if err != nil {
		if !errortypes.IsValidationError(err) {
			err = errortypes.Classify(err, "failed to generate label").WithField("word", req.Word)
		}
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolGenerateLabel, err)
		return response, nil
	}

	response.Label = label.String()
	response.Count = label.Count()
	return response, nil
}

// handleCombine handles the combine MCP tool call.
func (s *MCPVectorToolServer) handleCombine(ctx *server.Context, req tools.CombineRequest) (tools.VectorResponse, error) {
	defer s.track(tools.ToolCombine)()
	s.logger.Info("Processing combine request", "operation", req.Operation, "count", len(req.Vectors))

	response := tools.VectorResponse{Status: tools.StatusSuccess}

	result, err := s.combine(req)
	if err != nil {
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolCombine, err)
		return response, nil
	}

	response.Vector = result.String()
	return response, nil
}

func (s *MCPVectorToolServer) combine(req tools.CombineRequest) (*riv.RIV, error) {
	if req.Operation != tools.OpAdd && req.Operation != tools.OpSubtract {
		return nil, errortypes.ValidationError(
			fmt.Errorf("unknown operation %q", req.Operation), "invalid combine request")
	}
	if len(req.Vectors) == 0 {
		return nil, errortypes.ValidationError(errors.New("at least one vector is required"), "invalid combine request")
	}

	acc, err := parseVector("vectors[0]", req.Vectors[0])
	if err != nil {
		return nil, err
	}
	for i, text := range req.Vectors[1:] {
		v, err := parseVector(fmt.Sprintf("vectors[%d]", i+1), text)
		if err != nil {
			return nil, err
		}
		if req.Operation == tools.OpAdd {
			err = acc.AddInPlace(v)
		} else {
			err = acc.SubtractInPlace(v)
		}
		if err != nil {
			return nil, errortypes.Classify(err, "failed to combine vectors").WithField("index", i+1)
		}
	}
	return acc, nil
}

// handleScale handles the scale MCP tool call.
func (s *MCPVectorToolServer) handleScale(ctx *server.Context, req tools.ScaleRequest) (tools.VectorResponse, error) {
	defer s.track(tools.ToolScale)()
	s.logger.Info("Processing scale request", "operation", req.Operation, "scalar", req.Scalar)

	response := tools.VectorResponse{Status: tools.StatusSuccess}

	v, err := parseVector("vector", req.Vector)
	if err != nil {
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolScale, err)
		return response, nil
	}

	switch req.Operation {
	case tools.OpMultiply:
		response.Vector = v.Multiply(req.Scalar).String()
	case tools.OpDivide:
		response.Vector = v.Divide(req.Scalar).String()
	default:
		err = errortypes.ValidationError(fmt.Errorf("unknown operation %q", req.Operation), "invalid scale request")
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolScale, err)
	}
	return response, nil
}

// handleNormalize handles the normalize MCP tool call.
func (s *MCPVectorToolServer) handleNormalize(ctx *server.Context, req tools.VectorRequest) (tools.VectorResponse, error) {
	defer s.track(tools.ToolNormalize)()

	response := tools.VectorResponse{Status: tools.StatusSuccess}

	v, err := parseVector("vector", req.Vector)
	if err != nil {
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolNormalize, err)
		return response, nil
	}
	if v.Count() == 0 {
		err = errortypes.Classify(riv.ErrZeroMagnitude, "cannot normalize the zero vector")
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolNormalize, err)
		return response, nil
	}

	response.Vector = v.Normalize().String()
	return response, nil
}

// handleMagnitude handles the magnitude MCP tool call.
func (s *MCPVectorToolServer) handleMagnitude(ctx *server.Context, req tools.VectorRequest) (tools.MagnitudeResponse, error) {
	defer s.track(tools.ToolMagnitude)()

	response := tools.MagnitudeResponse{Status: tools.StatusSuccess}

	v, err := parseVector("vector", req.Vector)
	if err != nil {
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolMagnitude, err)
		return response, nil
	}

	response.Magnitude = v.Magnitude()
	return response, nil
}

// handlePermute handles the permute MCP tool call.
func (s *MCPVectorToolServer) handlePermute(ctx *server.Context, req tools.PermuteRequest) (tools.VectorResponse, error) {
	defer s.track(tools.ToolPermute)()
	s.logger.Info("Processing permute request", "times", req.Times)

	response := tools.VectorResponse{Status: tools.StatusSuccess}

	v, err := parseVector("vector", req.Vector)
	if err != nil {
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolPermute, err)
		return response, nil
	}

	permuted, err := v.Permute(s.perm, req.Times)
	if err != nil {
		err = errortypes.Classify(err, "failed to permute vector").WithField("times", req.Times)
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolPermute, err)
		return response, nil
	}

	response.Vector = permuted.String()
	return response, nil
}

// handleSimilarity handles the similarity MCP tool call.
func (s *MCPVectorToolServer) handleSimilarity(ctx *server.Context, req tools.SimilarityRequest) (tools.SimilarityResponse, error) {
	defer s.track(tools.ToolSimilarity)()

	response := tools.SimilarityResponse{Status: tools.StatusSuccess}

	a, err := parseVector("a", req.A)
	if err != nil {
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolSimilarity, err)
		return response, nil
	}
	b, err := parseVector("b", req.B)
	if err != nil {
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolSimilarity, err)
		return response, nil
	}

	sim, err := a.Similarity(b)
	if err != nil {
		err = errortypes.Classify(err, "failed to compute similarity")
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolSimilarity, err)
		return response, nil
	}

	response.Similarity = sim
	return response, nil
}

// handleSaveVector handles the save_vector MCP tool call.
func (s *MCPVectorToolServer) handleSaveVector(ctx *server.Context, req tools.VectorRequest) (tools.SaveVectorResponse, error) {
	defer s.track(tools.ToolSaveVector)()

	response := tools.SaveVectorResponse{Status: tools.StatusSuccess}

	v, err := parseVector("vector", req.Vector)
	if err != nil {
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolSaveVector, err)
		return response, nil
	}

	id, err := s.lexicon.Save(v)
	if err != nil {
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolSaveVector, storeError(err, "failed to save vector"))
		return response, nil
	}

	response.ID = id
	s.logger.Info("Successfully saved vector", "id", id)
	return response, nil
}

// handleLoadVector handles the load_vector MCP tool call.
func (s *MCPVectorToolServer) handleLoadVector(ctx *server.Context, req tools.LoadVectorRequest) (tools.VectorResponse, error) {
	defer s.track(tools.ToolLoadVector)()
	s.logger.Info("Processing load_vector request", "id", req.ID)

	response := tools.VectorResponse{Status: tools.StatusSuccess}

	v, err := s.lexicon.Load(req.ID)
	if err != nil {
		err = storeError(err, "failed to load vector").WithField("id", req.ID)
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolLoadVector, err)
		return response, nil
	}

	response.Vector = v.String()
	return response, nil
}

// handleDeleteLabel handles the delete_label MCP tool call.
func (s *MCPVectorToolServer) handleDeleteLabel(ctx *server.Context, req tools.DeleteLabelRequest) (tools.StatusResponse, error) {
	defer s.track(tools.ToolDeleteLabel)()
	s.logger.Info("Processing delete_label request", "word", req.Word)

	response := tools.StatusResponse{Status: tools.StatusSuccess}

	if req.Word == "" {
		err := errortypes.ValidationError(errors.New("word cannot be empty"), "invalid delete_label request")
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolDeleteLabel, err)
		return response, nil
	}

	if err := s.lexicon.Forget(req.Word); err != nil {
		err = storeError(err, "failed to delete label").WithField("word", req.Word)
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolDeleteLabel, err)
		return response, nil
	}

	s.logger.Info("Successfully deleted label", "word", req.Word)
	return response, nil
}

// handleClearLabels handles the clear_labels MCP tool call.
func (s *MCPVectorToolServer) handleClearLabels(ctx *server.Context, req tools.ClearLabelsRequest) (tools.ClearLabelsResponse, error) {
	defer s.track(tools.ToolClearLabels)()
	s.logger.Info("Processing clear_labels request")

	response := tools.ClearLabelsResponse{Status: tools.StatusSuccess}

	if req.Confirmation != tools.ClearConfirmation {
		err := errortypes.ValidationError(errors.New("confirmation required"),
			"set confirmation to 'confirm' to proceed with clearing all labels")
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolClearLabels, err)
		return response, nil
	}

	count, err := s.lexicon.Clear()
	if err != nil {
		response.Status, response.Error, response.ErrorCode = s.fail(tools.ToolClearLabels, storeError(err, "failed to clear labels"))
		return response, nil
	}

	s.logger.Info("Successfully cleared labels", "count", count)
	response.DeletedCount = count
	return response, nil
}
