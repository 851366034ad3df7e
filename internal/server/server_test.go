package server

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/localrivet/rivet/internal/labels"
	"github.com/localrivet/rivet/internal/lexicon"
	"github.com/localrivet/rivet/internal/permutation"
	"github.com/localrivet/rivet/internal/riv"
	"github.com/localrivet/rivet/internal/telemetry"
	"github.com/localrivet/rivet/internal/tools"
)

var testError = errors.New("test error")

const testDims = 64

// MockStore implements the lexicon.Store interface for testing
type MockStore struct {
	Vectors     map[string]*riv.RIV
	DeletedKeys []string
	ClearedAll  bool
	ReturnError bool
}

func NewMockStore() *MockStore {
	return &MockStore{Vectors: make(map[string]*riv.RIV)}
}

func (m *MockStore) Initialize(path string) error {
	if m.ReturnError {
		return testError
	}
	return nil
}

func (m *MockStore) Close() error {
	return nil
}

func (m *MockStore) Put(key string, v *riv.RIV) error {
	if m.ReturnError {
		return testError
	}
	m.Vectors[key] = v.Copy()
	return nil
}

func (m *MockStore) Get(key string) (*riv.RIV, error) {
	if m.ReturnError {
		return nil, testError
	}
	v, ok := m.Vectors[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", lexicon.ErrNotFound, key)
	}
	return v.Copy(), nil
}

func (m *MockStore) Delete(key string) error {
	if m.ReturnError {
		return testError
	}
	m.DeletedKeys = append(m.DeletedKeys, key)
	delete(m.Vectors, key)
	return nil
}

func (m *MockStore) Clear() (int, error) {
	if m.ReturnError {
		return 0, testError
	}
	n := len(m.Vectors)
	m.Vectors = make(map[string]*riv.RIV)
	m.ClearedAll = true
	return n, nil
}

func (m *MockStore) Count() (int, error) {
	if m.ReturnError {
		return 0, testError
	}
	return len(m.Vectors), nil
}

func newTestServer(t *testing.T, store lexicon.Store) (*MCPVectorToolServer, *telemetry.MetricsCollector) {
	t.Helper()
	metrics := telemetry.NewMetricsCollector()
	lex := lexicon.New(store, labels.NewGenerator(testDims, 4), metrics, nil)
	srv := NewVectorToolServer(lex, permutation.Generate(testDims, 1), metrics, nil)
	if err := srv.Initialize(); err != nil {
		t.Fatalf("Failed to initialize server: %v", err)
	}
	return srv, metrics
}

func TestInitialize_Errors(t *testing.T) {
	srv := NewVectorToolServer(nil, permutation.Generate(testDims, 1), nil, nil)
	if err := srv.Initialize(); err == nil {
		t.Error("Expected error for missing lexicon")
	}

	lex := lexicon.New(NewMockStore(), labels.NewGenerator(testDims, 4), nil, nil)
	srv = NewVectorToolServer(lex, permutation.Generate(testDims/2, 1), nil, nil)
	if err := srv.Initialize(); !errors.Is(err, riv.ErrSizeMismatch) {
		t.Errorf("Expected size mismatch for wrong permutation, got %v", err)
	}

	if err := NewVectorToolServer(lex, permutation.Generate(testDims, 1), nil, nil).Start(); !errors.Is(err, ErrServerNotInitialized) {
		t.Errorf("Expected ErrServerNotInitialized, got %v", err)
	}
}

// TestGenerateLabel tests the generate_label tool handler
func TestGenerateLabel(t *testing.T) {
	store := NewMockStore()
	srv, metrics := newTestServer(t, store)

	response, err := srv.handleGenerateLabel(nil, tools.GenerateLabelRequest{Word: "cat"})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if response.Status != tools.StatusSuccess {
		t.Fatalf("Expected status 'success', got '%s' (%s)", response.Status, response.Error)
	}
	if response.Count != 4 {
		t.Errorf("Expected 4 entries, got %d", response.Count)
	}

	want, _ := labels.Generate(testDims, 4, "cat")
	if response.Label != want.String() {
		t.Errorf("Expected label %s, got %s", want, response.Label)
	}
	if len(store.Vectors) != 1 {
		t.Errorf("Expected label to be cached, store has %d entries", len(store.Vectors))
	}
	if got := metrics.GetCounter(telemetry.MetricToolCalls + tools.ToolGenerateLabel); got != 1 {
		t.Errorf("Expected 1 tool call recorded, got %d", got)
	}

	// span of source text is labeled like the bare token
	span, _ := srv.handleGenerateLabel(nil, tools.GenerateLabelRequest{Source: "the cat sat", Start: 4, Length: 3})
	if span.Label != response.Label {
		t.Errorf("Expected span label %s, got %s", response.Label, span.Label)
	}

	empty, _ := srv.handleGenerateLabel(nil, tools.GenerateLabelRequest{})
	if empty.Status != tools.StatusError || empty.ErrorCode != StatusCodeValidationError {
		t.Errorf("Expected validation error for empty request, got %+v", empty)
	}
}

// TestCombine tests the combine tool handler
func TestCombine(t *testing.T) {
	srv, _ := newTestServer(t, NewMockStore())

	tests := []struct {
		name     string
		req      tools.CombineRequest
		wantVec  string
		wantCode string
	}{
		{
			name:    "add",
			req:     tools.CombineRequest{Operation: tools.OpAdd, Vectors: []string{"1|1 3|1 5|1 10", "0|2 3|1 5|-1 10"}},
			wantVec: "0|2 1|1 3|2 10",
		},
		{
			name:    "subtract cancels",
			req:     tools.CombineRequest{Operation: tools.OpSubtract, Vectors: []string{"3|5 10", "3|5 10"}},
			wantVec: "10",
		},
		{
			name:     "size mismatch",
			req:      tools.CombineRequest{Operation: tools.OpAdd, Vectors: []string{"1|1 10", "1|1 11"}},
			wantCode: StatusCodeSizeMismatch,
		},
		{
			name:     "malformed",
			req:      tools.CombineRequest{Operation: tools.OpAdd, Vectors: []string{"1|x 10"}},
			wantCode: StatusCodeMalformedInput,
		},
		{
			name:     "index out of bounds",
			req:      tools.CombineRequest{Operation: tools.OpAdd, Vectors: []string{"10|1 10"}},
			wantCode: StatusCodeIndexOutOfBounds,
		},
		{
			name:     "unknown operation",
			req:      tools.CombineRequest{Operation: "xor", Vectors: []string{"1|1 10"}},
			wantCode: StatusCodeValidationError,
		},
		{
			name:     "no vectors",
			req:      tools.CombineRequest{Operation: tools.OpAdd},
			wantCode: StatusCodeValidationError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			response, err := srv.handleCombine(nil, tc.req)
			if err != nil {
				t.Fatalf("Handler should not return error: %v", err)
			}
			if tc.wantCode != "" {
				if response.Status != tools.StatusError || response.ErrorCode != tc.wantCode {
					t.Errorf("Expected error code %s, got %+v", tc.wantCode, response)
				}
				return
			}
			if response.Vector != tc.wantVec {
				t.Errorf("Expected %s, got %s (%s)", tc.wantVec, response.Vector, response.Error)
			}
		})
	}
}

func TestScaleNormalizeMagnitude(t *testing.T) {
	srv, _ := newTestServer(t, NewMockStore())

	scaled, _ := srv.handleScale(nil, tools.ScaleRequest{Vector: "1|2 2|-4 10", Operation: tools.OpMultiply, Scalar: 0.5})
	if scaled.Vector != "1|1 2|-2 10" {
		t.Errorf("Unexpected multiply result: %+v", scaled)
	}
	divided, _ := srv.handleScale(nil, tools.ScaleRequest{Vector: "1|2 2|-4 10", Operation: tools.OpDivide, Scalar: 2})
	if divided.Vector != "1|1 2|-2 10" {
		t.Errorf("Unexpected divide result: %+v", divided)
	}
	bad, _ := srv.handleScale(nil, tools.ScaleRequest{Vector: "1|2 10", Operation: "pow"})
	if bad.ErrorCode != StatusCodeValidationError {
		t.Errorf("Expected validation error, got %+v", bad)
	}

	mag, _ := srv.handleMagnitude(nil, tools.VectorRequest{Vector: "0|1 1|-1 2|1 3|-1 4"})
	if mag.Magnitude != 2 {
		t.Errorf("Expected magnitude 2, got %v", mag.Magnitude)
	}

	norm, _ := srv.handleNormalize(nil, tools.VectorRequest{Vector: "0|1 1|-1 2|1 3|-1 4"})
	if norm.Vector != "0|0.5 1|-0.5 2|0.5 3|-0.5 4" {
		t.Errorf("Unexpected normalize result: %+v", norm)
	}
	zero, _ := srv.handleNormalize(nil, tools.VectorRequest{Vector: "4"})
	if zero.Status != tools.StatusError || zero.ErrorCode != StatusCodeValidationError {
		t.Errorf("Expected error normalizing the zero vector, got %+v", zero)
	}
}

func TestPermute(t *testing.T) {
	srv, _ := newTestServer(t, NewMockStore())
	label, _ := labels.Generate(testDims, 4, "dog")

	fwd, _ := srv.handlePermute(nil, tools.PermuteRequest{Vector: label.String(), Times: 3})
	if fwd.Status != tools.StatusSuccess {
		t.Fatalf("permute failed: %s", fwd.Error)
	}
	back, _ := srv.handlePermute(nil, tools.PermuteRequest{Vector: fwd.Vector, Times: -3})
	if back.Vector != label.String() {
		t.Errorf("Expected round trip to %s, got %s", label, back.Vector)
	}

	wrong, _ := srv.handlePermute(nil, tools.PermuteRequest{Vector: "1|1 10", Times: 1})
	if wrong.ErrorCode != StatusCodeSizeMismatch {
		t.Errorf("Expected size mismatch, got %+v", wrong)
	}
}

func TestPermute_CorruptTable(t *testing.T) {
	lex := lexicon.New(NewMockStore(), labels.NewGenerator(3, 2), nil, nil)
	bad := permutation.Pair{Forward: []int{0, 1, 7}, Backward: []int{0, 1, 2}}
	srv := NewVectorToolServer(lex, bad, nil, nil)
	if err := srv.Initialize(); err != nil {
		t.Fatalf("Failed to initialize server: %v", err)
	}

	resp, _ := srv.handlePermute(nil, tools.PermuteRequest{Vector: "2|1 3", Times: 1})
	if resp.Status != tools.StatusError || resp.ErrorCode != StatusCodeIndexOutOfBounds {
		t.Errorf("Expected index out of bounds, got %+v", resp)
	}
	if resp.Vector != "" {
		t.Errorf("Expected no vector, got %q", resp.Vector)
	}
}

func TestNewVectorToolServer_ComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	lex := lexicon.New(NewMockStore(), labels.NewGenerator(testDims, 4), nil, nil)

	srv := NewVectorToolServer(lex, permutation.Generate(testDims, 1), nil, log)
	if err := srv.Initialize(); err != nil {
		t.Fatalf("Failed to initialize server: %v", err)
	}
	if !strings.Contains(buf.String(), `"component":"server"`) {
		t.Errorf("Expected server component tag in %q", buf.String())
	}
}

func TestSimilarity(t *testing.T) {
	srv, _ := newTestServer(t, NewMockStore())

	same, _ := srv.handleSimilarity(nil, tools.SimilarityRequest{A: "1|1 2|1 10", B: "1|2 2|2 10"})
	if math.Abs(same.Similarity-1) > 1e-12 {
		t.Errorf("Expected similarity 1, got %v", same.Similarity)
	}
	zero, _ := srv.handleSimilarity(nil, tools.SimilarityRequest{A: "1|1 10", B: "10"})
	if zero.Status != tools.StatusError {
		t.Errorf("Expected error for zero vector, got %+v", zero)
	}
}

func TestSaveLoadVector(t *testing.T) {
	srv, _ := newTestServer(t, NewMockStore())

	saved, _ := srv.handleSaveVector(nil, tools.VectorRequest{Vector: "0|1 1|3 4|2 5"})
	if saved.Status != tools.StatusSuccess || saved.ID == "" {
		t.Fatalf("save failed: %+v", saved)
	}

	loaded, _ := srv.handleLoadVector(nil, tools.LoadVectorRequest{ID: saved.ID})
	if loaded.Vector != "0|1 1|3 4|2 5" {
		t.Errorf("Expected loaded vector, got %+v", loaded)
	}

	missing, _ := srv.handleLoadVector(nil, tools.LoadVectorRequest{ID: "00000000-0000-0000-0000-000000000000"})
	if missing.ErrorCode != StatusCodeNotFound {
		t.Errorf("Expected NOT_FOUND, got %+v", missing)
	}
	invalid, _ := srv.handleLoadVector(nil, tools.LoadVectorRequest{ID: "nope"})
	if invalid.ErrorCode != StatusCodeValidationError {
		t.Errorf("Expected VALIDATION_ERROR, got %+v", invalid)
	}
}

func TestDeleteAndClearLabels(t *testing.T) {
	store := NewMockStore()
	srv, _ := newTestServer(t, store)

	srv.handleGenerateLabel(nil, tools.GenerateLabelRequest{Word: "a"})
	srv.handleGenerateLabel(nil, tools.GenerateLabelRequest{Word: "b"})

	deleted, _ := srv.handleDeleteLabel(nil, tools.DeleteLabelRequest{Word: "a"})
	if deleted.Status != tools.StatusSuccess || len(store.DeletedKeys) != 1 {
		t.Errorf("delete failed: %+v", deleted)
	}

	rejected, _ := srv.handleClearLabels(nil, tools.ClearLabelsRequest{Confirmation: "yes"})
	if rejected.Status != tools.StatusError || store.ClearedAll {
		t.Errorf("Expected clear without confirmation to be rejected, got %+v", rejected)
	}

	cleared, _ := srv.handleClearLabels(nil, tools.ClearLabelsRequest{Confirmation: tools.ClearConfirmation})
	if cleared.Status != tools.StatusSuccess || cleared.DeletedCount != 1 {
		t.Errorf("Expected 1 cleared entry, got %+v", cleared)
	}
}

// TestStoreErrors tests that store failures surface as DATABASE_ERROR
func TestStoreErrors(t *testing.T) {
	store := NewMockStore()
	srv, metrics := newTestServer(t, store)
	store.ReturnError = true

	saved, _ := srv.handleSaveVector(nil, tools.VectorRequest{Vector: "1|1 5"})
	if saved.ErrorCode != StatusCodeDatabaseError {
		t.Errorf("Expected DATABASE_ERROR, got %+v", saved)
	}
	cleared, _ := srv.handleClearLabels(nil, tools.ClearLabelsRequest{Confirmation: tools.ClearConfirmation})
	if cleared.ErrorCode != StatusCodeDatabaseError {
		t.Errorf("Expected DATABASE_ERROR, got %+v", cleared)
	}
	if got := metrics.GetCounter(telemetry.MetricToolFailures + tools.ToolSaveVector); got != 1 {
		t.Errorf("Expected 1 recorded failure, got %d", got)
	}
}
