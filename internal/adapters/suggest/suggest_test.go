package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"fmeacore/internal/core"
	"fmeacore/pkg/domain"
)

type fakeOpenAI struct {
	mu      sync.Mutex
	replies []string
	prompts []string
	formats []string
	status  int
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
		return
	}
	var req struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		ResponseFormat struct {
			Type string `json:"type"`
		} `json:"response_format"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if n := len(req.Messages); n > 0 {
		f.prompts = append(f.prompts, req.Messages[n-1].Content)
	}
	f.formats = append(f.formats, req.ResponseFormat.Type)
	content := "{}"
	if len(f.replies) > 0 {
		content, f.replies = f.replies[0], f.replies[1:]
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"model":   "gpt-test",
		"choices": []map[string]any{{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": content}}},
	})
}

func newTestProvider(t *testing.T, fake *fakeOpenAI) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test", Model: "gpt-test", BaseURL: srv.URL + "/v1", HTTPClient: srv.Client()})
	require.NoError(t, err)
	return p
}

func TestNewOpenAIProviderRequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{APIKey: "  "})
	require.ErrorIs(t, err, ErrMissingAPIKey)
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k"})
	require.NoError(t, err)
	require.Equal(t, DefaultModel, p.Model())
}

func TestOpenAIProviderParsesReplies(t *testing.T) {
	ctx := context.Background()
	fake := &fakeOpenAI{replies: []string{
		`{"items": ["Caliper", " ", "Rotor"]}`,
		`{"functions": [{"description": "Clamp rotor", "requirements": "2 kN"}, {"description": ""}]}`,
		`{"modes": ["No clamping", "Partial clamping"]}`,
		`{"effect": "Long stop", "cause": "Seal leak", "prevention": "Seal spec", "detection": "Leak test"}`,
	}}
	p := newTestProvider(t, fake)

	items, err := p.SuggestStructure(ctx, "Brake", domain.TypeDesign)
	require.NoError(t, err)
	require.Equal(t, []string{"Caliper", "Rotor"}, items)

	fns, err := p.SuggestFunctions(ctx, "Caliper", domain.TypeDesign)
	require.NoError(t, err)
	require.Equal(t, []FunctionSuggestion{{Description: "Clamp rotor", Requirements: "2 kN"}}, fns)

	modes, err := p.SuggestFailureModes(ctx, "Clamp rotor", domain.TypeProcess)
	require.NoError(t, err)
	require.Len(t, modes, 2)

	risk, err := p.SuggestRiskAnalysis(ctx, "No clamping", domain.TypeDesign)
	require.NoError(t, err)
	require.Equal(t, "Seal leak", risk.Cause)

	require.Len(t, fake.prompts, 4)
	require.Contains(t, fake.prompts[0], `"Brake"`)
	require.Contains(t, fake.prompts[0], "DFMEA")
	require.Contains(t, fake.prompts[2], "PFMEA")
	for _, f := range fake.formats {
		require.Equal(t, "json_object", f)
	}
}

func TestOpenAIProviderEmptyAndMalformedReplies(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, &fakeOpenAI{replies: []string{`{"items": []}`, `not json`, ``, `{}`}})

	_, err := p.SuggestStructure(ctx, "x", domain.TypeDesign)
	require.ErrorIs(t, err, ErrNoSuggestions)
	_, err = p.SuggestFailureModes(ctx, "x", domain.TypeDesign)
	require.ErrorIs(t, err, ErrNoSuggestions)
	_, err = p.SuggestFunctions(ctx, "x", domain.TypeDesign)
	require.ErrorIs(t, err, ErrNoSuggestions)
	_, err = p.SuggestRiskAnalysis(ctx, "x", domain.TypeDesign)
	require.ErrorIs(t, err, ErrNoSuggestions)
}

func TestOpenAIProviderTransportError(t *testing.T) {
	p := newTestProvider(t, &fakeOpenAI{status: http.StatusInternalServerError})
	_, err := p.SuggestStructure(context.Background(), "x", domain.TypeDesign)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNoSuggestions))
	require.True(t, strings.HasPrefix(err.Error(), "suggest structure:"))
}

func TestMergeStructure(t *testing.T) {
	tree, err := MergeStructure(nil, "", []string{"Pump", "Motor"})
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Equal(t, DefaultRootName, tree[0].Name)
	require.Equal(t, domain.KindSystem, tree[0].Kind)
	require.Len(t, tree[0].Children, 2)
	require.Equal(t, tree[0].ID, *tree[0].Children[1].ParentID)
	require.Equal(t, domain.KindComponent, tree[0].Children[1].Kind)

	again, err := MergeStructure(tree, "ignored", []string{"Valve"})
	require.NoError(t, err)
	require.Len(t, again[0].Children, 3)
	require.Len(t, tree[0].Children, 2)

	same, err := MergeStructure(tree, "x", []string{" "})
	require.ErrorIs(t, err, ErrNoSuggestions)
	require.Equal(t, tree, same)
}

func seedTree() (core.Tree, core.FunctionPath, core.FailurePath) {
	node := domain.NewStructureNode(nil, "Caliper", domain.KindComponent)
	fn := domain.NewFunction(node.ID, "Clamp rotor", "")
	failure := domain.NewFailure(fn.ID, "No clamping")
	fn.Failures = []domain.Failure{failure}
	node.Functions = []domain.Function{fn}
	fp := core.FunctionPath{NodeID: node.ID, FunctionID: fn.ID}
	return core.Tree{node}, fp, fp.Failure(failure.ID)
}

func TestMergeFunctionsAndFailureModes(t *testing.T) {
	tree, fp, _ := seedTree()
	out, err := MergeFunctions(tree, fp.NodeID, []FunctionSuggestion{{Description: "Hold pads", Requirements: "none"}})
	require.NoError(t, err)
	node, _ := core.FindNode(out, fp.NodeID)
	require.Len(t, node.Functions, 2)
	require.Equal(t, fp.NodeID, node.Functions[1].NodeID)

	_, err = MergeFunctions(tree, "missing", []FunctionSuggestion{{Description: "x"}})
	var nf domain.ErrNotFound
	require.ErrorAs(t, err, &nf)
	_, err = MergeFunctions(tree, fp.NodeID, []FunctionSuggestion{{}})
	require.ErrorIs(t, err, ErrNoSuggestions)

	out, err = MergeFailureModes(tree, fp, []string{"Drag", "Noise"})
	require.NoError(t, err)
	fn, _ := core.FindFunction(out, fp)
	require.Len(t, fn.Failures, 3)
	require.Equal(t, "Noise", fn.Failures[2].FailureMode)
	require.Empty(t, fn.Failures[2].Causes)

	_, err = MergeFailureModes(tree, core.FunctionPath{NodeID: fp.NodeID, FunctionID: "x"}, []string{"a"})
	require.ErrorAs(t, err, &nf)
}

func TestMergeRiskAnalysis(t *testing.T) {
	tree, _, path := seedTree()
	out, err := MergeRiskAnalysis(tree, path, RiskSuggestion{Effect: "Long stop", Prevention: "Spec", Detection: "Test"})
	require.NoError(t, err)
	failure, _ := core.FindFailure(out, path)
	require.Equal(t, []string{"Long stop"}, failure.FailureEffects)
	require.Len(t, failure.Causes, 1)
	cause := failure.Causes[0]
	require.Equal(t, DefaultCauseName, cause.Description)
	require.Equal(t, "Spec", cause.PreventionControl)
	require.Equal(t, domain.PriorityLow, cause.ActionPriority)
	require.Zero(t, cause.Severity)

	original, _ := core.FindFailure(tree, path)
	require.Empty(t, original.Causes)

	_, err = MergeRiskAnalysis(tree, path, RiskSuggestion{})
	require.ErrorIs(t, err, ErrNoSuggestions)
}

type stubProvider struct {
	structure []string
	err       error
}

func (s stubProvider) SuggestStructure(context.Context, string, domain.FmeaType) ([]string, error) {
	return s.structure, s.err
}

func (s stubProvider) SuggestFunctions(context.Context, string, domain.FmeaType) ([]FunctionSuggestion, error) {
	return []FunctionSuggestion{{Description: "Generated"}}, s.err
}

func (s stubProvider) SuggestFailureModes(context.Context, string, domain.FmeaType) ([]string, error) {
	return []string{"Mode"}, s.err
}

func (s stubProvider) SuggestRiskAnalysis(context.Context, string, domain.FmeaType) (RiskSuggestion, error) {
	return RiskSuggestion{Cause: "Wear"}, s.err
}

func TestAssistantMergesIntoSession(t *testing.T) {
	ctx := context.Background()
	project := domain.NewProject("Brake")
	project.Scope = "Brake system"
	session := core.NewSession(domain.Document{Project: project})
	a := NewAssistant(stubProvider{structure: []string{"Caliper"}}, session)

	tree, err := a.Structure(ctx)
	require.NoError(t, err)
	require.Equal(t, "Brake system", tree[0].Name)
	caliper := tree[0].Children[0]

	tree, err = a.Functions(ctx, caliper.ID)
	require.NoError(t, err)
	node, _ := core.FindNode(tree, caliper.ID)
	fp := core.FunctionPath{NodeID: caliper.ID, FunctionID: node.Functions[0].ID}

	tree, err = a.FailureModes(ctx, fp)
	require.NoError(t, err)
	fn, _ := core.FindFunction(tree, fp)
	path := fp.Failure(fn.Failures[0].ID)

	_, err = a.RiskAnalysis(ctx, path)
	require.NoError(t, err)
	failure, ok := core.FindFailure(session.Tree(), path)
	require.True(t, ok)
	require.Equal(t, "Wear", failure.Causes[0].Description)
}

func TestAssistantLeavesTreeOnProviderError(t *testing.T) {
	tree, fp, _ := seedTree()
	session := core.NewSession(domain.Document{Project: domain.NewProject("x"), Structure: tree})
	a := NewAssistant(stubProvider{err: ErrNoSuggestions}, session)
	_, err := a.FailureModes(context.Background(), fp)
	require.ErrorIs(t, err, ErrNoSuggestions)
	require.Equal(t, tree, session.Tree())

	_, err = a.Functions(context.Background(), "missing")
	var nf domain.ErrNotFound
	require.ErrorAs(t, err, &nf)
}
