package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"fmeacore/internal/core"
	"fmeacore/pkg/domain"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// ErrMissingAPIKey is returned by NewOpenAIProvider without a key.
var ErrMissingAPIKey = errors.New("suggest: OPENAI_API_KEY not set")

const systemPrompt = "You are an expert Quality Engineer performing AIAG-VDA FMEA work. Always answer with a single JSON object."

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// OpenAIProvider implements Provider with JSON-mode chat completions.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	logger core.Logger
}

// ProviderOption configures an OpenAIProvider.
type ProviderOption func(*OpenAIProvider)

// WithProviderLogger sets the logger.
func WithProviderLogger(l core.Logger) ProviderOption {
	return func(p *OpenAIProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewOpenAIProvider builds a provider from cfg.
func NewOpenAIProvider(cfg OpenAIConfig, opts ...ProviderOption) (*OpenAIProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	p := &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: core.NopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Model returns the configured model name.
func (p *OpenAIProvider) Model() string { return p.model }

// SuggestStructure proposes child elements (DFMEA) or process steps (PFMEA) for scope.
func (p *OpenAIProvider) SuggestStructure(ctx context.Context, scope string, kind domain.FmeaType) ([]string, error) {
	prompt := fmt.Sprintf(`I am performing a %s. The scope is: %q.
Generate a hierarchical structure for this analysis.
Return a list of component names or process steps that would be children of the main subject.
Focus on physical components for DFMEA or process steps for PFMEA.
Answer as {"items": ["..."]}.`, kind, scope)
	var out struct {
		Items []string `json:"items"`
	}
	if err := p.complete(ctx, "structure", prompt, &out); err != nil {
		return nil, err
	}
	items := nonEmpty(out.Items)
	if len(items) == 0 {
		return nil, ErrNoSuggestions
	}
	return items, nil
}

// SuggestFunctions proposes functions and requirements for one item.
func (p *OpenAIProvider) SuggestFunctions(ctx context.Context, item string, kind domain.FmeaType) ([]FunctionSuggestion, error) {
	prompt := fmt.Sprintf(`I am doing a %s.
Suggest 3-5 functions and requirements for the item: %q.
Answer as {"functions": [{"description": "function", "requirements": "specifications"}]}.`, kind, item)
	var out struct {
		Functions []FunctionSuggestion `json:"functions"`
	}
	if err := p.complete(ctx, "functions", prompt, &out); err != nil {
		return nil, err
	}
	fns := make([]FunctionSuggestion, 0, len(out.Functions))
	for _, fn := range out.Functions {
		fn.Description = strings.TrimSpace(fn.Description)
		fn.Requirements = strings.TrimSpace(fn.Requirements)
		if fn.Description != "" {
			fns = append(fns, fn)
		}
	}
	if len(fns) == 0 {
		return nil, ErrNoSuggestions
	}
	return fns, nil
}

// SuggestFailureModes proposes failure modes for one function.
func (p *OpenAIProvider) SuggestFailureModes(ctx context.Context, function string, kind domain.FmeaType) ([]string, error) {
	prompt := fmt.Sprintf(`I am doing a %s.
For the function: %q, suggest 3 potential failure modes.
Answer as {"modes": ["..."]}.`, kind, function)
	var out struct {
		Modes []string `json:"modes"`
	}
	if err := p.complete(ctx, "failure_modes", prompt, &out); err != nil {
		return nil, err
	}
	modes := nonEmpty(out.Modes)
	if len(modes) == 0 {
		return nil, ErrNoSuggestions
	}
	return modes, nil
}

// SuggestRiskAnalysis proposes one effect, cause and pair of controls for a failure mode.
func (p *OpenAIProvider) SuggestRiskAnalysis(ctx context.Context, mode string, kind domain.FmeaType) (RiskSuggestion, error) {
	prompt := fmt.Sprintf(`I am doing a %s.
For Failure Mode: %q, suggest:
1. One potential Effect.
2. One potential Cause.
3. A typical Prevention Control.
4. A typical Detection Control.
Answer as {"effect": "", "cause": "", "prevention": "", "detection": ""}.`, kind, mode)
	var out RiskSuggestion
	if err := p.complete(ctx, "risk_analysis", prompt, &out); err != nil {
		return RiskSuggestion{}, err
	}
	out = RiskSuggestion{
		Effect:     strings.TrimSpace(out.Effect),
		Cause:      strings.TrimSpace(out.Cause),
		Prevention: strings.TrimSpace(out.Prevention),
		Detection:  strings.TrimSpace(out.Detection),
	}
	if out.Empty() {
		return RiskSuggestion{}, ErrNoSuggestions
	}
	return out, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, op, prompt string, into any) error {
	p.logger.Debug("requesting suggestions", "operation", op, "model", p.model)
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		p.logger.Error("suggestion request failed", "operation", op, "error", err)
		return fmt.Errorf("suggest %s: %w", op, err)
	}
	if len(resp.Choices) == 0 {
		p.logger.Warn("suggestion service returned no choices", "operation", op)
		return ErrNoSuggestions
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return ErrNoSuggestions
	}
	if err := json.Unmarshal([]byte(content), into); err != nil {
		p.logger.Warn("malformed suggestion reply", "operation", op, "error", err)
		return fmt.Errorf("%w: %v", ErrNoSuggestions, err)
	}
	return nil
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
