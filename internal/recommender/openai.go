package recommender

import (
	"context"
	"encoding/json"
	"fmt"

	"etf-advisor/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const ProviderOpenAI = "openai"

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// OpenAI asks a chat model for each stage and decodes its JSON reply.
type OpenAI struct {
	tracer trace.Tracer
	llm    LLMClient
}

func NewOpenAI(tracer trace.Tracer, llm LLMClient) *OpenAI {
	return &OpenAI{tracer: tracer, llm: llm}
}

func (o *OpenAI) Strategy(ctx context.Context, model string, pref domain.PortfolioPreference) (domain.Strategy, error) {
	ctx, span := o.tracer.Start(ctx, "recommender.openai.strategy")
	defer span.End()

	var strategy domain.Strategy
	if err := o.complete(ctx, model, strategyPrompt, StrategyInput(pref), &strategy); err != nil {
		span.RecordError(err)
		return domain.Strategy{}, err
	}
	if strategy.Name == "" {
		return domain.Strategy{}, fmt.Errorf("strategy reply has no name")
	}
	return strategy, nil
}

func (o *OpenAI) Portfolio(ctx context.Context, model string, pref domain.PortfolioPreference, strategy domain.Strategy) (domain.Portfolio, error) {
	ctx, span := o.tracer.Start(ctx, "recommender.openai.portfolio")
	defer span.End()

	var portfolio domain.Portfolio
	if err := o.complete(ctx, model, portfolioPrompt, PortfolioInput(pref, strategy), &portfolio); err != nil {
		span.RecordError(err)
		return domain.Portfolio{}, err
	}
	if len(portfolio.Holdings) == 0 {
		return domain.Portfolio{}, fmt.Errorf("portfolio reply has no holdings")
	}
	span.SetAttributes(attribute.Int("recommender.holding_count", len(portfolio.Holdings)))
	return portfolio, nil
}

func (o *OpenAI) Analyze(ctx context.Context, model string, pref domain.PortfolioPreference, portfolio domain.Portfolio) (domain.AnalysisResponse, error) {
	ctx, span := o.tracer.Start(ctx, "recommender.openai.analyze")
	defer span.End()

	var summary domain.AnalysisResponse
	if err := o.complete(ctx, model, analystPrompt, AnalysisInput(pref, portfolio), &summary); err != nil {
		span.RecordError(err)
		return domain.AnalysisResponse{}, err
	}
	span.SetAttributes(attribute.Bool("recommender.approved", summary.IsApproved))
	return summary, nil
}

func (o *OpenAI) complete(ctx context.Context, model, system, user string, out any) error {
	ctx, span := o.tracer.Start(ctx, "recommender.openai.llm-call")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", model))

	completion, err := o.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return err
	}
	if len(completion.Choices) == 0 {
		return fmt.Errorf("no choices in LLM response")
	}

	reply := completion.Choices[0].Message.Content
	span.SetAttributes(attribute.Int("llm.reply_length", len(reply)))
	if err := json.Unmarshal([]byte(ExtractJSON(reply)), out); err != nil {
		return fmt.Errorf("decode LLM reply: %w", err)
	}
	return nil
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) LLMClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
