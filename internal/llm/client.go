// Package llm wraps the external text-generation service behind a small
// client interface: produce text given a prompt, either complete or as a
// token stream. Callers never see the transport.
package llm

import (
	"context"
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Message is one prior conversation turn.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// Client is the opaque text-generation capability the pipeline depends on.
type Client interface {
	// Complete sends a system + user instruction and returns the full response.
	Complete(ctx context.Context, system, user string) (string, error)
	// Stream sends a conversation and invokes fn once per response token chunk.
	Stream(ctx context.Context, msgs []Message, fn func(delta string) error) error
}

// Config holds connection settings for an OpenAI-compatible endpoint
// (DeepSeek, ollama's /v1, or the real thing).
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// OpenAIClient implements Client over the OpenAI chat-completions API.
type OpenAIClient struct {
	api   *openai.Client
	model string
	temp  float32
	max   int
}

// New builds an OpenAIClient from cfg.
func New(cfg Config) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		api:   openai.NewClientWithConfig(oc),
		model: cfg.Model,
		temp:  cfg.Temperature,
		max:   cfg.MaxTokens,
	}
}

// Complete sends one system + user instruction pair and returns the
// response text with markdown fences stripped.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: user})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: c.temp,
		MaxTokens:   c.max,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: empty choices in response")
	}
	return StripFences(resp.Choices[0].Message.Content), nil
}

// Stream sends a conversation and forwards content deltas to fn until the
// stream ends. A non-nil error from fn aborts the stream.
func (c *OpenAIClient) Stream(ctx context.Context, msgs []Message, fn func(delta string) error) error {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temp,
		Stream:      true,
	}
	for _, m := range msgs {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	stream, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			if err := fn(delta); err != nil {
				return err
			}
		}
	}
}

// StripFences removes markdown code fences from LLM output.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
