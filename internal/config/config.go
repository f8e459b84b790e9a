package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
)

// Config aggregates all service settings.
type Config struct {
	Server     ServerConfig
	Completion CompletionConfig
	Store      StoreConfig
	Prompt     PromptConfig
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port string `env:"PORT" envDefault:"4000"`
}

// Addr accepts a bare port, ":4000" or "127.0.0.1:4000".
func (c ServerConfig) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// CompletionConfig describes the chat-completion service.
type CompletionConfig struct {
	APIKey      string  `env:"OPENAI_API_KEY,required"`
	BaseURL     string  `env:"OPENAI_BASE_URL"`
	Model       string  `env:"OPENAI_MODEL" envDefault:"gpt-4-turbo"`
	Temperature float32 `env:"OPENAI_TEMPERATURE" envDefault:"0.7"`
	// EndSentinel is the phrase the prompt instructs the model to emit
	// on its final message. It must match what the prompt promises.
	EndSentinel string `env:"END_SENTINEL" envDefault:"ending the conversation now"`
}

// StoreConfig describes the conversation record store.
type StoreConfig struct {
	APIKey    string `env:"AIRTABLE_API_KEY"`
	BaseID    string `env:"AIRTABLE_BASE_ID"`
	TableName string `env:"AIRTABLE_TABLE_NAME" envDefault:"Conversations"`
}

// Enabled reports whether store credentials were provided.
func (c StoreConfig) Enabled() bool {
	return c.APIKey != "" && c.BaseID != ""
}

// PromptConfig locates the persona prompt. The prompt is configuration,
// not code: persona, tone and refinement rules all live in the file.
type PromptConfig struct {
	Path string `env:"SYSTEM_PROMPT_PATH" envDefault:"prompts/system_prompt.txt"`
}

// SystemPrompt reads the persona prompt from the configured file,
// falling back to the built-in default when the file is absent or empty.
func (c PromptConfig) SystemPrompt() (string, error) {
	data, err := os.ReadFile(c.Path)
	if errors.Is(err, os.ErrNotExist) {
		return defaultSystemPrompt, nil
	}
	if err != nil {
		return "", fmt.Errorf("read system prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return defaultSystemPrompt, nil
	}
	return prompt, nil
}
