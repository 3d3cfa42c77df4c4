package factory

import (
	"fmt"

	"cardiac-assistant-be/pkg/llm"
	"cardiac-assistant-be/pkg/llm/anthropic"
	"cardiac-assistant-be/pkg/llm/gemini"
	"cardiac-assistant-be/pkg/llm/ollama"
	"cardiac-assistant-be/pkg/llm/openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1/"

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai":
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	case "groq":
		if baseURL == "" {
			baseURL = groqBaseURL
		}
		if modelName == "" {
			modelName = "llama-3.1-8b-instant"
		}
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	case "gemini":
		return gemini.NewGeminiProvider(apiKey, baseURL, modelName)
	case "anthropic":
		return anthropic.NewAnthropicProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
