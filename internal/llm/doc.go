// Package llm provides the language model fallback classifier. It supports
// OpenAI and Anthropic, with retry logic, rate limiting, and response caching
// in memory or in Redis.
package llm
