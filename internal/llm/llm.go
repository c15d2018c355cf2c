package llm

import llmclient "balanceboard/internal/llmClient"

// LLMClient is the provider interface every middleware wraps.
type LLMClient = llmclient.LLMClient

// Request is re-exported so phase code only imports this package.
type Request = llmclient.Request
