// Package config loads the application configuration from a YAML file.
//
//	logger:
//	  level: debug
//	vector_store:
//	  provider: chroma
//	  chroma:
//	    host: chroma.internal
//	    collection_name: agent_memories
//	    embedding_dims: 1536
//	    read_timeout: 45s
//	embedder:
//	  model: text-embedding-3-small
//	  cache_max_cost: 67108864
//	llm:
//	  model: gpt-4o-mini
//	  api_key: ${LLM_KEY}
//
// Keys left out keep the values of Default. API keys and tokens not set in
// the file fall back to OPENAI_API_KEY, OPENROUTER_API_KEY and
// CHROMA_AUTH_TOKEN.
//
// Module(cfg) supplies every section to Fx, for use with the package
// modules:
//
//	fx.New(config.Module(cfg), logger.FXModule, chroma.FXModule, ...)
package config
