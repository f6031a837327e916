// Package memory declares the orchestration layer on top of the vector
// store, embedder and LLM packages: the Memory and GraphStore contracts and
// the types they exchange. It holds no implementation.
package memory
