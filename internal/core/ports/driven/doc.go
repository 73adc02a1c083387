// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - HistoryReader: Delivers visit records from a browser history store
//   - TopicModel: Document-term vectorisation and topic factorisation
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Language model calls. Without it, persona, direct-title and
//     LLM subtheme grouping strategies are skipped.
//   - EmbeddingService: Generates vector embeddings. Without it, relevance
//     filtering is lexical and subthemes are grouped by the topic model.
//   - Clusterer: Groups embedding vectors. Only used with an EmbeddingService.
//   - PromptStore: User-customisable prompt templates.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
