/*
Package ports defines the driven ports (interfaces) of the conversation engine.

These interfaces decouple the flow logic from the language model, the
real-time transport and the snapshot storage.

# Key Interfaces

  - Graph: read-only node lookup (implemented by registry.Registry).
  - LanguageModel: produces the host's turn (eino, gemini adapters).
  - Transport: guest text in, host text out, disconnect signal (websocket, console adapters).
  - StateStore: live session snapshots (memory, redis adapters).
  - SessionLocker: cross-replica locking for session snapshots.
*/
package ports
