/*
Package ports defines the driven ports (interfaces) of the Cadence dispatch core.

These interfaces decouple the turn executor from the platform adapters and
from the storage backends.

# Key Interfaces

  - AttributesManager: Per-turn persistence handle (fetch once, store once).
  - AttributeStore: Keyed document store behind the managers (memory, file, Redis, SQLite).
  - ResponseBuilder: Accumulates the reply while handlers run.
*/
package ports
