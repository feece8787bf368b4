/*
Package domain contains the core domain models for the Cadence dispatch core.

It defines the shapes exchanged between the platform adapters, the resolver,
the state selector and the turn executor. This package is kept pure and free of
external dependencies like I/O or persistence.

# Key Entities

  - Envelope: The normalized, read-only snapshot of one incoming turn.
  - Attributes: The persisted-attributes document of a user, keyed by group.
  - State: An application-defined conversation state stored in a feature group.
  - Response: The platform-neutral reply built by handlers during a turn.
*/
package domain
