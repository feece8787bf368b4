/*
Package session binds a user key to an attribute store, producing the
per-turn persistence handle consumed by the executor.

Turns for the same user are not coordinated: every turn fetches the document
once and replaces it once, and the store's last write wins.
*/
package session
