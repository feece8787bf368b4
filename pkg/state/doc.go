/*
Package state provides hierarchical access to a user's persisted attributes.

A Group owns one top-level key of the attributes document. A SubGroup scopes a
parent accessor (a Group or another SubGroup) by one more key, so features can
keep nested namespaces without knowing how they are stored:

	var game = state.NewGroup("game", state.Data{"level": 1})
	var scores = state.NewSubGroup("scores", game, nil)

	data, err := scores.GetData(app)
	...
	err = scores.SetData(app, state.Data{"level1": 5})

Writes are read-merge-write at every level: setting a SubGroup keeps all of its
siblings in the parent document.

Accessors resolve storage through a Scope. The Backend behind a scope is chosen
once when the conversation context is built: PersistBackend mirrors the
structured persistence document; LegacyBackend writes straight into a raw
platform storage map and reports every access as deprecated.
*/
package state
