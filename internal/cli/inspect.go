package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aretw0/cadence/internal/presentation/tui"
	"github.com/aretw0/cadence/pkg/domain"
)

// PrintActions lists the registered actions.
func PrintActions(w io.Writer, app *App) {
	reg := app.Skill.Registry()
	rows := make([]tui.ActionRow, 0, reg.Len())
	for _, name := range reg.Names() {
		a, _ := reg.Get(name)
		row := tui.ActionRow{
			Name:         a.Name(),
			PlatformName: a.PlatformName(),
			Feature:      a.Feature(),
		}
		for _, v := range a.Variants() {
			switch {
			case v.Guarded():
				for _, s := range v.States {
					row.Guards = append(row.Guards, string(s))
				}
			case v.Default:
				row.HasDefault = true
			}
		}
		rows = append(rows, row)
	}
	tui.PrintActions(w, rows)
}

// PrintResolution shows which action an intent or request type resolves to.
func PrintResolution(w io.Writer, app *App, intent, requestType string) error {
	env := &domain.Envelope{IntentName: intent, RequestType: requestType}
	if !env.HasIdentifier() {
		return errors.New("an intent or a request type is required")
	}

	m, ok := app.Skill.Resolve(env)
	if !ok {
		tui.PrintNoMatch(w, intent+requestType)
		return nil
	}
	tui.PrintMatch(w, m.Identifier, m.Name, string(m.Rule))
	return nil
}

// PrintAttributes writes the stored attributes of key as indented JSON.
func PrintAttributes(ctx context.Context, w io.Writer, app *App, key string) error {
	doc, err := app.Store.Get(ctx, key)
	if errors.Is(err, domain.ErrAttributesNotFound) {
		return fmt.Errorf("no attributes stored for %q", key)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// DeleteAttributes removes the stored attributes of key.
func DeleteAttributes(ctx context.Context, w io.Writer, app *App, key string) error {
	if err := app.Sessions.Delete(ctx, key); err != nil {
		return err
	}
	printSystemMessage(w, "Attributes of '%s' deleted.", key)
	return nil
}

// ListAttributeKeys prints every stored key, when the configured store can enumerate them.
func ListAttributeKeys(ctx context.Context, w io.Writer, app *App) error {
	var (
		keys []string
		err  error
	)
	switch s := app.backend.(type) {
	case interface {
		Keys(context.Context) ([]string, error)
	}:
		keys, err = s.Keys(ctx)
	case interface{ Keys() []string }:
		keys = s.Keys()
	default:
		return fmt.Errorf("store %q cannot list keys", app.Config.Store.Type)
	}
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		fmt.Fprintln(w, "No stored attributes found.")
		return nil
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintln(w, "- "+k)
	}
	return nil
}
