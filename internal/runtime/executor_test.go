package runtime_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/cadence/internal/runtime"
	"github.com/aretw0/cadence/pkg/conversation"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/fsm"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/registry"
	"github.com/aretw0/cadence/pkg/resolver"
	"github.com/aretw0/cadence/pkg/response"
	"github.com/aretw0/cadence/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttributes struct {
	doc      domain.Attributes
	fetchErr error
	storeErr error
	fetches  int
	stores   int
	stored   domain.Attributes
}

func (f *fakeAttributes) Fetch(ctx context.Context) (domain.Attributes, error) {
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.doc, nil
}

func (f *fakeAttributes) Store(ctx context.Context, doc domain.Attributes) error {
	f.stores++
	f.stored = doc
	return f.storeErr
}

type recordingBuilder struct {
	*response.Builder
	spoken []string
}

func (r *recordingBuilder) Speak(text string) ports.ResponseBuilder {
	r.spoken = append(r.spoken, text)
	r.Builder.Speak(text)
	return r
}

func say(text string) registry.HandlerFunc {
	return func(ctx context.Context, app *conversation.App) error {
		app.Speak(text)
		return nil
	}
}

func newExecutor(t *testing.T, b *registry.Builder, opts ...runtime.ExecutorOption) *runtime.Executor {
	t.Helper()
	reg, err := b.Build()
	require.NoError(t, err)
	return runtime.NewExecutor(reg, opts...)
}

func gameRegistry() *registry.Builder {
	return registry.NewBuilder().
		Register("restart-game",
			registry.On(func(ctx context.Context, app *conversation.App) error {
				app.Speak("Restarting.")
				return fsm.SetState(app, "new-game")
			}, "in-progress"),
			registry.Default(say("There is no game to restart.")),
		).
		Register("play", registry.Default(say("Playing."))).
		Register("stop", registry.Default(say("Goodbye.")))
}

func TestHandleTurn_SelectsVariantByState(t *testing.T) {
	exec := newExecutor(t, gameRegistry())
	ctx := context.Background()

	attrs := &fakeAttributes{doc: domain.Attributes{"fsm": map[string]any{"state": "in-progress"}}}
	resp, err := exec.HandleTurn(ctx, &runtime.Turn{
		Envelope:   &domain.Envelope{IntentName: "AMAZON.RestartGameIntent"},
		Attributes: attrs,
	})
	require.NoError(t, err)
	assert.Equal(t, "Restarting.", resp.OutputSpeech)
	assert.Equal(t, 1, attrs.fetches)
	assert.Equal(t, 1, attrs.stores)
	assert.Equal(t, map[string]any{"state": "new-game"}, attrs.stored["fsm"])

	// No state: the explicit default runs.
	attrs = &fakeAttributes{doc: domain.Attributes{}}
	resp, err = exec.HandleTurn(ctx, &runtime.Turn{
		Envelope:   &domain.Envelope{IntentName: "AMAZON.RestartGameIntent"},
		Attributes: attrs,
	})
	require.NoError(t, err)
	assert.Equal(t, "There is no game to restart.", resp.OutputSpeech)
}

func TestHandleTurn_PersistsEvenWithoutWrites(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	exec := newExecutor(t, gameRegistry(), runtime.WithLogger(logger))
	ctx := context.Background()

	attrs := &fakeAttributes{doc: domain.Attributes{"fsm": map[string]any{"state": "in-progress"}}}
	_, err := exec.HandleTurn(ctx, &runtime.Turn{
		Envelope:   &domain.Envelope{IntentName: "Play"},
		Attributes: attrs,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attrs.stores)
	assert.Equal(t, map[string]any{"state": "in-progress"}, attrs.stored["fsm"])
	assert.Contains(t, logs.String(), "changed=false")

	logs.Reset()
	_, err = exec.HandleTurn(ctx, &runtime.Turn{
		Envelope:   &domain.Envelope{IntentName: "AMAZON.RestartGameIntent"},
		Attributes: attrs,
	})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "changed=true")
}

func TestHandleTurn_UnresolvedDoesNoIO(t *testing.T) {
	exec := newExecutor(t, gameRegistry())

	tests := []struct {
		name string
		env  *domain.Envelope
	}{
		{"unknown intent", &domain.Envelope{IntentName: "AMAZON.FallbackIntent"}},
		{"no identifier", &domain.Envelope{}},
		{"nil envelope", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := &fakeAttributes{}
			resp, err := exec.HandleTurn(context.Background(), &runtime.Turn{Envelope: tt.env, Attributes: attrs})
			require.NoError(t, err)
			assert.True(t, resp.IsEmpty())
			assert.Zero(t, attrs.fetches)
			assert.Zero(t, attrs.stores)
		})
	}
}

func TestHandleTurn_NilTurn(t *testing.T) {
	exec := newExecutor(t, gameRegistry())
	resp, err := exec.HandleTurn(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, resp.IsEmpty())
}

func TestHandleTurn_FetchFailureUsesDefaults(t *testing.T) {
	var events []*domain.PersistenceEvent
	exec := newExecutor(t, gameRegistry(), runtime.WithHooks(domain.TurnHooks{
		OnPersistenceError: func(ctx context.Context, e *domain.PersistenceEvent) {
			events = append(events, e)
		},
	}))

	attrs := &fakeAttributes{fetchErr: errors.New("connection refused")}
	resp, err := exec.HandleTurn(context.Background(), &runtime.Turn{
		Envelope:   &domain.Envelope{IntentName: "AMAZON.RestartGameIntent"},
		Attributes: attrs,
	})
	require.NoError(t, err)
	assert.Equal(t, "There is no game to restart.", resp.OutputSpeech)
	assert.Equal(t, 1, attrs.stores, "attributes are still stored after a failed fetch")

	require.Len(t, events, 1)
	assert.Equal(t, domain.PersistenceRead, events[0].Op)
	var perr *domain.PersistenceError
	require.ErrorAs(t, events[0].Err, &perr)
	assert.Equal(t, domain.PersistenceRead, perr.Op)
}

func TestHandleTurn_StoreFailureIsAbsorbed(t *testing.T) {
	var ops []domain.PersistenceOp
	exec := newExecutor(t, gameRegistry(), runtime.WithHooks(domain.TurnHooks{
		OnPersistenceError: func(ctx context.Context, e *domain.PersistenceEvent) {
			ops = append(ops, e.Op)
		},
	}))

	attrs := &fakeAttributes{doc: domain.Attributes{}, storeErr: errors.New("disk full")}
	resp, err := exec.HandleTurn(context.Background(), &runtime.Turn{
		Envelope:   &domain.Envelope{IntentName: "AMAZON.StopIntent"},
		Attributes: attrs,
	})
	require.NoError(t, err)
	assert.Equal(t, "Goodbye.", resp.OutputSpeech)
	assert.Equal(t, []domain.PersistenceOp{domain.PersistenceWrite}, ops)
}

func TestHandleTurn_HandlerErrorStillPersists(t *testing.T) {
	boom := errors.New("boom")
	b := registry.NewBuilder().Register("fail", registry.Default(func(ctx context.Context, app *conversation.App) error {
		app.Speak("partial")
		if err := fsm.SetState(app, "broken"); err != nil {
			return err
		}
		return boom
	}))
	exec := newExecutor(t, b)

	attrs := &fakeAttributes{doc: domain.Attributes{}}
	resp, err := exec.HandleTurn(context.Background(), &runtime.Turn{
		Envelope:   &domain.Envelope{IntentName: "Fail"},
		Attributes: attrs,
	})
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, resp)
	assert.Equal(t, "partial", resp.OutputSpeech)
	assert.Equal(t, 1, attrs.stores)
	assert.Equal(t, map[string]any{"state": "broken"}, attrs.stored["fsm"])
}

func TestHandleTurn_RecoversPanics(t *testing.T) {
	b := registry.NewBuilder().Register("crash", registry.Default(func(ctx context.Context, app *conversation.App) error {
		panic("nil map")
	}))
	exec := newExecutor(t, b)

	attrs := &fakeAttributes{}
	_, err := exec.HandleTurn(context.Background(), &runtime.Turn{
		Envelope:   &domain.Envelope{IntentName: "Crash"},
		Attributes: attrs,
	})
	assert.ErrorIs(t, err, domain.ErrHandlerPanic)
	assert.Contains(t, err.Error(), "nil map")
	assert.Equal(t, 1, attrs.stores)
}

func TestHandleTurn_NoEligibleHandler(t *testing.T) {
	b := registry.NewBuilder().Register("resume", registry.On(say("Resuming."), "paused"))
	exec := newExecutor(t, b)

	attrs := &fakeAttributes{doc: domain.Attributes{"fsm": map[string]any{"state": "playing"}}}
	resp, err := exec.HandleTurn(context.Background(), &runtime.Turn{
		Envelope:   &domain.Envelope{IntentName: "Resume"},
		Attributes: attrs,
	})

	var nerr *domain.NoEligibleHandlerError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "resume", nerr.Action)
	assert.Equal(t, domain.State("playing"), nerr.State)
	assert.True(t, resp.IsEmpty())
	assert.Equal(t, 1, attrs.stores)
}

func TestHandleTurn_KeepsSiblingGroupsAndNormalizes(t *testing.T) {
	stats := state.NewGroup("stats", state.Data{"count": 0})
	b := registry.NewBuilder().Register("count", registry.Default(func(ctx context.Context, app *conversation.App) error {
		return stats.SetData(app, state.Data{"count": 3})
	}))
	exec := newExecutor(t, b)

	attrs := &fakeAttributes{doc: domain.Attributes{"profile": map[string]any{"name": "ada"}}}
	_, err := exec.HandleTurn(context.Background(), &runtime.Turn{
		Envelope:   &domain.Envelope{IntentName: "Count"},
		Attributes: attrs,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "ada"}, attrs.stored["profile"])
	assert.Equal(t, map[string]any{"count": float64(3)}, attrs.stored["stats"])
}

func TestHandleTurn_LegacyStorage(t *testing.T) {
	var storageEvents []*domain.StorageEvent
	exec := newExecutor(t, gameRegistry(), runtime.WithHooks(domain.TurnHooks{
		OnDeprecatedStorage: func(e *domain.StorageEvent) {
			storageEvents = append(storageEvents, e)
		},
	}))

	storage := map[string]any{"fsm": map[string]any{"state": "in-progress"}}
	resp, err := exec.HandleTurn(context.Background(), &runtime.Turn{
		Envelope:      &domain.Envelope{IntentName: "AMAZON.RestartGameIntent"},
		LegacyStorage: storage,
	})
	require.NoError(t, err)
	assert.Equal(t, "Restarting.", resp.OutputSpeech)
	assert.Equal(t, map[string]any{"state": "new-game"}, storage["fsm"])
	assert.NotEmpty(t, storageEvents)
}

func TestHandleTurn_NoPersistenceStillRuns(t *testing.T) {
	exec := newExecutor(t, gameRegistry())
	resp, err := exec.HandleTurn(context.Background(), &runtime.Turn{
		Envelope: &domain.Envelope{IntentName: "AMAZON.RestartGameIntent"},
	})
	require.NoError(t, err)
	assert.Equal(t, "There is no game to restart.", resp.OutputSpeech)
}

func TestHandleTurn_Hooks(t *testing.T) {
	var seen []string
	var end *domain.TurnEvent
	exec := newExecutor(t, gameRegistry(),
		runtime.WithTurnIDs(func() string { return "turn-1" }),
		runtime.WithHooks(domain.TurnHooks{
			OnTurnStart: func(ctx context.Context, e *domain.TurnEvent) {
				seen = append(seen, "start:"+e.TurnID)
			},
			OnActionResolved: func(ctx context.Context, e *domain.TurnEvent) {
				seen = append(seen, "resolved:"+e.Action+":"+e.Rule)
			},
		}),
		runtime.WithHooks(domain.TurnHooks{
			OnTurnEnd: func(ctx context.Context, e *domain.TurnEvent) {
				seen = append(seen, "end:"+string(e.Outcome))
				end = e
			},
		}),
	)

	_, err := exec.HandleTurn(context.Background(), &runtime.Turn{
		Envelope:   &domain.Envelope{IntentName: "AMAZON.RestartGameIntent"},
		Attributes: &fakeAttributes{doc: domain.Attributes{"fsm": map[string]any{"state": "in-progress"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"start:turn-1", "resolved:restart-game:direct", "end:handled"}, seen)
	require.NotNil(t, end)
	assert.Equal(t, domain.State("in-progress"), end.State)

	seen = nil
	_, _ = exec.HandleTurn(context.Background(), &runtime.Turn{Envelope: &domain.Envelope{IntentName: "Nope"}})
	assert.Equal(t, []string{"start:turn-1", "end:unresolved"}, seen)
}

func TestResolve_DirectBeforeChain(t *testing.T) {
	exec := newExecutor(t, gameRegistry())

	m, ok := exec.Resolve(&domain.Envelope{IntentName: "AMAZON.StopIntent"})
	require.True(t, ok)
	assert.Equal(t, "stop", m.Name)
	assert.Equal(t, resolver.RuleDirect, m.Rule)

	m, ok = exec.Resolve(&domain.Envelope{RequestType: "AudioPlayer.Play_Started"})
	require.True(t, ok)
	assert.Equal(t, "play", m.Name)
	assert.Equal(t, resolver.RuleTruncated, m.Rule)

	_, ok = exec.Resolve(&domain.Envelope{RequestType: "AudioPlayer.PlaybackStarted"})
	assert.False(t, ok, "no '_' means nothing to truncate")
}

func TestResolve_MinTruncatedLength(t *testing.T) {
	exec := newExecutor(t, gameRegistry(), runtime.WithResolverOptions(resolver.WithMinTruncatedLength(5)))

	_, ok := exec.Resolve(&domain.Envelope{RequestType: "AudioPlayer.Play_Started"})
	assert.False(t, ok)
}

func TestHandleTurn_CustomResponseBuilder(t *testing.T) {
	exec := newExecutor(t, gameRegistry())
	builder := &recordingBuilder{Builder: response.NewBuilder()}

	resp, err := exec.HandleTurn(context.Background(), &runtime.Turn{
		Envelope: &domain.Envelope{IntentName: "AMAZON.StopIntent"},
		Response: builder,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Goodbye."}, builder.spoken)
	assert.Equal(t, "Goodbye.", resp.OutputSpeech)
}
