package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/cadence/internal/adapters/file"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/persistence/middleware"
	"github.com/aretw0/cadence/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := NewMockStore()
	key := generateKey(t)
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	userID := "amzn1.ask.account.TEST"
	doc := domain.Attributes{
		"profile": map[string]any{"secret": "my-secret-sauce"},
	}

	if err := secureStore.Set(ctx, userID, doc); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// The underlying store must only see the envelope.
	stored, err := underlyingStore.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Underlying get failed: %v", err)
	}
	if _, ok := stored["profile"]; ok {
		t.Fatal("Expected group names to be hidden")
	}
	if _, ok := stored[middleware.EnvelopeKey]; !ok {
		t.Fatalf("Expected %s field in document", middleware.EnvelopeKey)
	}

	loaded, err := secureStore.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get via middleware failed: %v", err)
	}
	profile, _ := loaded["profile"].(map[string]any)
	if profile["secret"] != "my-secret-sauce" {
		t.Errorf("Expected 'my-secret-sauce', got %v", profile["secret"])
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)

	ctx := context.Background()
	userID := "rotation-user"

	if err := secureStoreOld.Set(ctx, userID, domain.Attributes{"data": "encrypted-with-old-key"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loaded, err := secureStoreNew.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get with rotated key failed: %v", err)
	}
	if loaded["data"] != "encrypted-with-old-key" {
		t.Errorf("Decryption with fallback key failed")
	}

	// Writing again re-encrypts with the new key.
	loaded["data"] = "encrypted-with-new-key"
	if err := secureStoreNew.Set(ctx, userID, loaded); err != nil {
		t.Fatalf("Set with new key failed: %v", err)
	}

	if _, err := secureStoreOld.Get(ctx, userID); err == nil {
		t.Error("Expected failure when loading new-key encryption with old-key middleware")
	}
}

func TestEncryptionMiddleware_RejectsPlaintext(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)

	ctx := context.Background()
	_ = underlyingStore.Set(ctx, "u1", domain.Attributes{"fsm": map[string]any{"state": "x"}})

	if _, err := secureStore.Get(ctx, "u1"); err == nil {
		t.Fatal("Expected plaintext document to be rejected")
	}
}

func TestEncryptionMiddleware_PassesNotFound(t *testing.T) {
	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(NewMockStore())
	ports.RunAttributeStoreContract(t, secureStore)
}

func TestEncryptionMiddleware_OverFileStore(t *testing.T) {
	secureStore := middleware.Chain(file.New(t.TempDir()),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)
	ports.RunAttributeStoreContract(t, secureStore)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for invalid key size")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
}
