package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := NewMockStore()
	// Mask keys containing "password" or "ssn"
	secureStore := middleware.NewPIIMiddleware([]string{"password", "ssn"})(underlyingStore)

	ctx := context.Background()
	userID := "pii-user"
	doc := domain.Attributes{
		"profile": map[string]any{
			"username":      "jdoe",
			"user_password": "secret123",
			"details": map[string]any{
				"address":    "123 St",
				"ssn_number": "999-99-9999",
			},
			"contacts": []any{
				map[string]any{"ssn": "111-11-1111"},
			},
		},
		"safe_data": "public",
	}

	if err := secureStore.Set(ctx, userID, doc); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// The caller's document is untouched.
	profile := doc["profile"].(map[string]any)
	if profile["user_password"] != "secret123" {
		t.Error("Middleware modified original document in memory!")
	}

	stored, err := underlyingStore.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Underlying get failed: %v", err)
	}

	storedProfile := stored["profile"].(map[string]any)
	if storedProfile["username"] != "jdoe" {
		t.Error("Username shouldn't be masked")
	}
	if storedProfile["user_password"] != middleware.Mask {
		t.Errorf("Password should be masked, got: %v", storedProfile["user_password"])
	}

	details := storedProfile["details"].(map[string]any)
	if details["ssn_number"] != middleware.Mask {
		t.Errorf("Nested SSN should be masked, got: %v", details["ssn_number"])
	}
	if details["address"] != "123 St" {
		t.Errorf("Address shouldn't be masked, got: %v", details["address"])
	}

	contact := storedProfile["contacts"].([]any)[0].(map[string]any)
	if contact["ssn"] != middleware.Mask {
		t.Errorf("SSN inside a list should be masked, got: %v", contact["ssn"])
	}
	if stored["safe_data"] != "public" {
		t.Error("safe_data shouldn't be masked")
	}
}

func TestPIIMiddleware_NestedAttributes(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewPIIMiddleware([]string{"email"})(underlyingStore)

	ctx := context.Background()
	doc := domain.Attributes{
		"profile": domain.Attributes{"email": "a@example.com"},
		"history": []any{domain.Attributes{"email": "b@example.com"}},
	}
	if err := secureStore.Set(ctx, "u1", doc); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	stored, err := underlyingStore.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Underlying get failed: %v", err)
	}
	if got := stored["profile"].(domain.Attributes)["email"]; got != middleware.Mask {
		t.Errorf("Nested attributes should be masked, got: %v", got)
	}
	if got := stored["history"].([]any)[0].(domain.Attributes)["email"]; got != middleware.Mask {
		t.Errorf("Attributes inside a list should be masked, got: %v", got)
	}

	if doc["profile"].(domain.Attributes)["email"] != "a@example.com" {
		t.Error("Middleware modified original document in memory!")
	}
	if doc["history"].([]any)[0].(domain.Attributes)["email"] != "b@example.com" {
		t.Error("Middleware modified a list of the original document in memory!")
	}
}

func TestChain_Order(t *testing.T) {
	underlyingStore := NewMockStore()
	key := generateKey(t)
	store := middleware.Chain(underlyingStore,
		middleware.NewPIIMiddleware([]string{"password"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)

	ctx := context.Background()
	if err := store.Set(ctx, "u1", domain.Attributes{"password": "hunter2"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// PII runs first (outermost), so the decrypted document is masked.
	loaded, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded["password"] != middleware.Mask {
		t.Errorf("Expected masked password, got %v", loaded["password"])
	}
}
