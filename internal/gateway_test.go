package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestHashForCache(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "typical key", raw: "sk-abc123xyz"},
		{name: "long key", raw: "sk-" + "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := HashForCache(tt.raw)
			h := sha256.Sum256([]byte(tt.raw))
			want := hex.EncodeToString(h[:])
			if got != want {
				t.Errorf("HashForCache(%q) = %q, want %q", tt.raw, got, want)
			}
			if len(got) != 64 {
				t.Errorf("HashForCache len = %d, want 64", len(got))
			}
		})
	}

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()
		if HashForCache("key") != HashForCache("key") {
			t.Error("HashForCache is not deterministic")
		}
	})

	t.Run("distinct inputs produce distinct hashes", func(t *testing.T) {
		t.Parallel()
		if HashForCache("key1") == HashForCache("key2") {
			t.Error("distinct inputs produced same hash")
		}
	})
}

func TestContextWithRequestID_RequestIDFromContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
	}{
		{name: "non-empty", id: "req-abc0123def456789"},
		{name: "empty string", id: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := ContextWithRequestID(context.Background(), tt.id)
			got := RequestIDFromContext(ctx)
			if got != tt.id {
				t.Errorf("RequestIDFromContext = %q, want %q", got, tt.id)
			}
		})
	}

	t.Run("missing from context", func(t *testing.T) {
		t.Parallel()
		got := RequestIDFromContext(context.Background())
		if got != "" {
			t.Errorf("RequestIDFromContext on bare ctx = %q, want empty", got)
		}
	})
}

func TestContextWithIdentity_IdentityFromContext(t *testing.T) {
	t.Parallel()

	t.Run("set on bare context", func(t *testing.T) {
		t.Parallel()
		id := &Identity{KeyID: "key-1", Name: "test", RateLimitPerMinute: 60}
		ctx := ContextWithIdentity(context.Background(), id)
		got := IdentityFromContext(ctx)
		if got != id {
			t.Errorf("IdentityFromContext = %v, want %v", got, id)
		}
	})

	t.Run("mutates existing meta", func(t *testing.T) {
		t.Parallel()
		// Simulate middleware: requestID set first, identity added later.
		ctx := ContextWithRequestID(context.Background(), "req-xyz")
		id := &Identity{KeyID: "key-2"}
		ctx2 := ContextWithIdentity(ctx, id)
		// Same context pointer (no new WithValue).
		if ctx2 != ctx {
			t.Error("ContextWithIdentity should return same ctx when meta already present")
		}
		if got := IdentityFromContext(ctx2); got != id {
			t.Errorf("IdentityFromContext = %v, want %v", got, id)
		}
		// Request ID must still be intact.
		if got := RequestIDFromContext(ctx2); got != "req-xyz" {
			t.Errorf("RequestIDFromContext after ContextWithIdentity = %q, want req-xyz", got)
		}
	})

	t.Run("nil identity", func(t *testing.T) {
		t.Parallel()
		ctx := ContextWithIdentity(context.Background(), nil)
		if got := IdentityFromContext(ctx); got != nil {
			t.Errorf("expected nil identity, got %v", got)
		}
	})

	t.Run("missing from context", func(t *testing.T) {
		t.Parallel()
		if got := IdentityFromContext(context.Background()); got != nil {
			t.Errorf("IdentityFromContext on bare ctx = %v, want nil", got)
		}
	})
}

func TestMetaFromContext(t *testing.T) {
	t.Parallel()

	t.Run("nil on bare context", func(t *testing.T) {
		t.Parallel()
		if m := metaFromContext(context.Background()); m != nil {
			t.Errorf("expected nil, got %v", m)
		}
	})

	t.Run("returns stored meta", func(t *testing.T) {
		t.Parallel()
		ctx := ContextWithRequestID(context.Background(), "r1")
		m := metaFromContext(ctx)
		if m == nil {
			t.Fatal("expected non-nil meta")
		}
		if m.RequestID != "r1" {
			t.Errorf("RequestID = %q, want r1", m.RequestID)
		}
	})

	t.Run("mutation visible through same ctx", func(t *testing.T) {
		t.Parallel()
		ctx := ContextWithRequestID(context.Background(), "r2")
		m := metaFromContext(ctx)
		id := &Identity{KeyID: "mutated"}
		m.Identity = id
		if got := IdentityFromContext(ctx); got != id {
			t.Errorf("mutated identity not visible: got %v", got)
		}
	})
}
