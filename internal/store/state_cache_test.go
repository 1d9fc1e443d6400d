package store

import (
	"testing"
	"time"
)

func TestStateKey(t *testing.T) {
	if got := stateKey("abc-123"); got != "flux:state:abc-123" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestStateCacheTTL(t *testing.T) {
	if c := NewStateCache(nil, 0); c.ttl != defaultStateTTL {
		t.Fatalf("expected default ttl, got %v", c.ttl)
	}
	if c := NewStateCache(nil, -time.Second); c.ttl != defaultStateTTL {
		t.Fatalf("negative ttl must select the default, got %v", c.ttl)
	}
	if c := NewStateCache(nil, time.Hour); c.ttl != time.Hour {
		t.Fatalf("expected configured ttl, got %v", c.ttl)
	}
}
