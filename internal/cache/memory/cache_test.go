package memory

import (
	"reflect"
	"testing"
	"time"
)

func TestCache_SetAndGet(t *testing.T) {
	cache := New()
	defer cache.Stop()

	words := []string{"golang", "golang tutorial"}
	cache.Set("gol", words, 5*time.Second)

	got, ok := cache.Get("gol")
	if !ok {
		t.Error("Get() should return ok=true for existing key")
	}
	if !reflect.DeepEqual(got, words) {
		t.Errorf("Get() = %v, want %v", got, words)
	}
}

func TestCache_GetNonExistent(t *testing.T) {
	cache := New()
	defer cache.Stop()

	got, ok := cache.Get("non-existent")
	if ok {
		t.Error("Get() should return ok=false for non-existent key")
	}
	if got != nil {
		t.Errorf("Get() = %v, want nil", got)
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	cache := New()
	defer cache.Stop()

	cache.Set("gol", []string{"golang"}, 50*time.Millisecond)

	if _, ok := cache.Get("gol"); !ok {
		t.Error("Get() should find the entry before expiry")
	}

	time.Sleep(80 * time.Millisecond)

	if _, ok := cache.Get("gol"); ok {
		t.Error("Get() should miss after TTL expiry")
	}
}

func TestCache_Delete(t *testing.T) {
	cache := New()
	defer cache.Stop()

	cache.Set("gol", []string{"golang"}, time.Minute)
	cache.Delete("gol")

	if _, ok := cache.Get("gol"); ok {
		t.Error("Get() should miss after Delete")
	}
}

func TestCache_StopIsIdempotent(t *testing.T) {
	cache := New()
	cache.Stop()
	cache.Stop()
}
