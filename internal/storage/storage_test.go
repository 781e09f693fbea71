package storage

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
)

// providers returns a fresh instance of every backend.
func providers(t *testing.T) map[string]Provider {
	t.Helper()
	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	return map[string]Provider{"memory": NewMemory(), "file": f}
}

func TestProviderContract(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := p.Get("outfit-finder-wardrobe"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}
			if err := p.Set("outfit-finder-wardrobe", []byte(`[]`)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := p.Set("outfit-linktree-products", []byte(`{}`)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, err := p.Get("outfit-finder-wardrobe")
			if err != nil || string(got) != "[]" {
				t.Errorf("Get() = %q, %v", got, err)
			}
			keys, _ := p.Keys()
			if !reflect.DeepEqual(keys, []string{"outfit-finder-wardrobe", "outfit-linktree-products"}) {
				t.Errorf("Unexpected keys %v", keys)
			}
			if err := p.Remove("outfit-finder-wardrobe"); err != nil {
				t.Fatalf("Remove() error = %v", err)
			}
			if err := p.Remove("outfit-finder-wardrobe"); err != nil {
				t.Errorf("Removing a missing key should not fail, got %v", err)
			}
			if err := p.Set("../escape", []byte("x")); err == nil {
				t.Error("Expected invalid key to be rejected")
			}
		})
	}
}

func TestUpdateSerialisesWriters(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for range 20 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := Update(p, "counter", func(cur []byte) ([]byte, error) {
						n := 0
						if cur != nil {
							fmt.Sscanf(string(cur), "%d", &n)
						}
						return []byte(fmt.Sprint(n + 1)), nil
					})
					if err != nil {
						t.Errorf("Update() error = %v", err)
					}
				}()
			}
			wg.Wait()

			got, _ := p.Get("counter")
			if string(got) != "20" {
				t.Errorf("Expected 20 after concurrent updates, got %s", got)
			}

			_ = Update(p, "counter", func([]byte) ([]byte, error) { return nil, nil })
			if _, err := p.Get("counter"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected nil update to remove key, got %v", err)
			}
		})
	}
}

func TestBackupRestore(t *testing.T) {
	src := NewMemory()
	_ = src.Set("outfit-finder-wardrobe", []byte(`[{"id":"1"}]`))
	_ = src.Set("outfit-linktree-products", []byte(`{"products":[]}`))

	var buf bytes.Buffer
	n, err := Backup(&buf, src)
	if err != nil || n != 2 {
		t.Fatalf("Backup() = %d, %v", n, err)
	}
	if bytes.HasPrefix(buf.Bytes(), []byte("{")) {
		t.Error("Expected compressed output")
	}

	dst, _ := NewFile(t.TempDir())
	n, err = Restore(bytes.NewReader(buf.Bytes()), dst)
	if err != nil || n != 2 {
		t.Fatalf("Restore() = %d, %v", n, err)
	}
	got, _ := dst.Get("outfit-finder-wardrobe")
	if string(got) != `[{"id":"1"}]` {
		t.Errorf("Unexpected restored value %s", got)
	}
}

func TestRestoreRejectsGarbage(t *testing.T) {
	if _, err := Restore(bytes.NewReader([]byte("not xz")), NewMemory()); err == nil {
		t.Error("Expected error for non-xz input")
	}
}
