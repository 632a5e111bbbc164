package attribution

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/moadamda/tracker/internal/config"
	"github.com/moadamda/tracker/internal/storage"
)

func newTestCapture() (*Capture, storage.Store, storage.Store) {
	contextStore := storage.NewMemoryStore(nil)
	cacheStore := storage.NewMemoryStore(nil)
	capture := NewCapture(config.NewDefaultAttributionConfig(), contextStore, cacheStore, zerolog.Nop())
	return capture, contextStore, cacheStore
}

func TestCapture_ExtractFromRawQuery(t *testing.T) {
	capture, _, _ := newTestCapture()

	params := capture.ExtractFromRawQuery("utm_source=naver&utm_medium=cpc&utm_custom=%ED%95%9C&gclid=abc123&page=2")

	assert.Equal(t, "naver", params["utm_source"])
	assert.Equal(t, "cpc", params["utm_medium"])
	assert.Equal(t, "한", params["utm_custom"], "unknown prefixed keys are captured and decoded")
	assert.NotContains(t, params, "gclid")
	assert.NotContains(t, params, "page")
}

func TestCapture_ExtractFromRawQuery_MalformedValueKept(t *testing.T) {
	capture, _, _ := newTestCapture()

	// A bare percent would make url.ParseQuery drop the whole pair;
	// the raw scan repairs and keeps it
	params := capture.ExtractFromRawQuery("utm_source=meta&utm_campaign=77%zz")

	assert.Equal(t, "meta", params["utm_source"])
	assert.Equal(t, "77%zz", params["utm_campaign"])
}

func TestCapture_ExtractFromRawQuery_FirstValueWins(t *testing.T) {
	capture, _, _ := newTestCapture()

	params := capture.ExtractFromRawQuery("utm_source=first&utm_source=second")
	assert.Equal(t, "first", params["utm_source"])
}

func TestCapture_PersistOrRestore(t *testing.T) {
	capture, _, _ := newTestCapture()

	first := map[string]string{"utm_source": "kakao", "utm_campaign": "launch"}
	result := capture.PersistOrRestore(first)
	assert.Equal(t, first, result)

	// A later navigation with no parameters restores the stored set
	restored := capture.PersistOrRestore(map[string]string{})
	assert.Equal(t, first, restored)

	// A fresh campaign overwrites the stored set
	second := map[string]string{"utm_source": "google"}
	capture.PersistOrRestore(second)
	restored = capture.PersistOrRestore(map[string]string{})
	assert.Equal(t, second, restored)
}

func TestCapture_PersistOrRestore_NothingStored(t *testing.T) {
	capture, _, _ := newTestCapture()

	empty := map[string]string{}
	result := capture.PersistOrRestore(empty)
	assert.Empty(t, result)
}

func TestCapture_RecoverContent(t *testing.T) {
	capture, _, _ := newTestCapture()

	// First navigation populates the cache
	full := map[string]string{"utm_id": "cmp-7", "utm_content": "banner_a"}
	capture.RecoverContent(full)

	// A truncated navigation recovers the label
	truncated := map[string]string{"utm_id": "cmp-7"}
	capture.RecoverContent(truncated)
	assert.Equal(t, "banner_a", truncated["utm_content"])

	// An unknown identifier recovers nothing
	unknown := map[string]string{"utm_id": "cmp-404"}
	capture.RecoverContent(unknown)
	assert.NotContains(t, unknown, "utm_content")

	// No identifier means no cache interaction either way
	noID := map[string]string{"utm_content": "banner_b"}
	capture.RecoverContent(noID)
	miss := map[string]string{"utm_id": ""}
	capture.RecoverContent(miss)
	assert.NotContains(t, miss, "utm_content")
}

func TestContentCache_EvictsOldestBeyondCapacity(t *testing.T) {
	cacheStore := storage.NewMemoryStore(nil)
	cache := NewContentCache(cacheStore, 3, zerolog.Nop())

	for i := 0; i < 5; i++ {
		cache.Put(fmt.Sprintf("cmp-%d", i), fmt.Sprintf("content-%d", i))
	}

	if _, ok := cache.Get("cmp-0"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := cache.Get("cmp-1"); ok {
		t.Error("second oldest entry should have been evicted")
	}
	for i := 2; i < 5; i++ {
		content, ok := cache.Get(fmt.Sprintf("cmp-%d", i))
		if !ok || content != fmt.Sprintf("content-%d", i) {
			t.Errorf("entry cmp-%d should have survived, got (%q, %v)", i, content, ok)
		}
	}
}

func TestContentCache_UpdateInPlace(t *testing.T) {
	cacheStore := storage.NewMemoryStore(nil)
	cache := NewContentCache(cacheStore, 3, zerolog.Nop())

	cache.Put("cmp-1", "old")
	cache.Put("cmp-2", "other")
	cache.Put("cmp-1", "new")

	content, ok := cache.Get("cmp-1")
	assert.True(t, ok)
	assert.Equal(t, "new", content)

	// Updating must not grow the cache
	cache.Put("cmp-3", "third")
	if _, ok := cache.Get("cmp-1"); !ok {
		t.Error("update in place must not cause eviction")
	}
}
