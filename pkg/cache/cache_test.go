/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: cache_test.go
Description: Tests for the cache backends.
*/

package cache_test

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/deepintent-ccs/DeepIntent/pkg/cache"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store cache.Store[[]string]) {
	t.Helper()

	_, ok := store.Get("missing")
	assert.False(t, ok)

	store.Set("app-img-(32, 32)", []string{"SEND"})
	v, ok := store.Get("app-img-(32, 32)")
	require.True(t, ok)
	assert.Equal(t, []string{"SEND"}, v)

	// empty results are cached too
	store.Set("empty", []string{})
	v, ok = store.Get("empty")
	assert.True(t, ok)
	assert.Empty(t, v)

	// last write wins
	store.Set("app-img-(32, 32)", []string{"GO"})
	v, _ = store.Get("app-img-(32, 32)")
	assert.Equal(t, []string{"GO"}, v)
}

func TestMemoryStore(t *testing.T) {
	store := cache.NewMemoryStore[[]string]()
	exerciseStore(t, store)
	assert.Equal(t, 2, store.Len())
}

func TestTTLStore(t *testing.T) {
	exerciseStore(t, cache.NewTTLStore[[]string](time.Minute))
}

func TestLevelDBStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	f, err := cache.NewFactory(cache.BackendLevelDB, dir, 0, nil)
	require.NoError(t, err)

	ocr := cache.Make[[]string](f, "ocr")
	exerciseStore(t, ocr)

	translations := cache.Make[string](f, "tr")
	translations.Set("app-img-(32, 32)", "other namespace")
	v, _ := ocr.Get("app-img-(32, 32)")
	assert.Equal(t, []string{"GO"}, v)
	require.NoError(t, f.Close())

	// values survive reopening
	f, err = cache.NewFactory(cache.BackendLevelDB, dir, 0, nil)
	require.NoError(t, err)
	defer f.Close()
	v, ok := cache.Make[[]string](f, "ocr").Get("app-img-(32, 32)")
	assert.True(t, ok)
	assert.Equal(t, []string{"GO"}, v)
}

func TestLevelDBStoreLogsToFactoryLogger(t *testing.T) {
	var out bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&out)

	f, err := cache.NewFactory(cache.BackendLevelDB, filepath.Join(t.TempDir(), "cache"), 0, logger)
	require.NoError(t, err)
	defer f.Close()

	cache.Make[string](f, "ocr").Set("k", "not a list")
	_, ok := cache.Make[[]string](f, "ocr").Get("k")
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Dropping undecodable cache entry")
	assert.Contains(t, out.String(), "key=k")
}

func TestFactoryBackends(t *testing.T) {
	f, err := cache.NewFactory(cache.BackendNone, "", 0, nil)
	require.NoError(t, err)
	store := cache.Make[string](f, "x")
	store.Set("k", "v")
	_, ok := store.Get("k")
	assert.False(t, ok)
	assert.NoError(t, f.Close())

	_, err = cache.NewFactory(cache.BackendLevelDB, "", 0, nil)
	assert.Error(t, err)

	b, err := cache.ParseBackend("TTL")
	require.NoError(t, err)
	assert.Equal(t, cache.BackendTTL, b)
	b, err = cache.ParseBackend("")
	require.NoError(t, err)
	assert.Equal(t, cache.BackendMemory, b)
	_, err = cache.ParseBackend("redis")
	assert.Error(t, err)
}

func TestMemoryStoreConcurrent(t *testing.T) {
	store := cache.NewMemoryStore[int]()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			store.Set(key, i)
			store.Get(key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 4, store.Len())
}
