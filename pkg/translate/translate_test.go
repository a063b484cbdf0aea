/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: translate_test.go
Description: Tests for english translation guarding and caching.
*/

package translate_test

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/deepintent-ccs/DeepIntent/pkg/cache"
	"github.com/deepintent-ccs/DeepIntent/pkg/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapTranslator struct {
	answers map[string]string
	calls   []string
}

func (m *mapTranslator) Translate(_ context.Context, text string) (string, error) {
	m.calls = append(m.calls, text)
	answer, ok := m.answers[text]
	if !ok {
		return "", errors.New("network down")
	}
	return answer, nil
}

func TestToEnglish(t *testing.T) {
	engine := &mapTranslator{answers: map[string]string{
		"发送":      "send",
		"보내기":     "PLEASE SELECT TWO DISTINCT LANGUAGES",
		"こんにちは":   "こんにちは",
		"café noir": "black coffee",
	}}
	store := cache.NewMemoryStore[string]()
	tr := translate.NewToEnglish(engine, store, nil)
	ctx := context.Background()

	assert.Equal(t, "Send Message", tr.Translate(ctx, "Send Message"))
	assert.Empty(t, engine.calls)

	assert.Equal(t, "send", tr.Translate(ctx, "发送"))
	assert.Equal(t, "send", tr.Translate(ctx, "发送"))
	assert.Equal(t, []string{"发送"}, engine.calls)

	assert.Equal(t, "black coffee", tr.Translate(ctx, "Café Noir"))
	assert.Equal(t, "café noir", engine.calls[1])

	assert.Equal(t, "", tr.Translate(ctx, "보내기"))
	assert.Equal(t, "", tr.Translate(ctx, "こんにちは"))
	assert.Equal(t, "", tr.Translate(ctx, "Ошибка"))
	_, cached := store.Get("보내기")
	assert.False(t, cached)
	assert.Equal(t, 2, store.Len())

	assert.Equal(t, []string{"OK", "send", ""}, tr.TranslateAll(ctx, []string{"OK", "发送", "보내기"}))
}

func TestCommandTranslator(t *testing.T) {
	_, err := translate.NewCommandTranslator("   ")
	assert.Error(t, err)

	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	c, err := translate.NewCommandTranslator("cat")
	require.NoError(t, err)
	out, err := c.Translate(context.Background(), " echo me \n")
	require.NoError(t, err)
	assert.Equal(t, "echo me", out)

	missing, err := translate.NewCommandTranslator("definitely-not-a-real-translator-binary")
	require.NoError(t, err)
	_, err = missing.Translate(context.Background(), "x")
	assert.Error(t, err)
}
