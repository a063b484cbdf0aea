/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: translate.go
Description: Translation of widget texts into english. Wraps an external translation engine,
skips texts that are already english and rejects answers that look like engine error messages.
*/

package translate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/deepintent-ccs/DeepIntent/pkg/cache"
	"github.com/deepintent-ccs/DeepIntent/pkg/textutil"
	"github.com/sirupsen/logrus"
)

// Translator turns text of any language into english
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// ToEnglish guards a Translator with caching and result validation
type ToEnglish struct {
	engine Translator
	cache  cache.Store[string]
	logger *logrus.Logger
}

// NewToEnglish wraps engine; a nil store disables caching
func NewToEnglish(engine Translator, store cache.Store[string], logger *logrus.Logger) *ToEnglish {
	if store == nil {
		store = cache.NopStore[string]{}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &ToEnglish{engine: engine, cache: store, logger: logger}
}

// Translate returns text unchanged when its letters are ASCII. A failed translation
// yields "" and is not cached.
func (t *ToEnglish) Translate(ctx context.Context, text string) string {
	if textutil.IsASCIIOnly(text) {
		return text
	}
	if cached, ok := t.cache.Get(text); ok {
		return cached
	}

	result, err := t.engine.Translate(ctx, strings.ToLower(text))
	switch {
	case err != nil:
		t.logger.WithFields(logrus.Fields{"text": text, "error": err}).Debug("Translation failed")
		return ""
	case textutil.IsUpper(result):
		// engines report errors as shouting sentences
		t.logger.WithFields(logrus.Fields{"text": text, "result": result}).Debug("Rejected translation")
		return ""
	case !textutil.IsASCIIOnly(result):
		t.logger.WithFields(logrus.Fields{"text": text, "result": result}).Debug("Rejected untranslated result")
		return ""
	}

	t.cache.Set(text, result)
	return result
}

// TranslateAll translates every text, keeping positions
func (t *ToEnglish) TranslateAll(ctx context.Context, texts []string) []string {
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = t.Translate(ctx, text)
	}
	return out
}

// Identity leaves texts untouched
type Identity struct{}

func (Identity) Translate(_ context.Context, text string) (string, error) {
	return text, nil
}

// CommandTranslator pipes text to an external program and reads the translation
// from its standard output, e.g. "trans -b :en"
type CommandTranslator struct {
	Command string
	Args    []string
}

// NewCommandTranslator splits a command line on whitespace
func NewCommandTranslator(commandLine string) (*CommandTranslator, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty translation command")
	}
	return &CommandTranslator{Command: fields[0], Args: fields[1:]}, nil
}

func (c *CommandTranslator) Translate(ctx context.Context, text string) (string, error) {
	cmd := exec.CommandContext(ctx, c.Command, c.Args...)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("translation command failed: %v, output: %s", err, stderr.String())
	}
	return strings.TrimSpace(string(output)), nil
}
