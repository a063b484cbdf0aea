/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: tesseract.go
Description: Recognizer backed by the tesseract command line tool. Each region is written to a
temporary PNG and read back as a single text line with the LSTM engine.
*/

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"

	"github.com/deepintent-ccs/DeepIntent/pkg/textutil"
)

var tesseractLanguages = map[string]string{
	textutil.LanguageEnglish:  "eng",
	textutil.LanguageChinese:  "chi_sim",
	textutil.LanguageJapanese: "jpn",
	textutil.LanguageKorean:   "kor",
}

// TesseractLanguage maps a detected language to a tesseract model name; unknown names
// pass through unchanged
func TesseractLanguage(lang string) string {
	if code, ok := tesseractLanguages[lang]; ok {
		return code
	}
	return lang
}

// TesseractRecognizer shells out to tesseract
type TesseractRecognizer struct {
	Binary string
}

// NewTesseractRecognizer uses binary, or "tesseract" from PATH when empty
func NewTesseractRecognizer(binary string) *TesseractRecognizer {
	if binary == "" {
		binary = "tesseract"
	}
	return &TesseractRecognizer{Binary: binary}
}

// Available reports whether the binary can be found
func (t *TesseractRecognizer) Available() bool {
	_, err := exec.LookPath(t.Binary)
	return err == nil
}

func (t *TesseractRecognizer) Recognize(ctx context.Context, img image.Image, lang string) (string, error) {
	tmp, err := os.CreateTemp("", "iconctx-ocr-*.png")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write region: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, t.Binary, tmp.Name(), "stdout",
		"-l", TesseractLanguage(lang), "--oem", "1", "--psm", "7")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract failed: %v, output: %s", err, stderr.String())
	}
	return string(output), nil
}
