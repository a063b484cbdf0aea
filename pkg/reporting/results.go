/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: results.go
Description: JSON lines output of extraction results. Each line is one record with its chosen
icon, lookup trace and texts. Icon pixels travel zlib compressed next to the image metadata.
*/

package reporting

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/deepintent-ccs/DeepIntent/pkg/pipeline"
)

// resultLine is the on-disk shape of a result
type resultLine struct {
	*pipeline.Result
	ImageData []byte `json:"image_data,omitempty"` // zlib compressed pixels
}

// WriteResults writes every result of batch to path, one JSON object per line
func WriteResults(path string, batch *pipeline.Batch) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := EncodeResults(w, batch); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}

// EncodeResults writes the JSON lines of batch to w
func EncodeResults(w io.Writer, batch *pipeline.Batch) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, res := range batch.Results {
		line := resultLine{Result: res}
		if res.Image != nil {
			data, err := res.Image.Compress()
			if err != nil {
				return fmt.Errorf("failed to compress icon of %s: %w", res.Record.Key(), err)
			}
			line.ImageData = data
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	}
	return nil
}
