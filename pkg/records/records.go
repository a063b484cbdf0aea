/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: records.go
Description: Program analysis results loader. Reads the widget to permission mapping produced by
the static analysis stage (csv, zipped csv or json lines) and merges it into one record per
app, image and layout.
*/

package records

import (
	"archive/zip"
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// Columns of the program analysis csv
var Columns = []string{"APK", "Image", "WID", "WID Name", "Layout", "Handler", "Method", "Permissions"}

const (
	colAPK         = 0
	colImage       = 1
	colLayout      = 4
	colPermissions = 7
)

// Record is one icon in one layout of one app together with the permissions its
// handlers use
type Record struct {
	App         string   `json:"app"`
	Image       string   `json:"image"`
	Layout      string   `json:"layout"`
	Permissions []string `json:"permissions"`
}

// Key identifies the record
func (r Record) Key() string {
	return r.App + "/" + r.Image + "/" + r.Layout
}

// Load dispatches on the file extension: .jsonl and .ndjson are json lines, everything
// else is csv or zipped csv
func Load(path string) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return LoadJSONL(path)
	default:
		return LoadCSV(path)
	}
}

// LoadCSV reads a csv file or a zip holding one. Inside the zip the entry named like
// the archive, the archive name plus ".csv" or the only entry is used.
func LoadCSV(path string) ([]Record, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return loadZippedCSV(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

func loadZippedCSV(path string) ([]Record, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records archive: %w", err)
	}
	defer zr.Close()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	entry := pickEntry(zr.File, base)
	if entry == nil {
		return nil, fmt.Errorf("no csv entry found in %s", path)
	}
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in archive: %w", entry.Name, err)
	}
	defer rc.Close()
	return ReadCSV(rc)
}

func pickEntry(files []*zip.File, base string) *zip.File {
	for _, name := range []string{base, base + ".csv"} {
		for _, f := range files {
			if f.Name == name {
				return f
			}
		}
	}
	if len(files) == 1 {
		return files[0]
	}
	return nil
}

// ReadCSV parses program analysis rows; the first row is the header
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	m := newMerger()
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}
		if len(row) < len(Columns) {
			return nil, fmt.Errorf("row %d has %d columns, want %d", line, len(row), len(Columns))
		}
		m.add(row[colAPK], row[colImage], row[colLayout], DecodePermissions(row[colPermissions]))
	}
	return m.records(), nil
}

// LoadJSONL reads one json object per line with app, image, layout and permissions keys
func LoadJSONL(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records: %w", err)
	}
	defer f.Close()
	return ReadJSONL(f)
}

// ReadJSONL parses json lines; blank lines are ignored
func ReadJSONL(r io.Reader) ([]Record, error) {
	m := newMerger()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if !gjson.Valid(text) {
			return nil, fmt.Errorf("line %d is not valid json", line)
		}
		fields := gjson.GetMany(text, "app", "image", "layout", "permissions")
		if !fields[0].Exists() || !fields[1].Exists() {
			return nil, fmt.Errorf("line %d lacks app or image", line)
		}
		var perms []string
		if fields[3].IsArray() {
			for _, p := range fields[3].Array() {
				perms = append(perms, p.String())
			}
		} else if fields[3].Exists() {
			perms = DecodePermissions(fields[3].String())
		}
		m.add(fields[0].String(), fields[1].String(), fields[2].String(), perms)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m.records(), nil
}

// DecodePermissions understands [p1], [p1, p2] and ['p1', 'p2'] cells
func DecodePermissions(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	var perms []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.Trim(strings.TrimSpace(p), `'"`)
		if p != "" {
			perms = append(perms, p)
		}
	}
	return perms
}

// merger groups rows by app, then image, then layout, each in first seen order
type merger struct {
	apps  []string
	byApp map[string]*appGroup
}

type appGroup struct {
	images  []string
	byImage map[string]*imageGroup
}

type imageGroup struct {
	layouts  []string
	byLayout map[string]map[string]struct{}
}

func newMerger() *merger {
	return &merger{byApp: make(map[string]*appGroup)}
}

func (m *merger) add(app, image, layout string, perms []string) {
	ag, ok := m.byApp[app]
	if !ok {
		ag = &appGroup{byImage: make(map[string]*imageGroup)}
		m.byApp[app] = ag
		m.apps = append(m.apps, app)
	}
	ig, ok := ag.byImage[image]
	if !ok {
		ig = &imageGroup{byLayout: make(map[string]map[string]struct{})}
		ag.byImage[image] = ig
		ag.images = append(ag.images, image)
	}
	set, ok := ig.byLayout[layout]
	if !ok {
		set = make(map[string]struct{})
		ig.byLayout[layout] = set
		ig.layouts = append(ig.layouts, layout)
	}
	for _, p := range perms {
		set[p] = struct{}{}
	}
}

func (m *merger) records() []Record {
	out := []Record{}
	for _, app := range m.apps {
		ag := m.byApp[app]
		for _, image := range ag.images {
			ig := ag.byImage[image]
			for _, layout := range ig.layouts {
				perms := make([]string, 0, len(ig.byLayout[layout]))
				for p := range ig.byLayout[layout] {
					perms = append(perms, p)
				}
				sort.Strings(perms)
				out = append(out, Record{App: app, Image: image, Layout: layout, Permissions: perms})
			}
		}
	}
	return out
}
