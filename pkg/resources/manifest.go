/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: manifest.go
Description: AndroidManifest.xml reader for decoded applications. Extracts the package name and
the declared permissions, accepting both decoded text and raw binary manifests.
*/

package resources

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Manifest holds the manifest facts used by the engine
type Manifest struct {
	Package     string   `json:"package"`
	Permissions []string `json:"permissions"`
	Activities  int      `json:"activities"`
}

// ReadManifest parses the app manifest; a missing manifest yields an empty Manifest
func (a *App) ReadManifest() (*Manifest, error) {
	manifestPath := filepath.Join(a.Root, "AndroidManifest.xml")
	if _, err := os.Stat(manifestPath); errors.Is(err, fs.ErrNotExist) {
		return &Manifest{}, nil
	}

	doc, err := ReadXML(manifestPath)
	if err != nil {
		return nil, err
	}
	root := RootElement(doc)
	m := &Manifest{}
	m.Package, _ = PlainAttr(root, "package")

	for _, el := range Elements(root) {
		switch el.Data {
		case "uses-permission":
			if name, ok := AndroidAttr(el, "name"); ok {
				m.Permissions = append(m.Permissions, name)
			}
		case "activity", "activity-alias":
			m.Activities++
		}
	}
	return m, nil
}
