/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inventory.go
Description: Resource inventory of a decoded app, used to sanity check an apps directory.
*/

package resources

import (
	"os"
	"path"
)

// Inventory counts the resources an app ships
type Inventory struct {
	App          string    `json:"app"`
	Manifest     *Manifest `json:"manifest"`
	Drawables    int       `json:"drawables"`     // Files in drawable folders
	Descriptors  int       `json:"descriptors"`   // XML files among the drawables
	Layouts      int       `json:"layouts"`       // Files in layout folders
	StringTables int       `json:"string_tables"` // values folders with a strings.xml
}

// Inventory walks the drawable, layout and values folders of the app
func (a *App) Inventory() (*Inventory, error) {
	manifest, err := a.ReadManifest()
	if err != nil {
		return nil, err
	}
	inv := &Inventory{App: a.Name, Manifest: manifest}

	err = a.eachFile(PrefixDrawable, func(name string) {
		inv.Drawables++
		if _, ext := splitExt(name); ext == ".xml" {
			inv.Descriptors++
		}
	})
	if err != nil {
		return nil, err
	}
	if err := a.eachFile(PrefixLayout, func(string) { inv.Layouts++ }); err != nil {
		return nil, err
	}
	err = a.eachFile(PrefixValues, func(name string) {
		if name == "strings.xml" {
			inv.StringTables++
		}
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (a *App) eachFile(prefix string, fn func(name string)) error {
	folders, err := a.ResourceFolders(prefix)
	if err != nil {
		return err
	}
	for _, folder := range folders {
		entries, err := os.ReadDir(a.Path(path.Join("res", folder)))
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				fn(entry.Name())
			}
		}
	}
	return nil
}
