/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: app.go
Description: Decoded application tree access. Validates the app root, enumerates qualified
resource folders (drawable*, layout*, values*) and locates resource files inside them.
Folder qualifiers are matched by prefix only; no density or locale selection is performed.
*/

package resources

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Resource folder prefixes consumed by the engine
const (
	PrefixDrawable = "drawable"
	PrefixLayout   = "layout"
	PrefixValues   = "values"
)

// App is one decoded application living under appsDir/Name
type App struct {
	Name string
	Root string
}

// OpenApp validates that appsDir/appName is a decoded application with a res folder
func OpenApp(appsDir, appName string) (*App, error) {
	root := filepath.Join(appsDir, appName)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, &PreconditionError{Path: root, Reason: "app directory not found"}
	}
	res := filepath.Join(root, "res")
	info, err = os.Stat(res)
	if err != nil || !info.IsDir() {
		return nil, &PreconditionError{Path: root, Reason: "missing res directory"}
	}
	return &App{Name: appName, Root: root}, nil
}

// ResDir returns the absolute res folder of the app
func (a *App) ResDir() string {
	return filepath.Join(a.Root, "res")
}

// Path turns a slash separated path relative to the app root into a filesystem path
func (a *App) Path(rel string) string {
	return filepath.Join(a.Root, filepath.FromSlash(rel))
}

// ResourceFolders lists the immediate res sub-folders whose name starts with prefix,
// sorted by name so the unqualified folder comes before its qualified variants
func (a *App) ResourceFolders(prefix string) ([]string, error) {
	entries, err := os.ReadDir(a.ResDir())
	if err != nil {
		return nil, err
	}
	var folders []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			folders = append(folders, entry.Name())
		}
	}
	sort.Strings(folders)
	return folders, nil
}

// FindResourceFile returns the relative path of the first res/<prefix>*/file that exists,
// or an empty string when no folder holds it
func (a *App) FindResourceFile(prefix, file string) string {
	folders, err := a.ResourceFolders(prefix)
	if err != nil {
		return ""
	}
	for _, folder := range folders {
		rel := path.Join("res", folder, file)
		if info, err := os.Stat(a.Path(rel)); err == nil && !info.IsDir() {
			return rel
		}
	}
	return ""
}

// splitExt splits a file name the way Android tooling sees it: leading dots belong to
// the name, the extension starts at the last dot
func splitExt(name string) (string, string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 || strings.Trim(name[:i], ".") == "" {
		return name, ""
	}
	return name[:i], name[i:]
}

// resourceBaseName strips the extension and any secondary qualifier such as the
// ".9" of nine-patch images
func resourceBaseName(file string) (string, string) {
	base, ext := splitExt(file)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return base, ext
}
