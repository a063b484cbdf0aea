/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: layout_test.go
Description: Tests for string tables and layout text collection in parent and total scope.
*/

package layout_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deepintent-ccs/DeepIntent/pkg/apptest"
	"github.com/deepintent-ccs/DeepIntent/pkg/layout"
	"github.com/deepintent-ccs/DeepIntent/pkg/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stringsXML = `<resources>
    <string name="send">Send message</string>
    <string name="title">Compose</string>
    <string name="empty"></string>
    <string name="styled">Bold<b>part</b> tail</string>
    <plurals name="count"><item quantity="one">one</item></plurals>
</resources>`

const composeLayout = `<LinearLayout ` + apptest.AndroidDecl + ` android:orientation="vertical">
    <TextView android:text="@string/title"/>
    <LinearLayout android:orientation="horizontal">
        <EditText android:hint="Type here" android:text="Hello"/>
        <ImageButton android:src="@drawable/ic_send"/>
        <TextView android:text="@string/send"/>
        <TextView android:text="secret" android:visibility="invisible">
        </TextView>
        <TextView android:text="@string/missing"/>
        <TextView android:text="gone" android:visibility="gone"/>
    </LinearLayout>
    <TextView android:text="Footer"/>
</LinearLayout>`

func TestParseStringTable(t *testing.T) {
	table, err := layout.ParseStringTable([]byte(stringsXML))
	require.NoError(t, err)

	assert.Equal(t, layout.StringTable{
		"send":   "Send message",
		"title":  "Compose",
		"styled": "Bold",
	}, table)

	text, ok := table.Resolve("@string/send")
	assert.True(t, ok)
	assert.Equal(t, "Send message", text)

	_, ok = table.Resolve("@string")
	assert.False(t, ok)
	_, ok = table.Resolve("@string/empty")
	assert.False(t, ok)
}

func TestParseScope(t *testing.T) {
	assert.Equal(t, layout.ScopeTotal, layout.ParseScope("total"))
	assert.Equal(t, layout.ScopeTotal, layout.ParseScope(" Total "))
	assert.Equal(t, layout.ScopeParent, layout.ParseScope("parent"))
	assert.Equal(t, layout.ScopeParent, layout.ParseScope("everything"))
}

func TestTextsFromXML(t *testing.T) {
	table, err := layout.ParseStringTable([]byte(stringsXML))
	require.NoError(t, err)

	parent, err := layout.TextsFromXML([]byte(composeLayout), "ic_send", table, layout.ScopeParent)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", "Send message", "gone"}, parent)

	total, err := layout.TextsFromXML([]byte(composeLayout), "ic_send", table, layout.ScopeTotal)
	require.NoError(t, err)
	assert.Equal(t, []string{"Compose", "Hello", "Send message", "gone", "Footer"}, total)

	// Image absent from the layout degrades to the whole document
	fallback, err := layout.TextsFromXML([]byte(composeLayout), "ic_other", table, layout.ScopeParent)
	require.NoError(t, err)
	assert.Equal(t, total, fallback)

	// Without a table string references are dropped
	bare, err := layout.TextsFromXML([]byte(composeLayout), "ic_send", layout.StringTable{}, layout.ScopeParent)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", "gone"}, bare)
}

func TestTextsFromXMLInvisibleParentKeepsChildren(t *testing.T) {
	doc := `<FrameLayout ` + apptest.AndroidDecl + `>
    <LinearLayout android:visibility="invisible" android:text="container">
        <ImageView android:src="@drawable/ic_a"/>
        <TextView android:text="child"/>
    </LinearLayout>
</FrameLayout>`
	texts, err := layout.TextsFromXML([]byte(doc), "ic_a", nil, layout.ScopeTotal)
	require.NoError(t, err)
	assert.Equal(t, []string{"child"}, texts)
}

func TestTextsFromXMLMultipleTargets(t *testing.T) {
	doc := `<LinearLayout ` + apptest.AndroidDecl + `>
    <LinearLayout>
        <ImageView android:src="@drawable/ic_a"/>
        <TextView android:text="one"/>
    </LinearLayout>
    <TextView android:text="between"/>
    <LinearLayout>
        <ImageView android:background="@drawable/ic_a"/>
        <TextView android:text="two"/>
    </LinearLayout>
</LinearLayout>`
	parent, err := layout.TextsFromXML([]byte(doc), "ic_a", nil, layout.ScopeParent)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, parent)

	total, err := layout.TextsFromXML([]byte(doc), "ic_a", nil, layout.ScopeTotal)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "between", "two"}, total)
}

// A reference on the root element has no parent, so the scope widens to the
// whole document rather than yielding nothing.
func TestTextsFromXMLRootTarget(t *testing.T) {
	doc := `<ImageView ` + apptest.AndroidDecl + ` android:src="@drawable/ic_a" android:text="self"/>`
	texts, err := layout.TextsFromXML([]byte(doc), "ic_a", nil, layout.ScopeParent)
	require.NoError(t, err)
	assert.Equal(t, []string{"self"}, texts)

	doc = `<FrameLayout ` + apptest.AndroidDecl + ` android:background="@drawable/ic_a">
  <TextView android:text="title"/>
  <LinearLayout><TextView android:text="nested"/></LinearLayout>
</FrameLayout>`
	texts, err = layout.TextsFromXML([]byte(doc), "ic_a", nil, layout.ScopeParent)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "nested"}, texts)
}

func TestResolveLayoutTexts(t *testing.T) {
	tree := apptest.New(t, "com.example.chat")
	tree.WriteXML("res/values/strings.xml", stringsXML)
	tree.WriteXML("res/values-fr/strings.xml", `<resources><string name="send">Envoyer</string></resources>`)
	tree.WriteXML("res/layout/compose.xml", composeLayout)

	r := layout.NewResolver(nil)
	texts, err := r.ResolveLayoutTexts(tree.AppsDir, tree.Name, "ic_send", "compose.xml", layout.ScopeParent)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", "Send message", "gone"}, texts)

	texts, err = r.ResolveLayoutTexts(tree.AppsDir, tree.Name, "ic_send", "missing.xml", layout.ScopeParent)
	require.NoError(t, err)
	assert.NotNil(t, texts)
	assert.Empty(t, texts)

	_, err = r.ResolveLayoutTexts(tree.AppsDir, "ghost", "ic_send", "compose.xml", layout.ScopeParent)
	assert.True(t, resources.IsPrecondition(err))
}

func TestResolveLayoutTextsBrokenFiles(t *testing.T) {
	tree := apptest.New(t, "app")
	tree.WriteFile("res/values/strings.xml", []byte("<resources><string"))
	tree.WriteXML("res/layout/main.xml", composeLayout)
	tree.WriteFile("res/layout/broken.xml", []byte("<LinearLayout>"))

	r := layout.NewResolver(nil)
	texts, err := r.ResolveLayoutTexts(tree.AppsDir, tree.Name, "ic_send", "main.xml", layout.ScopeParent)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", "gone"}, texts)

	texts, err = r.ResolveLayoutTexts(tree.AppsDir, tree.Name, "ic_send", "broken.xml", layout.ScopeParent)
	require.NoError(t, err)
	assert.Empty(t, texts)

	require.NoError(t, os.RemoveAll(filepath.Join(tree.Root, "res", "values")))
	texts, err = r.ResolveLayoutTexts(tree.AppsDir, tree.Name, "ic_send", "main.xml", layout.ScopeTotal)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", "gone", "Footer"}, texts)
}
