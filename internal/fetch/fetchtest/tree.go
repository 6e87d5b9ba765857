// Package fetchtest serves in-memory budget data trees for tests.
package fetchtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
)

// Tree is an in-memory data tree keyed by relative resource name
// ("directory.json", "01/0401.yaml"). It counts requests per name.
type Tree struct {
	mu     sync.Mutex
	files  map[string]string
	hits   map[string]int
	failed map[string]int
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{
		files:  make(map[string]string),
		hits:   make(map[string]int),
		failed: make(map[string]int),
	}
}

// Dir adds "<dir>directory.json" listing files.
func (tr *Tree) Dir(dir string, files ...string) *Tree {
	if files == nil {
		files = []string{}
	}
	body, _ := json.Marshal(map[string][]string{"files": files})
	return tr.File(dir+"directory.json", string(body))
}

// File adds a raw resource.
func (tr *Tree) File(name, body string) *Tree {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.files[name] = body
	return tr
}

// Fail makes name answer with status until cleared.
func (tr *Tree) Fail(name string, status int) *Tree {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.failed[name] = status
	return tr
}

// Hits returns how often name was requested.
func (tr *Tree) Hits(name string) int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.hits[name]
}

// TotalHits returns the number of requests served.
func (tr *Tree) TotalHits() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	n := 0
	for _, h := range tr.hits {
		n += h
	}
	return n
}

// ServeHTTP implements http.Handler.
func (tr *Tree) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/")

	tr.mu.Lock()
	tr.hits[name]++
	status, failing := tr.failed[name]
	body, ok := tr.files[name]
	tr.mu.Unlock()

	switch {
	case failing:
		http.Error(w, "boom", status)
	case !ok:
		http.NotFound(w, r)
	default:
		_, _ = w.Write([]byte(body))
	}
}

// Server starts an httptest server for the tree, closed with the test.
func (tr *Tree) Server(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(tr)
	t.Cleanup(srv.Close)
	return srv
}

// FS returns a snapshot of the tree as a file system.
func (tr *Tree) FS() fstest.MapFS {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	fsys := make(fstest.MapFS, len(tr.files))
	for name, body := range tr.files {
		fsys[name] = &fstest.MapFile{Data: []byte(body)}
	}
	return fsys
}

// Budget returns a small federal-budget-shaped tree:
//
//	01 (100)  -> 0101 (60), 0102 (40, leaf with listing but no yaml)
//	02 (300)  -> 0201 (300)
//	03 (n/a)  dropped
//	04 (50)   leaf, no listing
func Budget() *Tree {
	return NewTree().
		Dir("", "01.yaml", "02.yaml", "03.yaml", "04.yaml", "index.html").
		File("01.yaml", "Einzelplanbezeichnung: Bundespraesident\nBetrag: \"100\"\n").
		File("02.yaml", "Einzelplanbezeichnung: Bundestag\nBetrag: 300\n").
		File("03.yaml", "Einzelplanbezeichnung: Kaputt\nBetrag: n/a\n").
		File("04.yaml", "Betrag: 50\n").
		Dir("01/", "0101.yaml", "0102.yaml").
		File("01/0101.yaml", "Kapitelbezeichnung: Amt\nBetrag: 60\n").
		File("01/0102.yaml", "Kapitelbezeichnung: Stiftung\nBetrag: 40\n").
		Dir("01/0102/", "README.md").
		Dir("02/", "0201.yaml").
		File("02/0201.yaml", "Kapitelbezeichnung: Verwaltung\nBetrag: 300.5\n")
}
