package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rshade/budgettree/internal/chart"
	"github.com/rshade/budgettree/internal/fetch"
	"github.com/rshade/budgettree/internal/tree"
)

// Entry is the JSON form of a node.
type Entry struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Formatted   string  `json:"formatted"`
	FolderName  string  `json:"folderName"`
	FullPath    string  `json:"fullPath"`
	HasChildren bool    `json:"hasChildren"`
}

// SearchHit is the JSON form of a search match.
type SearchHit struct {
	Entry
	Distance int `json:"distance"`
}

func toEntry(n *tree.Node) Entry {
	return Entry{
		Name:        n.Name,
		Value:       n.Value,
		Formatted:   chart.FormatEuro(n.Value),
		FolderName:  n.FolderName,
		FullPath:    n.FullPath,
		HasChildren: n.HasChildren,
	}
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	nodes := s.loader.Entries(r.Context(), r.URL.Query().Get("path"))
	out := make([]Entry, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, toEntry(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePie(w http.ResponseWriter, r *http.Request) {
	maxSegments, ok := intParam(w, r, "max", s.cfg.MaxSegments)
	if !ok {
		return
	}
	nodes := s.loader.Entries(r.Context(), r.URL.Query().Get("path"))
	writeJSON(w, http.StatusOK, chart.Pie(nodes, maxSegments))
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	depth, ok := intParam(w, r, "depth", DefaultTreeDepth)
	if !ok {
		return
	}
	depth = min(max(depth, 1), MaxTreeDepth)
	ctx := r.Context()

	node, err := s.loader.ExpandPath(ctx, fetch.NormalizeDir(r.URL.Query().Get("path")))
	if err != nil {
		s.writeLoadError(w, err)
		return
	}

	crawler, err := tree.NewCrawler(s.loader, tree.CrawlOptions{MaxDepth: depth})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := crawler.Crawl(ctx, node); err != nil {
		s.writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chart.TreeDepth(node, depth))
}

func (s *Server) handleBreadcrumbs(w http.ResponseWriter, r *http.Request) {
	crumbs := []tree.Crumb{{ID: "", Title: tree.RootName, Path: ""}}
	crumbs = append(crumbs, s.loader.PathTitles(r.Context(), r.URL.Query().Get("path"))...)
	writeJSON(w, http.StatusOK, crumbs)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit", DefaultLimit)
	if !ok {
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	matches := tree.Search(s.loader.Root(), q, limit)
	out := make([]SearchHit, 0, len(matches))
	for _, m := range matches {
		out = append(out, SearchHit{Entry: toEntry(m.Node), Distance: m.Distance})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tree.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Warn().Err(err).Msg("tree load aborted")
		writeError(w, http.StatusServiceUnavailable, err.Error())
	}
}

func intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name+": "+raw)
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
