// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// staticHandler serves the web client. Paths that name no file fall back
// to index.html so client-side routes survive a reload.
type staticHandler struct {
	root  string
	files http.Handler
}

func newStaticHandler(root string) http.Handler {
	return &staticHandler{root: root, files: http.FileServer(http.Dir(root))}
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	name := filepath.Join(h.root, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	if info, err := os.Stat(name); err == nil {
		if !info.IsDir() || fileExists(filepath.Join(name, "index.html")) {
			h.files.ServeHTTP(w, r)
			return
		}
	}

	index := filepath.Join(h.root, "index.html")
	f, err := os.Open(index)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	http.ServeContent(w, r, "index.html", info.ModTime(), f)
}

func fileExists(name string) bool {
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}
