package web

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const assetCacheControl = "public, max-age=3600"

// assetKinds maps the URL kind to the extensions tried, in order, when the
// logical key has none.
var assetKinds = map[string][]string{
	"images": {".png", ".jpg", ".jpeg", ".webp"},
	"audio":  {".mp3", ".ogg", ".wav", ".m4a"},
}

var assetContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
}

// assetCandidates validates kind and key and returns the file paths to try
// under <AssetsDir>/<kind>/.
func (s *Server) assetCandidates(kind, key string) ([]string, bool) {
	exts, ok := assetKinds[kind]
	if !ok || key == "" {
		return nil, false
	}
	safe := filepath.Clean(key)
	if safe == "." || strings.Contains(safe, "..") || filepath.IsAbs(safe) ||
		strings.ContainsRune(safe, filepath.Separator) || strings.ContainsRune(safe, '/') {
		return nil, false
	}

	baseDir := filepath.Join(s.assetsDir(), kind)
	resolved := filepath.Join(baseDir, safe)
	rel, err := filepath.Rel(baseDir, resolved)
	if err != nil || strings.Contains(rel, "..") {
		return nil, false
	}

	candidates := []string{resolved}
	if filepath.Ext(safe) == "" {
		candidates = candidates[:0]
		for _, ext := range exts {
			candidates = append(candidates, resolved+ext)
		}
	}
	return candidates, true
}

// handleAsset serves /assets/{kind}/{key}, where key is the logical image
// or audio key used by the story and the presenter.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	candidates, ok := s.assetCandidates(r.PathValue("kind"), r.PathValue("key"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	for _, p := range candidates {
		ct, known := assetContentTypes[strings.ToLower(filepath.Ext(p))]
		if !known {
			continue
		}
		f, err := os.Open(p) // #nosec G304 -- p is under the validated assets dir
		if err != nil {
			continue
		}
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			_ = f.Close()
			continue
		}
		defer f.Close()
		w.Header().Set("Content-Type", ct)
		w.Header().Set("Cache-Control", assetCacheControl)
		http.ServeContent(w, r, filepath.Base(p), info.ModTime(), f)
		return
	}
	http.NotFound(w, r)
}
