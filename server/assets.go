package server

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"mori/config"
)

// Decorative asset names looked up in the assets directory.
const (
	BackgroundFile = "bg.jpeg"
	LogoFile       = "logo.png"
)

type asset struct {
	data        []byte
	contentType string
}

// Assets holds the optional background and logo, read once at startup.
// A missing file is not an error; the page simply renders without it.
type Assets struct {
	files   map[string]asset
	modTime time.Time
}

// LoadAssets reads the decorative images from dir.
func LoadAssets(dir string) *Assets {
	a := &Assets{files: make(map[string]asset), modTime: time.Now()}

	for _, name := range []string{BackgroundFile, LogoFile} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Server] asset %s skipped: %v", path, err)
			}
			continue
		}
		a.files[name] = asset{data: data, contentType: http.DetectContentType(data)}
	}

	return a
}

func (a *Assets) Has(name string) bool {
	_, ok := a.files[name]
	return ok
}

func (a *Assets) serve(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	f, ok := a.files[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", f.contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(f.data)
}
