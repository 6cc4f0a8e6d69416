package template

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/xy-planning-network/trailhead"
)

const (
	assetsBase = "client/dist"
	devOrigin  = "http://localhost:8080"
)

// AssetURI encloses the environment, base path and filesystem so when called executing a template,
// emits valid URI for client side static and bundled assets.
//
// It returns "assetURI" as the name of the function for convenient passing to a template.FuncMap.
//
// In development, assets are served by the Vite dev server.
// Otherwise, hashed bundles are matched in filesys and served under base.
func AssetURI(env trailhead.Environment, base string, filesys fs.FS) (string, func(string) string) {
	if filesys == nil {
		filesys = os.DirFS(".")
	}

	return "assetURI", func(assetPath string) string {
		switch {
		case env.IsTesting():
			return ""

		case env.IsDevelopment():
			return fmt.Sprintf("%s/%s/%s", devOrigin, assetsBase, assetPath)

		default:
			// match hashed files bundled by Vite
			filename := strings.TrimSuffix(assetPath, filepath.Ext(assetPath))
			fileExt := filepath.Ext(assetPath)

			// Note: where assetPath = assets/main.js
			// glob = client/dist/assets/main-*.js
			glob := fmt.Sprintf("%s/%s-*%s", assetsBase, filename, fileExt)
			matches, err := fs.Glob(filesys, glob)

			if errors.Is(err, path.ErrBadPattern) || len(matches) == 0 {
				return fmt.Sprintf("%s/%s/%s", base, assetsBase, assetPath)
			}

			return fmt.Sprintf("%s/%s", base, matches[0])
		}
	}
}
