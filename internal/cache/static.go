package cache

import (
	"io/fs"

	"github.com/debemdeboas/archive-admin/internal/util"
)

var staticCache = NewCache[string, string]()

func GetStaticHash(path string) (string, bool) {
	return staticCache.Get(path)
}

func SetStaticHash(path, hash string) {
	staticCache.Set(path, hash)
}

// HashStaticFS records a content hash for every file in fsys under
// urlPrefix+path.
func HashStaticFS(fsys fs.FS, urlPrefix string) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}

		SetStaticHash(urlPrefix+path, `"`+util.ContentHash(content)+`"`)
		return nil
	})
}
