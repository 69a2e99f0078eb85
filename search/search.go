// Package search implements granule discovery over a local filesystem
// or object store (trawl, grounded on the teacher's search.go VFS
// walk) and a bounding-box spatial index over the discovered granules
// so a caller can ask "which granules intersect this ROI" before
// opening any of them.
package search

import (
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// granulePatterns matches the filename grammars granule.ParseFilename
// recognizes: ATL0x and the three GEDI product names.
var granulePatterns = []string{
	"ATL03_*.h5", "ATL06_*.h5", "ATL13_*.h5", "ATL24_*.h5",
	"GEDI01_B_*.h5", "GEDI02_A_*.h5", "GEDI04_A_*.h5",
}

func matchesAny(name string) bool {
	for _, p := range granulePatterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

func trawl(vfs *tiledb.VFS, uri string, items []string) ([]string, error) {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		if matchesAny(filepath.Base(f)) {
			items = append(items, f)
		}
	}

	for _, d := range dirs {
		items, err = trawl(vfs, d, items)
		if err != nil {
			return nil, err
		}
	}

	return items, nil
}

// Find recursively searches uri (a local path or an object-store URI,
// e.g. s3://bucket/prefix) for ICESat-2/GEDI granule files, using the
// TileDB VFS abstraction so the same call works against either
// backend. configURI, if non-empty, names a TileDB config file
// carrying object-store credentials/region.
func Find(uri, configURI string) ([]string, error) {
	var (
		cfg *tiledb.Config
		err error
	)

	if configURI == "" {
		cfg, err = tiledb.NewConfig()
	} else {
		cfg, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return nil, err
	}
	defer cfg.Free()

	ctx, err := tiledb.NewContext(cfg)
	if err != nil {
		return nil, err
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer vfs.Free()

	return trawl(vfs, uri, nil)
}
