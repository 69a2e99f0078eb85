package record

import tiledb "github.com/TileDB-Inc/TileDB-Go"

// ZstdFilter and AddFilters are adapted directly from the teacher's
// tiledb.go helpers of the same name/shape: small, repeatedly-needed
// wrappers around the TileDB filter-pipeline API.

// ZstdFilter initialises the Zstandard compression filter at the
// given level.
func ZstdFilter(ctx *tiledb.Context, level int32) (*tiledb.Filter, error) {
	filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_ZSTD)
	if err != nil {
		return nil, err
	}
	if err := filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, level); err != nil {
		filt.Free()
		return nil, err
	}
	return filt, nil
}

// AddFilters sequentially appends compression filters to the filter
// pipeline list.
func AddFilters(filterList *tiledb.FilterList, filters ...*tiledb.Filter) error {
	for _, f := range filters {
		if err := filterList.AddFilter(f); err != nil {
			return err
		}
	}
	return nil
}
