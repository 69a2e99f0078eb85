package record

import "errors"

// Sentinel errors for the TileDB publisher backend, named in the same
// style as the teacher's errors.go (one var per failure site so a
// caller can errors.Is against a specific stage of array
// construction).
var (
	ErrCreateSchemaTdb     = errors.New("record: error creating tiledb schema")
	ErrCreateDimTdb        = errors.New("record: error creating tiledb dimension")
	ErrCreateBeamSparseTdb = errors.New("record: error creating sparse photon array")
	ErrAddFilters          = errors.New("record: error adding filter to filter list")
	ErrSetFiltList         = errors.New("record: error setting attribute filter list")
	ErrNewAttr             = errors.New("record: error creating tiledb attribute")
	ErrAddAttr             = errors.New("record: error adding attribute to schema")
	ErrSetBuff             = errors.New("record: error setting tiledb query buffer")
)
