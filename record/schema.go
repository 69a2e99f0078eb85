package record

import (
	"errors"
	"reflect"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"
)

// ErrCreateAttribute wraps a struct-tag parsing or attribute-build
// failure in buildSchemaAttrs; it is the only sentinel buildSchemaAttrs
// joins. createAttr returns the underlying TileDB or tag error as is,
// without the per-stage sentinels declared in errors.go.
var ErrCreateAttribute = errors.New("record: error building tiledb attribute from struct tag")

// buildSchemaAttrs is the generalization of the teacher's schemaAttrs:
// it walks every exported field of t, reads its `tiledb:"dtype=...,
// ftype=..."` and `filters:"..."` tags via stagparser, and adds a
// matching attribute to schema. Fields tagged ftype=dim are skipped
// (dimensions are declared separately, by NewTileDBArray).
func buildSchemaAttrs(t any, schema *tiledb.ArraySchema, ctx *tiledb.Context) error {
	values := reflect.ValueOf(t).Elem()
	types := values.Type()

	filterDefs, _ := stgpsr.ParseStruct(t, "filters")
	tdbDefs, _ := stgpsr.ParseStruct(t, "tiledb")

	for i := 0; i < values.NumField(); i++ {
		name := types.Field(i).Name

		fieldTdbDefs := make(map[string]stgpsr.Definition)
		for _, d := range tdbDefs[name] {
			fieldTdbDefs[d.Name()] = d
		}

		def, ok := fieldTdbDefs["ftype"]
		if !ok {
			return errors.Join(ErrCreateAttribute, errors.New(name+": ftype tag not found"))
		}
		ftype, _ := def.Attribute("ftype")
		if ftype == "dim" {
			continue
		}

		if err := createAttr(name, filterDefs[name], fieldTdbDefs, schema, ctx); err != nil {
			return errors.Join(ErrCreateAttribute, err)
		}
	}
	return nil
}

// attrName matches the teacher's schemaAttrs convention: the TileDB
// attribute name is the Go struct field name verbatim (ping.go's
// AcrossTrack, BeamAngle, etc. are themselves the array's attribute
// names), not a snake_cased rewrite.
func attrName(fieldName string) string { return fieldName }

var dtypeTable = map[string]tiledb.Datatype{
	"int8":        tiledb.TILEDB_INT8,
	"uint8":       tiledb.TILEDB_UINT8,
	"int16":       tiledb.TILEDB_INT16,
	"uint16":      tiledb.TILEDB_UINT16,
	"int32":       tiledb.TILEDB_INT32,
	"uint32":      tiledb.TILEDB_UINT32,
	"int64":       tiledb.TILEDB_INT64,
	"uint64":      tiledb.TILEDB_UINT64,
	"float32":     tiledb.TILEDB_FLOAT32,
	"float64":     tiledb.TILEDB_FLOAT64,
	"datetime_ns": tiledb.TILEDB_DATETIME_NS,
}

// createAttr is a trimmed adaptation of the teacher's CreateAttr: the
// photon/elevation column set only ever needs zstd, so the full
// multi-filter switch (gzip/lz4/rle/bzip2/bit-width-reduction/
// byteshuffle/bitshuffle) the teacher supports for arbitrary sonar
// sub-record layouts is not reproduced here.
func createAttr(fieldName string, filterDefs []stgpsr.Definition, tdbDefs map[string]stgpsr.Definition, schema *tiledb.ArraySchema, ctx *tiledb.Context) error {
	def, ok := tdbDefs["dtype"]
	if !ok {
		return errors.New(fieldName + ": dtype tag not found")
	}
	dtype, _ := def.Attribute("dtype")

	tdbType, ok := dtypeTable[dtype.(string)]
	if !ok {
		return errors.New(fieldName + ": unsupported dtype " + dtype.(string))
	}

	attrFilters, err := tiledb.NewFilterList(ctx)
	if err != nil {
		return err
	}
	defer attrFilters.Free()

	for _, filter := range filterDefs {
		if filter.Name() != "zstd" {
			continue
		}
		level, ok := filter.Attribute("level")
		if !ok {
			return errors.New(fieldName + ": zstd level not defined")
		}
		filt, err := ZstdFilter(ctx, int32(level.(int64)))
		if err != nil {
			return err
		}
		err = attrFilters.AddFilter(filt)
		filt.Free()
		if err != nil {
			return err
		}
	}

	attr, err := tiledb.NewAttribute(ctx, attrName(fieldName), tdbType)
	if err != nil {
		return err
	}
	defer attr.Free()

	if err := attr.SetFilterList(attrFilters); err != nil {
		return err
	}
	return schema.AddAttributes(attr)
}
