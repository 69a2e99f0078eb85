// Command subsetter is the CLI front door for the granule subsetting
// pipeline: one granule at a time (subset), a directory/bucket of
// granules fanned out across a worker pool (subset-trawl), or a
// single-node RPC listener (serve). The command layout and the
// worker-pool batch pattern mirror the teacher's cmd/main.go
// (convert/convert-trawl -> subset/subset-trawl).
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/airbusgeo/godal"
	"github.com/alitto/pond"
	tiledb "github.com/TileDB-Inc/TileDB-Go"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/SlideRuleEarth/sliderule-sub005/beam"
	"github.com/SlideRuleEarth/sliderule-sub005/config"
	"github.com/SlideRuleEarth/sliderule-sub005/fetch"
	"github.com/SlideRuleEarth/sliderule-sub005/mask"
	"github.com/SlideRuleEarth/sliderule-sub005/oceaneyes"
	"github.com/SlideRuleEarth/sliderule-sub005/reader"
	"github.com/SlideRuleEarth/sliderule-sub005/record"
	"github.com/SlideRuleEarth/sliderule-sub005/region"
	"github.com/SlideRuleEarth/sliderule-sub005/search"
)

// loadResources performs the process-start auxiliary loads named in
// spec §3 ("resources loaded at process start"): the bathymetry mask,
// the NDWI raster, and the THU/TVU coefficient tables. All four are
// optional; a flag left empty leaves the corresponding field zero and
// atl03.Worker runs without that refinement. No Kd_490 grid is loaded
// here, so ATL03 runs sample Kd as 0.
func loadResources(cCtx *cli.Context) (reader.Resources, error) {
	var res reader.Resources
	res.ATL03.Projector = beam.SimpleTransverseMercator{}

	if p := cCtx.String("bathy-mask"); p != "" {
		m, err := mask.LoadBathyMask(p)
		if err != nil {
			return res, fmt.Errorf("loading bathy mask: %w", err)
		}
		res.ATL03.BathyMask = m
	}

	if p := cCtx.String("ndwi-raster"); p != "" {
		s, err := mask.NewGodalNDWISampler(p)
		if err != nil {
			return res, fmt.Errorf("loading NDWI raster: %w", err)
		}
		res.ATL03.NDWI = s
	}

	if p := cCtx.String("thu-table"); p != "" {
		f, err := os.Open(p)
		if err != nil {
			return res, fmt.Errorf("opening THU table: %w", err)
		}
		defer f.Close()
		t, err := oceaneyes.LoadTable(f, oceaneyes.DimensionTHU)
		if err != nil {
			return res, fmt.Errorf("loading THU table: %w", err)
		}
		res.ATL03.Tables.THU = t
	}

	if p := cCtx.String("tvu-table"); p != "" {
		f, err := os.Open(p)
		if err != nil {
			return res, fmt.Errorf("opening TVU table: %w", err)
		}
		defer f.Close()
		t, err := oceaneyes.LoadTable(f, oceaneyes.DimensionTVU)
		if err != nil {
			return res, fmt.Errorf("loading TVU table: %w", err)
		}
		res.ATL03.Tables.TVU = t
	}

	return res, nil
}

// newPublisher opens the TileDB-backed Publisher at outURI, named
// after the granule file the way the teacher derives its per-GSF
// group URI in convert_gsf.
func newPublisher(ctx *tiledb.Context, granuleURI, outdirURI string) (*record.TileDBPublisher, string, error) {
	dir, file := filepath.Split(granuleURI)
	if outdirURI == "" {
		outdirURI = dir
	}
	outURI := filepath.Join(outdirURI, file+".tiledb")
	pub, err := record.NewTileDBArray(ctx, outURI)
	return pub, outURI, err
}

// newFetchClient constructs the chunked-variable reader for one
// granule. The production HDF5-over-object-store implementation of
// fetch.Client is out of this repository's scope (see package fetch's
// doc comment); subset/subset-trawl/serve get an empty in-memory
// double. Nothing seeds it, so reader.Run fails at the first variable
// read (the ICESat-2 orientation or a GEDI beam's variables) and no
// records are produced.
func newFetchClient(granuleURI string) fetch.Client {
	return fetch.NewMemory()
}

func subsetOne(ctx context.Context, tdbCtx *tiledb.Context, cCtx *cli.Context, granuleURI string) error {
	runID := uuid.New()
	log.Printf("[%s] subsetting %s", runID, granuleURI)

	res, err := loadResources(cCtx)
	if err != nil {
		return err
	}

	pub, outURI, err := newPublisher(tdbCtx, granuleURI, cCtx.String("outdir-uri"))
	if err != nil {
		return fmt.Errorf("creating tiledb array: %w", err)
	}
	defer pub.Close()

	client := newFetchClient(granuleURI)
	params := config.DefaultParameters()

	var sel region.Selector = region.NoConstraint{}

	err = reader.Run(ctx, client, filepath.Base(granuleURI), sel, params, res, pub)
	if err != nil {
		return fmt.Errorf("[%s] %s: %w", runID, granuleURI, err)
	}

	log.Printf("[%s] finished %s -> %s", runID, granuleURI, outURI)
	return nil
}

func subsetTrawl(ctx context.Context, tdbCtx *tiledb.Context, cCtx *cli.Context) error {
	uri := cCtx.String("uri")
	configURI := cCtx.String("config-uri")

	log.Println("searching uri:", uri)
	items, err := search.Find(uri, configURI)
	if err != nil {
		return err
	}
	log.Println("granules to process:", len(items))

	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))
	defer pool.StopAndWait()

	for _, name := range items {
		granuleURI := name
		pool.Submit(func() {
			if err := subsetOne(ctx, tdbCtx, cCtx, granuleURI); err != nil {
				log.Println("error:", err)
			}
		})
	}

	return nil
}

func newTileDBContext(configURI string) (*tiledb.Context, error) {
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

	return tiledb.NewContext(cfg)
}

var resourceFlags = []cli.Flag{
	&cli.StringFlag{Name: "bathy-mask", Usage: "Pathname to the ATL24 bathymetry-mask GeoTIFF."},
	&cli.StringFlag{Name: "ndwi-raster", Usage: "Pathname to an NDWI/DEM-style auxiliary raster."},
	&cli.StringFlag{Name: "thu-table", Usage: "Pathname to the THU coefficient CSV table."},
	&cli.StringFlag{Name: "tvu-table", Usage: "Pathname to the TVU coefficient CSV table."},
	&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file."},
	&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
}

func main() {
	// Registers every GDAL raster/vector driver once, as mask.Raster
	// and mask.GodalNDWISampler assume at process start.
	godal.RegisterAll()

	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:  "subset",
				Usage: "Subset a single granule into a TileDB photon array.",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "granule-uri", Required: true, Usage: "URI or pathname to an ATL0x/GEDI granule."},
				}, resourceFlags...),
				Action: func(cCtx *cli.Context) error {
					tdbCtx, err := newTileDBContext(cCtx.String("config-uri"))
					if err != nil {
						return err
					}
					defer tdbCtx.Free()
					return subsetOne(cCtx.Context, tdbCtx, cCtx, cCtx.String("granule-uri"))
				},
			},
			{
				Name:  "subset-trawl",
				Usage: "Discover and subset every granule under a directory or bucket prefix.",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "uri", Required: true, Usage: "URI or pathname to a directory containing granule files."},
				}, resourceFlags...),
				Action: func(cCtx *cli.Context) error {
					tdbCtx, err := newTileDBContext(cCtx.String("config-uri"))
					if err != nil {
						return err
					}
					defer tdbCtx.Free()
					return subsetTrawl(cCtx.Context, tdbCtx, cCtx)
				},
			},
			{
				Name:  "serve",
				Usage: "Run a single-node RPC front door serving SubsetGranule calls.",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "listen", Value: ":9091", Usage: "Listen address for the gRPC front door."},
				}, resourceFlags...),
				Action: func(cCtx *cli.Context) error {
					return serve(cCtx)
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
