package main

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/SlideRuleEarth/sliderule-sub005/config"
	"github.com/SlideRuleEarth/sliderule-sub005/reader"
	"github.com/SlideRuleEarth/sliderule-sub005/record"
	"github.com/SlideRuleEarth/sliderule-sub005/region"
)

// serviceName is the front door's single exposed service: "one
// process, one listener, no proxying or sharding" per spec's
// non-goal on cluster distribution.
const serviceName = "subsetter.Subsetter"

// jsonCodec lets this RPC surface skip protoc-generated message
// types: google.golang.org/grpc's encoding.Codec extension point
// accepts any Marshal/Unmarshal pair, so SubsetGranuleRequest/Response
// below are plain Go structs rather than generated protobuf messages.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return "json" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// SubsetGranuleRequest is the wire request for the single exposed
// RPC.
type SubsetGranuleRequest struct {
	GranuleURI string
}

// SubsetGranuleResponse reports where the output array landed, or a
// non-empty Err on failure. Counters has the shape of spec §5's
// read/filtered/sent/dropped/retried tallies, but SubsetGranule does
// not fill it: reader.Run does not return them, so it is always zero.
type SubsetGranuleResponse struct {
	OutputURI string
	Counters  record.Counters
	Err       string
}

// subsetService holds the resources loaded once at server start
// (spec §3's "resources loaded at process start"), shared by every
// request rather than reloaded per call.
type subsetService struct {
	tdbCtx    *tiledb.Context
	resources reader.Resources
	outdirURI string
}

func (s *subsetService) SubsetGranule(ctx context.Context, req *SubsetGranuleRequest) (*SubsetGranuleResponse, error) {
	runID := uuid.New()
	log.Printf("[%s] serve: subsetting %s", runID, req.GranuleURI)

	pub, outURI, err := newPublisher(s.tdbCtx, req.GranuleURI, s.outdirURI)
	if err != nil {
		return &SubsetGranuleResponse{Err: err.Error()}, nil
	}
	defer pub.Close()

	client := newFetchClient(req.GranuleURI)

	err = reader.Run(ctx, client, filepath.Base(req.GranuleURI), region.NoConstraint{}, config.DefaultParameters(), s.resources, pub)
	if err != nil {
		return &SubsetGranuleResponse{Err: err.Error()}, nil
	}

	return &SubsetGranuleResponse{OutputURI: outURI}, nil
}

func subsetGranuleHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SubsetGranuleRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	svc := srv.(*subsetService)
	if interceptor == nil {
		return svc.SubsetGranule(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/SubsetGranule"}
	handler := func(ctx context.Context, req any) (any, error) {
		return svc.SubsetGranule(ctx, req.(*SubsetGranuleRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var subsetterServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SubsetGranule", Handler: subsetGranuleHandler},
	},
	Metadata: "subsetter.go",
}

func serve(cCtx *cli.Context) error {
	tdbCtx, err := newTileDBContext(cCtx.String("config-uri"))
	if err != nil {
		return err
	}
	defer tdbCtx.Free()

	res, err := loadResources(cCtx)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", cCtx.String("listen"))
	if err != nil {
		return err
	}

	grpcServer := grpc.NewServer()

	healthSrv := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)

	svc := &subsetService{tdbCtx: tdbCtx, resources: res, outdirURI: cCtx.String("outdir-uri")}
	grpcServer.RegisterService(&subsetterServiceDesc, svc)

	log.Println("subsetter serve: listening on", cCtx.String("listen"))
	return grpcServer.Serve(lis)
}
