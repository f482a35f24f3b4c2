package server

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/invoice-extract/internal/common"
	"github.com/joseph-ayodele/invoice-extract/internal/entity"
	"github.com/joseph-ayodele/invoice-extract/internal/ingest"
	"github.com/joseph-ayodele/invoice-extract/internal/ocr"
	"github.com/joseph-ayodele/invoice-extract/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extract/internal/repository"
)

const (
	ServiceName     = "invoice.v1.ExtractionService"
	RequestIDHeader = "x-request-id"
)

// DocumentService runs extraction and stores documents.
type DocumentService interface {
	Extract(frags []ocr.Fragment) pipeline.Result
	ProcessDocument(ctx context.Context, filename string, frags []ocr.Fragment) (*entity.Invoice, error)
}

// ExtractionServiceServer is the gRPC surface. Messages are JSON-shaped
// google.protobuf.Struct values.
type ExtractionServiceServer interface {
	Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetInvoice(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListInvoices(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	IngestFile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	IngestDirectory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type ExtractionService struct {
	docs         DocumentService
	invoicesRepo repository.InvoiceRepository
	ingestor     ingest.Ingestor
	logger       *slog.Logger
}

func NewExtractionService(docs DocumentService, invoicesRepo repository.InvoiceRepository, ing ingest.Ingestor, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{
		docs:         docs,
		invoicesRepo: invoicesRepo,
		ingestor:     ing,
		logger:       logger,
	}
}

type structMethod func(ExtractionServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call structMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(ExtractionServiceServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*structpb.Struct))
		})
	}
}

// ExtractionServiceDesc describes the service for grpc.Server.RegisterService.
var ExtractionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExtractionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Extract", Handler: unaryHandler("Extract", ExtractionServiceServer.Extract)},
		{MethodName: "GetInvoice", Handler: unaryHandler("GetInvoice", ExtractionServiceServer.GetInvoice)},
		{MethodName: "ListInvoices", Handler: unaryHandler("ListInvoices", ExtractionServiceServer.ListInvoices)},
		{MethodName: "IngestFile", Handler: unaryHandler("IngestFile", ExtractionServiceServer.IngestFile)},
		{MethodName: "IngestDirectory", Handler: unaryHandler("IngestDirectory", ExtractionServiceServer.IngestDirectory)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "invoice/v1/extraction.proto",
}

func RegisterExtractionServiceServer(s grpc.ServiceRegistrar, srv ExtractionServiceServer) {
	s.RegisterService(&ExtractionServiceDesc, srv)
}

// ExtractionClient calls ExtractionService over a client connection.
type ExtractionClient struct {
	cc grpc.ClientConnInterface
}

func NewExtractionClient(cc grpc.ClientConnInterface) *ExtractionClient {
	return &ExtractionClient{cc: cc}
}

// Call invokes method with a JSON-shaped request.
func (c *ExtractionClient) Call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (map[string]any, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, common.InvalidArgumentErrorf("request: %v", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

// UnaryRequestID tags each call with a request ID taken from the
// x-request-id metadata or minted, and echoes it in the response header.
func UnaryRequestID(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var incoming string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDHeader); len(v) > 0 {
				incoming = v[0]
			}
		}
		ctx, id := common.EnsureRequestID(ctx, incoming)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))

		resp, err := handler(ctx, req)
		if err != nil {
			logger.Warn("grpc.call.failed", "method", info.FullMethod, "request_id", id, "error", err)
		} else {
			logger.Debug("grpc.call.ok", "method", info.FullMethod, "request_id", id)
		}
		return resp, err
	}
}
