package middleware

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/Raisondetr3/todo-service/internal/metrics"
	"github.com/Raisondetr3/todo-service/pkg/logger"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const requestIDMetadataKey = "x-request-id"

func LoggingUnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	duration := time.Since(start)

	logger.LogGRPCRequest(ctx, info.FullMethod, logger.RequestIDFromContext(ctx), duration, err)
	return resp, err
}

// RequestIDUnaryInterceptor propagates the caller's x-request-id or assigns a
// new one, and echoes it back in the response header.
func RequestIDUnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	requestID := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(requestIDMetadataKey); len(values) > 0 {
			requestID = values[0]
		}
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx = logger.ContextWithRequestID(ctx, requestID)

	header := metadata.New(map[string]string{requestIDMetadataKey: requestID})
	if err := grpc.SetHeader(ctx, header); err != nil {
		slog.DebugContext(ctx, "Failed to set request id header", slog.String("error", err.Error()))
	}

	return handler(ctx, req)
}

func PanicRecoveryUnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithRequestID(logger.RequestIDFromContext(ctx)).ErrorContext(ctx, "Panic recovered in gRPC handler",
				slog.String("method", info.FullMethod),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			err = status.Error(codes.Internal, "An unexpected error occurred")
		}
	}()
	return handler(ctx, req)
}

func MetricsUnaryInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		m.ObserveGRPC(info.FullMethod, status.Code(err), time.Since(start))
		return resp, err
	}
}

func ChainUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			interceptor := interceptors[i]
			currentHandler := chain
			chain = func(currentCtx context.Context, currentReq any) (any, error) {
				return interceptor(currentCtx, currentReq, info, currentHandler)
			}
		}
		return chain(ctx, req)
	}
}
