package middleware

import (
	"context"
	"testing"

	"github.com/Raisondetr3/todo-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var testInfo = &grpc.UnaryServerInfo{FullMethod: "/todo.v1.TaskService/GetTask"}

func TestPanicRecoveryUnaryInterceptor(t *testing.T) {
	resp, err := PanicRecoveryUnaryInterceptor(context.Background(), nil, testInfo,
		func(context.Context, any) (any, error) { panic("boom") })

	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestRequestIDUnaryInterceptor_UsesIncomingID(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "abc-123"))

	var seen string
	_, err := RequestIDUnaryInterceptor(ctx, nil, testInfo, func(ctx context.Context, _ any) (any, error) {
		seen = logger.RequestIDFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "abc-123", seen)
}

func TestRequestIDUnaryInterceptor_GeneratesID(t *testing.T) {
	var seen string
	_, err := RequestIDUnaryInterceptor(context.Background(), nil, testInfo, func(ctx context.Context, _ any) (any, error) {
		seen = logger.RequestIDFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 36)
}

func TestChainUnaryInterceptors_Order(t *testing.T) {
	var order []string
	record := func(name string) grpc.UnaryServerInterceptor {
		return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			order = append(order, name)
			return handler(ctx, req)
		}
	}

	chain := ChainUnaryInterceptors(record("first"), record("second"))
	_, err := chain(context.Background(), nil, testInfo, func(context.Context, any) (any, error) {
		order = append(order, "handler")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}
