package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// TaskServiceName is the fully qualified gRPC service name.
const TaskServiceName = "todo.v1.TaskService"

// TaskServiceServer is the server API of todo.v1.TaskService. Messages are
// protobuf well-known types, so no generated code is needed.
type TaskServiceServer interface {
	ListTasks(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	SearchTasks(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
	GetTask(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	CreateTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleTask(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	DeleteTask(context.Context, *wrapperspb.Int64Value) (*emptypb.Empty, error)
	GetStats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func RegisterTaskServiceServer(s grpc.ServiceRegistrar, srv TaskServiceServer) {
	s.RegisterService(&TaskServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodDesc.Handler.
func unaryHandler[Req any, Resp any](method string, newReq func() *Req, call func(TaskServiceServer, context.Context, *Req) (Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TaskServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + TaskServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TaskServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var TaskServiceDesc = grpc.ServiceDesc{
	ServiceName: TaskServiceName,
	HandlerType: (*TaskServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListTasks",
			Handler: unaryHandler("ListTasks", func() *emptypb.Empty { return new(emptypb.Empty) },
				func(s TaskServiceServer, ctx context.Context, in *emptypb.Empty) (*structpb.ListValue, error) {
					return s.ListTasks(ctx, in)
				}),
		},
		{
			MethodName: "SearchTasks",
			Handler: unaryHandler("SearchTasks", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
				func(s TaskServiceServer, ctx context.Context, in *wrapperspb.StringValue) (*structpb.ListValue, error) {
					return s.SearchTasks(ctx, in)
				}),
		},
		{
			MethodName: "GetTask",
			Handler: unaryHandler("GetTask", func() *wrapperspb.Int64Value { return new(wrapperspb.Int64Value) },
				func(s TaskServiceServer, ctx context.Context, in *wrapperspb.Int64Value) (*structpb.Struct, error) {
					return s.GetTask(ctx, in)
				}),
		},
		{
			MethodName: "CreateTask",
			Handler: unaryHandler("CreateTask", func() *structpb.Struct { return new(structpb.Struct) },
				func(s TaskServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return s.CreateTask(ctx, in)
				}),
		},
		{
			MethodName: "UpdateTask",
			Handler: unaryHandler("UpdateTask", func() *structpb.Struct { return new(structpb.Struct) },
				func(s TaskServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return s.UpdateTask(ctx, in)
				}),
		},
		{
			MethodName: "ToggleTask",
			Handler: unaryHandler("ToggleTask", func() *wrapperspb.Int64Value { return new(wrapperspb.Int64Value) },
				func(s TaskServiceServer, ctx context.Context, in *wrapperspb.Int64Value) (*structpb.Struct, error) {
					return s.ToggleTask(ctx, in)
				}),
		},
		{
			MethodName: "DeleteTask",
			Handler: unaryHandler("DeleteTask", func() *wrapperspb.Int64Value { return new(wrapperspb.Int64Value) },
				func(s TaskServiceServer, ctx context.Context, in *wrapperspb.Int64Value) (*emptypb.Empty, error) {
					return s.DeleteTask(ctx, in)
				}),
		},
		{
			MethodName: "GetStats",
			Handler: unaryHandler("GetStats", func() *emptypb.Empty { return new(emptypb.Empty) },
				func(s TaskServiceServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
					return s.GetStats(ctx, in)
				}),
		},
	},
	Streams: []grpc.StreamDesc{},
}

// TaskServiceClient is a thin client for todo.v1.TaskService.
type TaskServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTaskServiceClient(cc grpc.ClientConnInterface) *TaskServiceClient {
	return &TaskServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, "/"+TaskServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TaskServiceClient) ListTasks(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return invoke[structpb.ListValue](ctx, c.cc, "ListTasks", in, opts...)
}

func (c *TaskServiceClient) SearchTasks(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return invoke[structpb.ListValue](ctx, c.cc, "SearchTasks", in, opts...)
}

func (c *TaskServiceClient) GetTask(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "GetTask", in, opts...)
}

func (c *TaskServiceClient) CreateTask(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "CreateTask", in, opts...)
}

func (c *TaskServiceClient) UpdateTask(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "UpdateTask", in, opts...)
}

func (c *TaskServiceClient) ToggleTask(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "ToggleTask", in, opts...)
}

func (c *TaskServiceClient) DeleteTask(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "DeleteTask", in, opts...)
}

func (c *TaskServiceClient) GetStats(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "GetStats", in, opts...)
}
