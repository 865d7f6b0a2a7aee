package grpc

import (
	"context"
	"encoding/json"

	"github.com/Raisondetr3/todo-service/internal/errors"
	"github.com/Raisondetr3/todo-service/internal/model"
	"github.com/Raisondetr3/todo-service/internal/validation"
	"github.com/Raisondetr3/todo-service/pkg/dto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type updateTaskMessage struct {
	ID *int64 `json:"id" validate:"required"`
	dto.UpdateTaskRequest
}

func (s *GRPCServer) ListTasks(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	tasks, err := s.taskService.ListAll(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return model.TasksToProto(tasks), nil
}

func (s *GRPCServer) SearchTasks(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	tasks, err := s.taskService.SearchByKeyword(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return model.TasksToProto(tasks), nil
}

func (s *GRPCServer) GetTask(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	task, err := s.taskService.Get(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return model.TaskToProto(task), nil
}

func (s *GRPCServer) CreateTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var msg dto.CreateTaskRequest
	if err := decodeStruct(req, &msg); err != nil {
		return nil, toStatus(err)
	}

	task, err := s.taskService.Create(ctx, model.NewTask(msg.Title, msg.Description))
	if err != nil {
		return nil, toStatus(err)
	}
	return model.TaskToProto(task), nil
}

func (s *GRPCServer) UpdateTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var msg updateTaskMessage
	if err := decodeStruct(req, &msg); err != nil {
		return nil, toStatus(err)
	}

	task, err := s.taskService.Update(ctx, *msg.ID, &model.Task{
		Title:       msg.Title,
		Description: msg.Description,
		Completed:   *msg.Completed,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return model.TaskToProto(task), nil
}

func (s *GRPCServer) ToggleTask(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	task, err := s.taskService.ToggleCompletion(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return model.TaskToProto(task), nil
}

func (s *GRPCServer) DeleteTask(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	if err := s.taskService.Delete(ctx, req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) GetStats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	stats, err := s.taskService.Stats(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return model.StatsToProto(stats), nil
}

// decodeStruct maps a Struct payload onto dst through its JSON form and
// applies the same validation rules as the HTTP API.
func decodeStruct(req *structpb.Struct, dst any) error {
	raw, err := req.MarshalJSON()
	if err != nil {
		return errors.BadRequest("Malformed request payload")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.BadRequest("Malformed request payload")
	}
	if fields := validation.Struct(dst); fields != nil {
		return errors.Validation(fields)
	}
	return nil
}

func toStatus(err error) error {
	return errors.As(err).ToGRPCStatus()
}
