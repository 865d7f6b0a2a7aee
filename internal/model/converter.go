package model

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

func TaskToProto(task *Task) *structpb.Struct {
	if task == nil {
		return nil
	}

	description := structpb.NewNullValue()
	if task.Description != nil {
		description = structpb.NewStringValue(*task.Description)
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"id":          structpb.NewNumberValue(float64(task.ID)),
			"title":       structpb.NewStringValue(task.Title),
			"description": description,
			"completed":   structpb.NewBoolValue(task.Completed),
			"createdAt":   structpb.NewStringValue(task.CreatedAt.UTC().Format(time.RFC3339Nano)),
			"updatedAt":   structpb.NewStringValue(task.UpdatedAt.UTC().Format(time.RFC3339Nano)),
		},
	}
}

func TasksToProto(tasks []*Task) *structpb.ListValue {
	values := make([]*structpb.Value, len(tasks))
	for i, task := range tasks {
		values[i] = structpb.NewStructValue(TaskToProto(task))
	}
	return &structpb.ListValue{Values: values}
}

func StatsToProto(stats Stats) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"completed": structpb.NewNumberValue(float64(stats.Completed)),
			"pending":   structpb.NewNumberValue(float64(stats.Pending)),
			"total":     structpb.NewNumberValue(float64(stats.Total())),
		},
	}
}
