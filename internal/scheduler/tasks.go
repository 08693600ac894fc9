package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskResetDoneTasks = "tasks.reset"

const TaskRefreshSweep = "views.refresh.sweep"

type ResetDoneTasksPayload struct {
	Reason string `json:"reason"`
}

type RefreshSweepPayload struct {
	RequestedAt string `json:"requestedAt"`
}

func NewResetDoneTasksTask(payload ResetDoneTasksPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskResetDoneTasks, data), nil
}

func ParseResetDoneTasksPayload(task *asynq.Task) (ResetDoneTasksPayload, error) {
	var payload ResetDoneTasksPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ResetDoneTasksPayload{}, err
	}
	return payload, nil
}

func NewRefreshSweepTask(payload RefreshSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRefreshSweep, data), nil
}

func ParseRefreshSweepPayload(task *asynq.Task) (RefreshSweepPayload, error) {
	var payload RefreshSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RefreshSweepPayload{}, err
	}
	return payload, nil
}
