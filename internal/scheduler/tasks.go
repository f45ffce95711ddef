package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskFollowUpSweep = "followups.sweep"

// Sweep windows.
const (
	WindowToday    = "today"
	WindowTomorrow = "tomorrow"
)

type FollowUpSweepPayload struct {
	Window string `json:"window"`
}

func NewFollowUpSweepTask(payload FollowUpSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpSweep, data), nil
}

func ParseFollowUpSweepPayload(task *asynq.Task) (FollowUpSweepPayload, error) {
	var payload FollowUpSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpSweepPayload{}, err
	}
	return payload, nil
}
