package task

import "encoding/json"

// Task is a unit of work carried on a redis stream named after its type.
type Task interface {
	TaskType() string
	TaskValue() ([]byte, error)
}

// DefaultTaskValue provides a common implementation for TaskValue
func DefaultTaskValue(task interface{}) ([]byte, error) {
	return json.Marshal(task)
}

// UnmarshalTask decodes the task_data field of a stream message.
func UnmarshalTask[T any](data []byte) (*T, error) {
	t := new(T)
	if err := json.Unmarshal(data, t); err != nil {
		return nil, err
	}
	return t, nil
}
