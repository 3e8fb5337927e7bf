package task

const RefreshRetryTaskType = "RefreshRetryTask"

type RefreshRetryTask struct {
	Reason     string `json:"reason"`      // Reason of the original refresh request
	RetryCount int    `json:"retry_count"` // Number of attempts so far
	Error      string `json:"error"`       // Error message from the last failure
}

func (t *RefreshRetryTask) TaskType() string {
	return RefreshRetryTaskType
}

func (t *RefreshRetryTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
