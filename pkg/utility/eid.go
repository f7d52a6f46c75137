package utility

import (
	"sync"

	"github.com/google/uuid"
)

type ExecutionID = uuid.UUID

var (
	executionID     ExecutionID
	executionIDOnce sync.Once
	executionIDMu   sync.RWMutex
)

// GetExecutionID identifies one engine run. The feed stamps every outbound
// frame with it so a consumer can detect restarts.
func GetExecutionID() ExecutionID {
	executionIDOnce.Do(func() {
		executionID = uuid.Must(uuid.NewV7())
	})

	executionIDMu.RLock()
	defer executionIDMu.RUnlock()
	return executionID
}

func ResetExecutionID() ExecutionID {
	executionIDMu.Lock()
	defer executionIDMu.Unlock()

	executionID = uuid.Must(uuid.NewV7())
	return executionID
}
