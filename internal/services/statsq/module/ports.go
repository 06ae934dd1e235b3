package module

import dom "toolgate/internal/services/statsq/domain"

// Ports exposed by the statsq worker module
type Ports struct {
	Worker   dom.WorkerPort
	Enqueuer dom.EnqueuePort
}
