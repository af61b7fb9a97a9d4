package driven

import "github.com/custodia-labs/valvex/internal/core/domain"

// ProgressReporter receives pipeline state transitions and progress events.
// Calls are fire-and-forget and made from the goroutine running the pipeline.
type ProgressReporter interface {
	// OnState is called on every state transition.
	OnState(state domain.RunState)

	// OnProgress is called after each chunk completes.
	OnProgress(event domain.ProgressEvent)
}
