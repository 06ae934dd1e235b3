package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	// Check evaluates the lifetime limit without mutating the ledger
	// beyond lazy creation and soft metadata refresh; it fails open
	Check(ctx context.Context, in CheckInput) (CheckResult, error)

	// Use records one tool use; it is the sole path that increments
	// the lifetime counter and its write errors surface to the caller
	Use(ctx context.Context, in UseInput) (UseResult, error)

	// Convert attributes a signup to the ledger behind the signals
	// missing ledger is a silent no-op, repeats are idempotent
	Convert(ctx context.Context, in ConvertInput) (ConvertResult, error)

	// Summary returns the admin view of one ledger
	Summary(ctx context.Context, in SummaryInput) (Summary, error)
}
