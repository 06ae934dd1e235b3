package domain

const (
	// LifetimeLimit is the non-resetting ceiling on anonymous uses
	LifetimeLimit = 2

	// RecentFilesCap bounds the duplicate-detection window per ledger
	RecentFilesCap = 20

	// ToolHistoryCap bounds the analytics tool history per ledger
	// generous because history feeds reporting, tight enough to stop
	// a hot visitor from growing a row without bound
	ToolHistoryCap = 200
)

// CanProceed reports whether an anonymous visitor may run another tool
// authenticated users never reach this check
func CanProceed(lifetimeUses int) bool { return lifetimeUses < LifetimeLimit }

// AtLimit reports whether the count has reached the lifetime ceiling
func AtLimit(lifetimeUses int) bool { return lifetimeUses >= LifetimeLimit }

// IsDuplicate checks the bounded recent-file window for the same
// content-hash and tool pair
//
// The hit is advisory: callers decide whether it skips the limit
// increment, the check itself never blocks anything
func IsDuplicate(l *Ledger, contentHash, toolName string) bool {
	if l == nil || contentHash == "" {
		return false
	}
	for _, f := range l.RecentFiles {
		if f.ContentHash == contentHash && f.ToolName == toolName {
			return true
		}
	}
	return false
}
