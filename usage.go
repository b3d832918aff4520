package promptkeep

import (
	"context"

	"github.com/promptkeep/promptkeep/quota"
)

// StorageUsage reports how much of the backing store's capacity is in use.
type StorageUsage struct {
	Used    int64   `json:"used"`
	Total   int64   `json:"total"`
	Percent float64 `json:"percent"`
}

// StorageUsageWithWarnings adds the advisory band and a display message.
type StorageUsageWithWarnings struct {
	StorageUsage
	Level   quota.UsageLevel `json:"level"`
	Warning string           `json:"warning,omitempty"`
}

// GetStorageUsage reports current usage against total quota.
func (m *Manager) GetStorageUsage(ctx context.Context) (StorageUsage, error) {
	used, err := m.store.BytesInUse(ctx)
	if err != nil {
		return StorageUsage{}, normalizeErr(err, "failed to query storage usage")
	}
	total := m.store.QuotaBytes()
	percent := 0.0
	if total > 0 {
		percent = float64(used) / float64(total) * 100
	}
	return StorageUsage{Used: used, Total: total, Percent: percent}, nil
}

// GetStorageUsageWithWarnings reports usage plus its advisory band. The
// band is informational; it never blocks writes on its own.
func (m *Manager) GetStorageUsageWithWarnings(ctx context.Context) (StorageUsageWithWarnings, error) {
	usage, err := m.GetStorageUsage(ctx)
	if err != nil {
		return StorageUsageWithWarnings{}, err
	}
	level := quota.Level(usage.Percent)
	return StorageUsageWithWarnings{
		StorageUsage: usage,
		Level:        level,
		Warning:      usageWarning(level),
	}, nil
}

func usageWarning(level quota.UsageLevel) string {
	switch level {
	case quota.LevelWarning:
		return "Storage is filling up. Consider exporting and pruning old prompts."
	case quota.LevelCritical:
		return "Storage is almost full. Export a backup and delete unused prompts."
	case quota.LevelDanger:
		return "Storage is nearly exhausted. New prompts may be rejected."
	default:
		return ""
	}
}
