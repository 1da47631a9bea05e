package catalog

import (
	"sort"

	"github.com/starford/previewdeck/internal/models"
)

// Assemble turns the aggregator's accumulators into the final read model:
// versions within each project sorted most-recent-first, projects sorted by
// last update, also most-recent-first. Stable sorts keep encounter order on
// equal timestamps.
func Assemble(acc map[string]*models.Project) []models.Project {
	out := make([]models.Project, 0, len(acc))
	for _, proj := range acc {
		sort.SliceStable(proj.Versions, func(i, j int) bool {
			return proj.Versions[i].ParsedDate.After(proj.Versions[j].ParsedDate)
		})
		proj.LatestPreview = proj.Versions[0]
		proj.LastUpdated = proj.LatestPreview.ParsedDate
		out = append(out, *proj)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	return out
}
