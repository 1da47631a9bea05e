package catalog

import "github.com/starford/previewdeck/internal/models"

// Aggregate folds previews into per-project accumulators keyed by project
// name. Input order is irrelevant: every preview is appended to its project's
// version list and a running latest comparison picks the newest one.
//
// The latest comparison is strictly greater-than. Previews arrive from an
// unordered concurrent fan-in, so on equal timestamps the first preview seen
// keeps the latest slot.
func Aggregate(previews []models.Preview) map[string]*models.Project {
	acc := make(map[string]*models.Project)
	for _, p := range previews {
		proj, ok := acc[p.Project]
		if !ok {
			acc[p.Project] = &models.Project{
				Name:          p.Project,
				LatestPreview: p,
				Versions:      []models.Preview{p},
				LastUpdated:   p.ParsedDate,
			}
			continue
		}
		proj.Versions = append(proj.Versions, p)
		if p.ParsedDate.After(proj.LastUpdated) {
			proj.LatestPreview = p
			proj.LastUpdated = p.ParsedDate
		}
	}
	return acc
}
