package stats

import "github.com/valentinclaes/claude-wrapped/internal/export"

// ProjectSummary is the per-project row written to projects.json.
type ProjectSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	DocsCount   int    `json:"docs_count"`
}

// AnalyzeProjects summarizes projects in input order. Timestamps are cut to
// their date part.
func AnalyzeProjects(projects []export.Project) []ProjectSummary {
	out := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, ProjectSummary{
			Name:        p.Name,
			Description: p.Description,
			CreatedAt:   datePart(p.CreatedAt),
			UpdatedAt:   datePart(p.UpdatedAt),
			DocsCount:   p.DocsCount,
		})
	}
	return out
}

func datePart(ts string) string {
	if len(ts) < 10 {
		return ts
	}
	return ts[:10]
}
