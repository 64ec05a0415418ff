package charts

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/report"
)

// Component exposes a rendered chart as a templ component so it can be
// served through templ.Handler like any other view.
func Component(s *report.Section, format Format) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Render(s, format, w)
	})
}
