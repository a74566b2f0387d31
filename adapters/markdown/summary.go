package markdown

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"semsynth/domain/params"
	"semsynth/domain/report"
)

// FormatEffect renders one effect as "β = 0.123*, 95% CI [0.045, 0.201]".
// The asterisk marks an interval that excludes zero.
func FormatEffect(est, ciLower, ciUpper float64, sig bool) string {
	marker := ""
	if sig {
		marker = "*"
	}
	return fmt.Sprintf("β = %.3f%s, 95%% CI [%.3f, %.3f]", est, marker, ciLower, ciUpper)
}

// SummaryInput selects what the plain-language summary covers.
type SummaryInput struct {
	Title       string
	GeneratedAt time.Time
	Bootstrap   report.Bootstrap
	Effects     []params.EffectRecord
	DoseCurves  []params.DoseCurve
	Contrasts   []report.GroupContrast
}

// BuildSummary renders the plain-language findings document as Markdown.
// Wording follows the magnitude tiers: the numbers carry the detail, the
// prose stays accessible to non-technical readers.
func BuildSummary(in SummaryInput) []byte {
	var b strings.Builder

	title := in.Title
	if title == "" {
		title = "Plain Language Summary of Findings"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if !in.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "*Generated: %s*\n\n", in.GeneratedAt.Format("January 2, 2006"))
	}
	if in.Bootstrap.NReplicates > 0 {
		fmt.Fprintf(&b, "*Analysis: bootstrap replicates = %d, CI type = %s*\n\n",
			in.Bootstrap.NReplicates, in.Bootstrap.CIType)
	}

	if len(in.Effects) > 0 {
		b.WriteString("## Key Findings\n\n")
		for _, e := range in.Effects {
			fmt.Fprintf(&b, "- **%s**: %s — a %s %s effect\n",
				e.Label,
				FormatEffect(e.Estimate, e.CILower, e.CIUpper, e.Significant),
				e.Magnitude, directionWord(e.Direction))
		}
		b.WriteString("\n")
	}

	if len(in.DoseCurves) > 0 {
		b.WriteString("## Dose-Conditional Effects\n\n")
		b.WriteString("Effects below are linear extrapolations of the fitted main and " +
			"moderation coefficients across the credit-dose grid. Interval widths are " +
			"heuristically widened away from the threshold; they are not refitted " +
			"prediction intervals.\n\n")
		for _, c := range in.DoseCurves {
			if !c.Available() {
				fmt.Fprintf(&b, "- **%s**: not derivable, missing %s\n",
					c.Outcome, strings.Join(c.Missing, ", "))
				continue
			}
			if len(c.Points) == 0 {
				continue
			}
			first, last := c.Points[0], c.Points[len(c.Points)-1]
			fmt.Fprintf(&b, "- **%s**: effect ranges from %.3f at %g credits to %.3f at %g credits\n",
				c.Outcome, first.Effect, first.Dose, last.Effect, last.Dose)
		}
		b.WriteString("\n")
	}

	if len(in.Contrasts) > 0 {
		b.WriteString("## Group Differences\n\n")
		for _, c := range in.Contrasts {
			fmt.Fprintf(&b, "- **%s** by %s: d = %.2f (%s, %s)\n",
				c.Outcome, c.Group, c.CohensD, c.Magnitude, directionWord(c.Direction))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Technical Notes\n\n")
	b.WriteString("*Estimates come from a weighted structural model fit upstream; this " +
		"summary only restates extracted coefficients and derived curves. Statistical " +
		"significance reflects bootstrap confidence intervals that exclude zero.*\n")

	return []byte(b.String())
}

// RenderHTML converts the Markdown summary into a standalone HTML fragment
// for the report server.
func RenderHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse(md)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

func directionWord(direction string) string {
	switch direction {
	case "positive":
		return "positive"
	case "negative":
		return "negative"
	default:
		return "null"
	}
}
