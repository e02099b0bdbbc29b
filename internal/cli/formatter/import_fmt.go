package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/taxonomy/internal/service"
)

// RenderPlan renders the dry-run summary of an import: row counts, skipped
// rows and the locations that confirming would create.
func RenderPlan(plan *service.PlanResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "  %s  %d\n", Dim("ROWS   "), plan.Total)
	fmt.Fprintf(&b, "  %s  %d\n", Dim("VALID  "), plan.Valid)
	if skipped := plan.Total - plan.Valid; skipped > 0 {
		fmt.Fprintf(&b, "  %s  %s\n", Dim("SKIPPED"), StyleYellow.Render(fmt.Sprintf("%d", skipped)))
	}
	if !plan.HeaderFound {
		b.WriteString("\n" + Warn("no known header found, first row used as header") + "\n")
	}

	if len(plan.Missing) > 0 {
		govs, dists := plan.Missing.Counts()
		b.WriteString("\n")
		b.WriteString(Header("New locations"))
		b.WriteString("\n")
		rows := make([][]string, 0, len(plan.Missing))
		for _, key := range plan.Missing.Governorates() {
			entry := plan.Missing[key]
			status := StyleGreen.Render("new")
			if entry.Exists {
				status = Dim("exists")
			}
			names := make([]string, 0, len(entry.Districts))
			for _, name := range entry.Districts {
				names = append(names, name)
			}
			sort.Strings(names)
			rows = append(rows, []string{entry.OriginalName, status, strings.Join(names, "، ")})
		}
		b.WriteString(RenderTable([]string{"GOVERNORATE", "STATUS", "NEW DISTRICTS"}, rows))
		fmt.Fprintf(&b, "\n%s\n", Dim(fmt.Sprintf("%s and %s will be created",
			Plural(govs, "governorate", "governorates"), Plural(dists, "district", "districts"))))
	}

	if len(plan.Skipped) > 0 {
		b.WriteString("\n")
		b.WriteString(Header("Skipped rows"))
		b.WriteString("\n")
		const maxShown = 10
		for i, issue := range plan.Skipped {
			if i == maxShown {
				fmt.Fprintf(&b, "  %s\n", Dim(fmt.Sprintf("… and %d more", len(plan.Skipped)-maxShown)))
				break
			}
			fmt.Fprintf(&b, "  %s\n", Dim(issue.Reason))
		}
	}

	return RenderBox("Import plan", b.String())
}

// RenderOutcome renders the one-line result of a confirmed import. Each
// outcome has its own wording so partial failure never reads as success.
func RenderOutcome(res *service.ConfirmResult) string {
	created := fmt.Sprintf("%s, %s created",
		Plural(res.CreatedGovernorates, "governorate", "governorates"),
		Plural(res.CreatedDistricts, "district", "districts"))

	var b strings.Builder
	switch res.Outcome() {
	case service.OutcomeNothingImported:
		b.WriteString(Warn("Nothing imported: no valid rows"))
	case service.OutcomeImported:
		b.WriteString(Success(fmt.Sprintf("Imported %s", Plural(res.InsertedCount, "service point", "service points"))))
	case service.OutcomeImportedWithNewTaxonomy:
		b.WriteString(Success(fmt.Sprintf("Imported %s; %s",
			Plural(res.InsertedCount, "service point", "service points"), created)))
	case service.OutcomePartialFailure:
		b.WriteString(Fail(fmt.Sprintf("Partially imported: %d succeeded, %d failed in %s",
			res.InsertedCount, res.FailedCount, Plural(len(res.FailedChunks), "chunk", "chunks"))))
		if res.DroppedRows > 0 {
			fmt.Fprintf(&b, "\n  %s", Dim(fmt.Sprintf("%s could not be resolved to a district", Plural(res.DroppedRows, "row", "rows"))))
		}
		if res.FailedCreations > 0 {
			fmt.Fprintf(&b, "\n  %s", Dim(fmt.Sprintf("%s could not be created", Plural(res.FailedCreations, "location", "locations"))))
		}
		if res.CreatedGovernorates > 0 || res.CreatedDistricts > 0 {
			fmt.Fprintf(&b, "\n  %s", Dim(created))
		}
	}
	return b.String() + "\n"
}
