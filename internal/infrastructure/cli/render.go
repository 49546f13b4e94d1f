package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/backloghq/groom/pkg/domain/backlog"
	"github.com/backloghq/groom/pkg/domain/workflow"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	idStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	approvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	rejectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
)

func renderStatus(status workflow.Status) string {
	switch status {
	case workflow.StatusApproved, workflow.StatusCompleted:
		return approvedStyle.Render(status.String())
	case workflow.StatusRejected, workflow.StatusError:
		return rejectedStyle.Render(status.String())
	case workflow.StatusAwaitingApproval:
		return pendingStyle.Render(status.String())
	default:
		return status.String()
	}
}

func renderPlan(plan *backlog.ImpactPlan) string {
	if plan.IsEmpty() {
		return dimStyle.Render("(no changes proposed)")
	}

	var b strings.Builder
	if len(plan.NewItems) > 0 {
		b.WriteString(titleStyle.Render("New items"))
		b.WriteString("\n")
		for _, item := range plan.NewItems {
			fmt.Fprintf(&b, "  + %s [%s] %s\n", idStyle.Render(item.ID), item.Type, item.Title)
			if item.ParentID != "" {
				fmt.Fprintf(&b, "      %s\n", dimStyle.Render("parent: "+item.ParentID))
			}
		}
	}
	if len(plan.ModifiedItems) > 0 {
		b.WriteString(titleStyle.Render("Modified items"))
		b.WriteString("\n")
		for _, m := range plan.ModifiedItems {
			fmt.Fprintf(&b, "  ~ %s [%s] %s\n", idStyle.Render(m.After.ID), m.After.Type, m.After.Title)
			if m.Before.Description != m.After.Description {
				fmt.Fprintf(&b, "      %s\n", dimStyle.Render("- "+m.Before.Description))
				fmt.Fprintf(&b, "      %s\n", "+ "+m.After.Description)
			}
		}
	}
	if len(plan.DeletedItems) > 0 {
		b.WriteString(titleStyle.Render("Deleted items"))
		b.WriteString("\n")
		for _, id := range plan.DeletedItems {
			fmt.Fprintf(&b, "  - %s\n", idStyle.Render(id))
		}
	}
	return b.String()
}

func renderItems(items []backlog.WorkItem) string {
	var b strings.Builder
	for _, item := range items {
		indent := ""
		if item.ParentID != "" {
			indent = "  "
		}
		fmt.Fprintf(&b, "%s%s [%s] %s %s\n",
			indent, idStyle.Render(item.ID), item.Type, item.Title,
			dimStyle.Render("("+item.ValidationStatus.String()+")"))
	}
	return b.String()
}
