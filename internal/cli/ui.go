package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/lens/pkg/catalog"
	"github.com/matzehuels/lens/pkg/graph"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorSky   = lipgloss.Color("39")  // Focal node, primary actions
	colorGreen = lipgloss.Color("35")  // Success, certified
	colorAmber = lipgloss.Color("214") // Warnings, dashboards
	colorRed   = lipgloss.Color("167") // Errors
	colorBlue  = lipgloss.Color("75")  // Commands
	colorWhite = lipgloss.Color("255") // Values
	colorGray  = lipgloss.Color("245") // Secondary text
	colorDim   = lipgloss.Color("240") // Muted text
	colorSlate = lipgloss.Color("103") // Pipelines
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorSky)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorSky)
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorAmber)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorSky)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// out is where user-facing output goes. Tests swap it for a buffer.
var out io.Writer = os.Stdout

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(out, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(out, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(out, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(out, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented dim line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(out, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(out, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(out, styleKey.Render(key)+" "+StyleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Fprintln(out, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(out)
}

// printStats prints graph statistics on a single line.
func printStats(nodeCount, edgeCount int, cached bool) {
	parts := []string{fmt.Sprintf("%d nodes", nodeCount), fmt.Sprintf("%d edges", edgeCount)}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Fprintln(out, line+StyleDim.Render(" · ")+statusStyle.Render(status))
}

// =============================================================================
// Tables
// =============================================================================

// printAssetTable renders assets as a rounded table.
func printAssetTable(assets []catalog.Asset) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, len(assets))
	for i, a := range assets {
		rows[i] = []string{a.ID, a.FriendlyName, a.TechnicalName, a.Domain, a.Type, a.Certification}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Technical name", "Domain", "Type", "Certification").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col == 5 && row < len(assets) && strings.EqualFold(assets[row].Certification, "Certified") {
				return base.Foreground(colorGreen)
			}
			if col == 0 {
				return base.Foreground(colorSky)
			}
			return base
		})
	fmt.Fprintln(out, t.Render())
}

// printEntries prints one side of a lineage report, indented by depth.
func printEntries(title string, entries []graph.Entry) {
	fmt.Fprintln(out, StyleTitle.Render(fmt.Sprintf("%s (%d)", title, len(entries))))
	if len(entries) == 0 {
		printDetail("none")
		return
	}
	for _, e := range entries {
		indent := strings.Repeat("  ", e.Depth)
		kind := kindStyle(e.Node.Type).Render(e.Node.Type)
		fmt.Fprintf(out, "%s%s %s %s\n", indent, StyleNumber.Render(fmt.Sprint(e.Depth)), StyleValue.Render(e.Node.Name), kind)
	}
}

func kindStyle(kind string) lipgloss.Style {
	switch strings.ToLower(kind) {
	case "dashboard":
		return lipgloss.NewStyle().Foreground(colorAmber)
	case "pipeline":
		return lipgloss.NewStyle().Foreground(colorSlate)
	default:
		return StyleDim
	}
}
