package style

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/modkeeper/pkg/types"
)

// Renderer renders library listings for the terminal.
type Renderer interface {
	RenderMods(mods []*types.Mod) string
	RenderModpacks(packs []*types.Modpack) string
	RenderModpackTree(pack *types.Modpack) string
	RenderTable(header []string, rows [][]string) string
	RenderError(err error) string
}

// TerminalRenderer implements Renderer with pterm tables and trees. When
// plain is set no color is emitted.
type TerminalRenderer struct {
	plain bool
}

// NewTerminalRenderer creates a renderer. plain disables styling.
func NewTerminalRenderer(plain bool) *TerminalRenderer {
	return &TerminalRenderer{plain: plain}
}

// RenderMods renders one row per mod variant.
func (r *TerminalRenderer) RenderMods(mods []*types.Mod) string {
	if len(mods) == 0 {
		return r.muted("No mods installed")
	}
	rows := make([][]string, 0, len(mods))
	for _, m := range mods {
		state := types.FromBool(m.Active)
		rows = append(rows, []string{
			r.indicator(state),
			m.Name,
			r.version(m.Version.String()),
			m.FactorioVersion,
			m.DisplayTitle(),
		})
	}
	return r.RenderTable([]string{"", "Name", "Version", "Factorio", "Title"}, rows)
}

// RenderModpacks renders one row per modpack with its aggregate state.
func (r *TerminalRenderer) RenderModpacks(packs []*types.Modpack) string {
	if len(packs) == 0 {
		return r.muted("No modpacks defined")
	}
	rows := make([][]string, 0, len(packs))
	for _, p := range packs {
		rows = append(rows, []string{
			r.indicator(p.Active),
			p.Name,
			fmt.Sprintf("%d", len(p.References)),
			p.Active.String(),
		})
	}
	return r.RenderTable([]string{"", "Name", "Entries", "State"}, rows)
}

// RenderModpackTree renders pack and its nested modpacks as a tree.
func (r *TerminalRenderer) RenderModpackTree(pack *types.Modpack) string {
	title := r.title(pack.Name) + " " + r.indicator(pack.Active)
	if len(pack.References) == 0 {
		return title + "\n" + r.muted("  (empty)")
	}
	root := pterm.TreeNode{Children: r.children(pack)}
	out, err := pterm.DefaultTree.WithRoot(root).Srender()
	if err != nil {
		return title
	}
	return title + "\n" + strings.TrimRight(out, "\n")
}

func (r *TerminalRenderer) children(pack *types.Modpack) []pterm.TreeNode {
	nodes := make([]pterm.TreeNode, 0, len(pack.References))
	for _, ref := range pack.References {
		switch v := ref.(type) {
		case *types.ModReference:
			nodes = append(nodes, pterm.TreeNode{
				Text: fmt.Sprintf("%s %s %s", r.indicator(v.State()), v.Mod.Name,
					r.version(v.Mod.Version.String())),
			})
		case *types.ModpackReference:
			nodes = append(nodes, pterm.TreeNode{
				Text:     fmt.Sprintf("%s %s", r.indicator(v.State()), r.title(v.Modpack.Name)),
				Children: r.children(v.Modpack),
			})
		}
	}
	return nodes
}

// RenderTable renders rows under header.
func (r *TerminalRenderer) RenderTable(header []string, rows [][]string) string {
	data := pterm.TableData{header}
	data = append(data, rows...)
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		var b strings.Builder
		for _, row := range data {
			b.WriteString(strings.Join(row, "\t") + "\n")
		}
		return strings.TrimRight(b.String(), "\n")
	}
	return strings.TrimRight(out, "\n")
}

// RenderError renders err for stderr.
func (r *TerminalRenderer) RenderError(err error) string {
	msg := fmt.Sprintf("Error: %v", err)
	if r.plain {
		return msg
	}
	return ErrorStyle.Render(msg)
}

func (r *TerminalRenderer) indicator(state types.TriState) string {
	if r.plain {
		switch state {
		case types.True:
			return "*"
		case types.False:
			return "-"
		default:
			return "~"
		}
	}
	return StateIndicator(state)
}

func (r *TerminalRenderer) version(s string) string {
	if r.plain {
		return s
	}
	return VersionStyle.Render(s)
}

func (r *TerminalRenderer) title(s string) string {
	if r.plain {
		return s
	}
	return TitleStyle.Render(s)
}

func (r *TerminalRenderer) muted(s string) string {
	if r.plain {
		return s
	}
	return MutedStyle.Render(s)
}
