package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/sceneforest/pkg/scene"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	matrixStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// =============================================================================
// NodeListModel - Interactive node browser
// =============================================================================

// nodeRow is the precomputed table data for one node.
type nodeRow struct {
	Node     string
	Parent   string
	Geometry string
	Depth    int
}

// NodeListModel is the bubbletea model for browsing the nodes of a scene.
// The detail pane shows the selected node's transform in the base frame,
// or in its own root's frame when it is not below the base.
type NodeListModel struct {
	Graph  *scene.Graph
	Rows   []nodeRow
	Cursor int
	Height int
	Offset int
}

// NewNodeListModel creates a browser over every node of g in sorted order.
func NewNodeListModel(g *scene.Graph) (NodeListModel, error) {
	f := g.Forest()
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return NodeListModel{}, fmt.Errorf("scene has no nodes")
	}
	rows := make([]nodeRow, len(nodes))
	for i, n := range nodes {
		r := nodeRow{Node: n, Depth: f.Depth(n)}
		if p, ok := f.Parent(n); ok {
			r.Parent = p
			if e, ok := f.Edge(p, n); ok && e.HasGeometry() {
				r.Geometry = e.Payload.Geometry
			}
		}
		rows[i] = r
	}
	return NodeListModel{Graph: g, Rows: rows, Height: 15}, nil
}

func (m NodeListModel) Init() tea.Cmd {
	return nil
}

func (m NodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = len(m.Rows) - 1
			m.Offset = max(0, m.Cursor-m.Height+1)
		}
	case tea.WindowSizeMsg:
		// leave room for the title, help line and the matrix pane
		m.Height = max(msg.Height-14, 5)
	}
	return m, nil
}

func (m NodeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Scene Nodes"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, r.Node, orDash(r.Parent), orDash(r.Geometry), fmt.Sprint(r.Depth)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Parent", "Geometry", "Depth").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			if idx == m.Cursor {
				return listSelectedStyle
			}
			if col == 3 && m.Rows[idx].Geometry != "" {
				return lipgloss.NewStyle().Foreground(colorBlue)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(m.detail())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}

// detail renders the selected node's transform.
func (m NodeListModel) detail() string {
	if len(m.Rows) == 0 {
		return ""
	}
	node := m.Rows[m.Cursor].Node
	frame := m.Graph.Base()
	fr, err := m.Graph.Get(node)
	if err != nil {
		// not below the base: show it relative to its own root
		frame = node
		if anc := m.Graph.Forest().Ancestors(node); len(anc) > 0 {
			frame = anc[len(anc)-1]
		}
		if fr, err = m.Graph.GetFrom(frame, node); err != nil {
			return iconError.String() + " " + err.Error()
		}
	}

	title := fmt.Sprintf("%s in %s", node, orNone(frame))
	return matrixStyle.Render(StyleDim.Render(title) + "\n" + formatMatrix(fr.Matrix))
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
