package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/ghgraph/pkg/render/nodelink"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// maxMembers is how many member names a picker row shows.
const maxMembers = 4

// =============================================================================
// ClusterListModel - Interactive cluster selection
// =============================================================================

// ClusterListModel is the bubbletea model for picking clusters to render.
// Space toggles a cluster, enter confirms the marked clusters or the one
// under the cursor.
type ClusterListModel struct {
	Clusters []nodelink.ClusterInfo
	Cursor   int
	Offset   int
	Height   int
	Marked   map[int]bool
	Selected []int
	Quit     bool
}

// NewClusterListModel creates a picker over clusters.
func NewClusterListModel(clusters []nodelink.ClusterInfo) ClusterListModel {
	return ClusterListModel{
		Clusters: clusters,
		Height:   15,
		Marked:   make(map[int]bool),
	}
}

func (m ClusterListModel) Init() tea.Cmd {
	return nil
}

func (m ClusterListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quit = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Clusters)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ":
			if len(m.Clusters) > 0 {
				idx := m.Clusters[m.Cursor].Index
				if m.Marked[idx] {
					delete(m.Marked, idx)
				} else {
					m.Marked[idx] = true
				}
			}
		case "a":
			for _, c := range m.Clusters {
				m.Marked[c.Index] = true
			}
		case "enter":
			if len(m.Clusters) == 0 {
				m.Quit = true
				return m, tea.Quit
			}
			m.Selected = m.selection()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

// selection returns the marked indices in cluster order, or the cursor's
// cluster when nothing is marked.
func (m ClusterListModel) selection() []int {
	var out []int
	for _, c := range m.Clusters {
		if m.Marked[c.Index] {
			out = append(out, c.Index)
		}
	}
	if len(out) == 0 {
		out = []int{m.Clusters[m.Cursor].Index}
	}
	return out
}

func (m ClusterListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Clusters"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space mark  a all  ⏎ render  q quit"))
	b.WriteString("\n\n")

	if len(m.Clusters) == 0 {
		b.WriteString(listDimStyle.Render("  no clusters"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Clusters))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		c := m.Clusters[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := " "
		if m.Marked[c.Index] {
			mark = "✓"
		}
		rows = append(rows, []string{
			cursor + mark,
			fmt.Sprintf("%02d", c.Index),
			strconv.Itoa(c.Nodes),
			strconv.Itoa(c.Edges),
			memberSummary(c.Members),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Cluster", "Nodes", "Edges", "Members").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			switch {
			case idx == m.Cursor:
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			case idx < len(m.Clusters) && m.Marked[m.Clusters[idx].Index]:
				return lipgloss.NewStyle().Foreground(colorGreen)
			case col == 4:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %d marked", m.Cursor+1, len(m.Clusters), len(m.Marked))))
	return b.String()
}

func memberSummary(members []string) string {
	if len(members) <= maxMembers {
		return strings.Join(members, ", ")
	}
	return fmt.Sprintf("%s, +%d more", strings.Join(members[:maxMembers], ", "), len(members)-maxMembers)
}
