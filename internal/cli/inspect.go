package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/viewsplit/pkg/core/dataset"
	"github.com/matzehuels/viewsplit/pkg/core/split"
	splitio "github.com/matzehuels/viewsplit/pkg/io"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [result.json]",
		Short: "Browse the tiles of a split result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := splitio.ImportResult(args[0])
			if err != nil {
				return fmt.Errorf("load result %s: %w", args[0], err)
			}
			if len(res.Entities) == 0 {
				printInfo("Result has no entities")
				return nil
			}
			_, err = tea.NewProgram(NewResultModel(res), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ResultModel - Interactive split result browser
// =============================================================================

// ResultModel is the bubbletea model for browsing split entities.
type ResultModel struct {
	Result *split.Result
	Cursor int
	Height int
	Offset int
}

// NewResultModel creates a browser over the entities of res.
func NewResultModel(res *split.Result) ResultModel {
	return ResultModel{Result: res, Height: 15}
}

func (m ResultModel) Init() tea.Cmd {
	return nil
}

func (m ResultModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Result.Entities))
		case "end", "G":
			m.move(len(m.Result.Entities))
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-16, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta and keeps it inside the visible window.
func (m *ResultModel) move(delta int) {
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Result.Entities)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m ResultModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Split Result"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d tiles from %d entities · max spread %d",
		len(m.Result.Entities), len(m.Result.Map.Originals()), m.Result.MaxSpread)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  pgup/pgdn page  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Result.Entities))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		e := m.Result.Entities[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		local, _ := m.Result.Map.LocalIndex(e.ID)
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(e.ID),
			strconv.Itoa(e.Source),
			strconv.Itoa(local),
			strconv.Itoa(e.Tile.ID),
			e.Region.String(),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Source", "Local", "Tile", "Region").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(m.detail())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Result.Entities))))

	return b.String()
}

// detail describes the entity under the cursor.
func (m ResultModel) detail() string {
	e := m.Result.Entities[m.Cursor]
	ds := m.Result.Dataset

	var registered, missing, points int
	for _, tp := range ds.SortedTimepoints() {
		v := dataset.ViewID{Timepoint: tp, Entity: e.ID}
		if ds.IsMissing(v) {
			missing++
			continue
		}
		if _, ok := ds.Registrations[v]; ok {
			registered++
		}
		for _, pl := range ds.Points[v] {
			points += len(pl.Points)
		}
	}

	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	line := func(k, v string) string {
		return keyStyle.Render(k) + " " + StyleValue.Render(v) + "\n"
	}

	var b strings.Builder
	b.WriteString(line("Size", fmt.Sprint(e.Size)))
	b.WriteString(line("Location", fmt.Sprint(e.Tile.Location)))
	b.WriteString(line("Illumination", e.Illumination.Name))
	b.WriteString(line("Views", fmt.Sprintf("%d registered, %d missing", registered, missing)))
	b.WriteString(line("Points", strconv.Itoa(points)))
	return b.String()
}
