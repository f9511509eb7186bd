package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/htnguyen/novel-engine/internal/handlers"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config        *ConsoleConfig
	client        *http.Client
	view          *handlers.GameView
	storyViewport viewport.Model
	metaViewport  viewport.Model
	transcript    []string
	lastNodeID    string
	selected      int
	ready         bool
	width         int
	height        int
	err           error
	loading       bool

	// Quit confirmation state
	showQuitModal bool

	// Recap copy feedback on the ending screen
	copied bool
}

type gameViewMsg struct {
	view *handlers.GameView
	err  error
}

var (
	storyPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	nodeTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narrationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	selectedChoiceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	endingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")). // gold
			Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, view *handlers.GameView) ConsoleUI {
	storyVp := viewport.New(50, 20)
	storyVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	m := ConsoleUI{
		config:        cfg,
		client:        client,
		view:          view,
		storyViewport: storyVp,
		metaViewport:  metaVp,
	}
	m.appendNodeToTranscript()
	return m
}

// appendNodeToTranscript records the current node's narration once per
// transition, so scrollback shows the whole story so far.
func (m *ConsoleUI) appendNodeToTranscript() {
	if m.view == nil || m.view.Node == nil || m.view.Node.ID == m.lastNodeID {
		return
	}
	m.lastNodeID = m.view.Node.ID

	var entry strings.Builder
	entry.WriteString(fmt.Sprintf("Day %d - %s", m.view.Day, m.view.Time))
	if m.view.Node.Title != "" {
		entry.WriteString("  " + nodeTitleStyle.Render(m.view.Node.Title))
	}
	if m.view.Node.Narration != "" {
		entry.WriteString("\n" + narrationStyle.Render(m.view.Node.Narration))
	}
	m.transcript = append(m.transcript, entry.String())
}

func (m *ConsoleUI) writeStoryContent() {
	storyWidth := m.storyViewport.Width - 6
	if storyWidth < 10 {
		storyWidth = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("NOVEL ENGINE") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", storyWidth)) + "\n\n")

	for _, entry := range m.transcript {
		content.WriteString(wordwrap.String(entry, storyWidth) + "\n\n")
	}

	if m.view.EndingID != "" {
		content.WriteString(m.renderEnding(storyWidth))
	} else if m.loading {
		content.WriteString(loadingStyle.Render("...") + "\n")
	} else {
		content.WriteString(m.renderChoices(storyWidth))
	}

	if m.err != nil {
		content.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	m.storyViewport.SetContent(content.String())
	m.storyViewport.GotoBottom()
}

func (m *ConsoleUI) renderChoices(width int) string {
	var content strings.Builder
	for i, c := range m.view.Choices {
		line := wordwrap.String(c.Text, width-4)
		if i == m.selected {
			content.WriteString(selectedChoiceStyle.Render("▶ "+line) + "\n")
		} else {
			content.WriteString(choiceStyle.Render("  "+line) + "\n")
		}
	}
	content.WriteString("\n")
	content.WriteString(promptStyle.Render("Use ↑/↓ to choose, Enter to confirm, Esc to quit"))
	return content.String()
}

func (m *ConsoleUI) renderEnding(width int) string {
	var content strings.Builder
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	if m.view.Ending != nil {
		content.WriteString(endingStyle.Render(m.view.Ending.Title) + "\n\n")
		if m.view.Ending.Description != "" {
			content.WriteString(wordwrap.String(m.view.Ending.Description, width) + "\n\n")
		}
	} else {
		content.WriteString(endingStyle.Render("The End") + "\n\n")
	}

	if len(m.view.Unlocked) > 0 {
		content.WriteString(nodeTitleStyle.Render("Achievements") + "\n")
		for _, a := range m.view.Unlocked {
			line := "• " + a.Name
			if a.Description != "" {
				line += " - " + a.Description
			}
			content.WriteString(wordwrap.String(line, width) + "\n")
		}
		content.WriteString("\n")
	}

	if m.copied {
		content.WriteString(loadingStyle.Render("Recap copied to clipboard.") + "\n\n")
	}
	content.WriteString(promptStyle.Render("Press C to copy the recap, R to play again, Esc to quit"))
	return content.String()
}

func (m *ConsoleUI) writeMetadata() {
	var content strings.Builder
	content.WriteString(titleStyle.Render("STATUS") + "\n\n")

	content.WriteString(fmt.Sprintf("Day %d of the week\n", m.view.Day))
	content.WriteString(m.view.Time + "\n\n")

	content.WriteString("Stats:\n")
	content.WriteString(fmt.Sprintf("• Knowledge: %d\n", m.view.Stats.Knowledge))
	content.WriteString(fmt.Sprintf("• Health: %d\n", m.view.Stats.Health))
	content.WriteString(fmt.Sprintf("• Stress: %d\n", m.view.Stats.Stress))
	content.WriteString(fmt.Sprintf("• Consciousness: %d\n", m.view.Stats.Consciousness))
	content.WriteString(fmt.Sprintf("• Money: %d\n", m.view.Stats.Money))
	if m.view.Stats.SleeplessCount > 0 {
		content.WriteString(fmt.Sprintf("• Sleepless nights: %d\n", m.view.Stats.SleeplessCount))
	}
	content.WriteString("\n")

	if len(m.view.Unlocked) > 0 {
		content.WriteString("Achievements:\n")
		for _, a := range m.view.Unlocked {
			content.WriteString("• " + a.Name + "\n")
		}
		content.WriteString("\n")
	}

	content.WriteString("Game ID:\n")
	content.WriteString(m.view.ID.String()[:8] + "...\n\n")

	content.WriteString("Commands:\n")
	content.WriteString("• ↑/↓: Choose\n")
	content.WriteString("• Enter: Confirm\n")
	content.WriteString("• S: Sync\n")
	content.WriteString("• Esc: Quit\n")

	m.metaViewport.SetContent(content.String())
}

func (m ConsoleUI) Init() tea.Cmd {
	return nil
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.storyViewport, vpCmd = m.storyViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		storyWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - storyWidth - 6

		m.storyViewport.Width = storyWidth - 2
		m.storyViewport.Height = m.height - 4
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4

		m.ready = true
		m.writeStoryContent()
		m.writeMetadata()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selected > 0 {
				m.selected--
				m.writeStoryContent()
			}
		case tea.KeyDown:
			if m.selected < len(m.view.Choices)-1 {
				m.selected++
				m.writeStoryContent()
			}
		case tea.KeyEnter:
			if m.loading || m.view.EndingID != "" {
				return m, nil
			}
			if m.selected >= len(m.view.Choices) {
				return m, nil
			}
			m.loading = true
			m.err = nil
			choiceID := m.view.Choices[m.selected].ID
			m.writeStoryContent()
			return m, m.applyChoice(choiceID)
		default:
			if msg.String() == "s" || msg.String() == "S" {
				m.loading = true
				m.err = nil
				return m, m.syncGame()
			}
			if m.view.EndingID != "" {
				switch msg.String() {
				case "c", "C":
					if err := clipboard.WriteAll(m.buildRecap()); err != nil {
						m.err = err
					} else {
						m.copied = true
					}
					m.writeStoryContent()
				case "r", "R":
					m.loading = true
					m.copied = false
					m.err = nil
					return m, m.restartGame()
				}
			}
		}

	case gameViewMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.view = msg.view
			m.selected = 0
			m.appendNodeToTranscript()
		}
		m.writeStoryContent()
		m.writeMetadata()
		return m, nil
	}

	m.storyViewport, vpCmd = m.storyViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(vpCmd, mvCmd)
}

func (m ConsoleUI) applyChoice(choiceID string) tea.Cmd {
	return func() tea.Msg {
		view, err := selectChoice(m.client, m.config.APIBaseURL, m.view.ID, choiceID)
		return gameViewMsg{view, err}
	}
}

// syncGame re-fetches the current session from the server, recovering from a
// failed request or a view that drifted from the saved state.
func (m ConsoleUI) syncGame() tea.Cmd {
	return func() tea.Msg {
		view, err := getGame(m.client, m.config.APIBaseURL, m.view.ID)
		return gameViewMsg{view, err}
	}
}

func (m ConsoleUI) restartGame() tea.Cmd {
	return func() tea.Msg {
		view, err := createGame(m.client, m.config.APIBaseURL)
		return gameViewMsg{view, err}
	}
}

// buildRecap renders the ending recap as plain text for the clipboard.
func (m *ConsoleUI) buildRecap() string {
	var recap strings.Builder

	if m.view.Ending != nil {
		recap.WriteString(m.view.Ending.Title + "\n")
		if m.view.Ending.Description != "" {
			recap.WriteString(m.view.Ending.Description + "\n")
		}
	} else {
		recap.WriteString("The End\n")
	}
	recap.WriteString("\n")

	recap.WriteString(fmt.Sprintf("Knowledge %d | Health %d | Stress %d | Money %d\n\n",
		m.view.Stats.Knowledge, m.view.Stats.Health, m.view.Stats.Stress, m.view.Stats.Money))

	if len(m.view.Unlocked) > 0 {
		recap.WriteString("Achievements:\n")
		for _, a := range m.view.Unlocked {
			recap.WriteString("• " + a.Name + "\n")
		}
		recap.WriteString("\n")
	}

	if len(m.view.History) > 0 {
		recap.WriteString("Choices:\n")
		for _, entry := range m.view.History {
			recap.WriteString(fmt.Sprintf("Day %d: %s → %s\n", entry.Day, entry.NodeID, entry.ChoiceID))
		}
	}

	return recap.String()
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N", "esc":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress is saved automatically.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to keep playing"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	storyWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - storyWidth - 6

	storyPanel := storyPanelStyle.Width(storyWidth).Height(m.height - 2).Render(
		m.storyViewport.View(),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, storyPanel, metaPanel)
}
