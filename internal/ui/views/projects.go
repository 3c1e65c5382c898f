package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hunterjackson/todoer/internal/db"
	"github.com/hunterjackson/todoer/internal/models"
	"github.com/hunterjackson/todoer/internal/ui/keys"
	"github.com/hunterjackson/todoer/internal/ui/styles"
)

type projectItem struct {
	project models.Project
	count   int
}

func (i projectItem) Title() string       { return i.project.Name }
func (i projectItem) Description() string { return fmt.Sprintf("%d tasks", i.count) }
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
}

func (d projectDelegate) Height() int                               { return 1 }
func (d projectDelegate) Spacing() int                              { return 0 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	marker := "  "
	if p.project.Favorite {
		marker = "★ "
	}
	line := fmt.Sprintf("%s%s  %s", marker, p.project.Name, d.styles.TitleMuted.Render(p.Description()))

	if index == m.Index() {
		fmt.Fprint(w, d.styles.ListSelected.Render(line))
		return
	}
	fmt.Fprint(w, d.styles.ListItem.Render(line))
}

// ProjectListView shows all projects and creates new ones
type ProjectListView struct {
	db     *db.DB
	list   list.Model
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int
	loaded bool

	creating bool
	newName  textinput.Model

	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string
}

// SelectedProject signals that a project was chosen
type SelectedProject struct {
	Project models.Project
}

type projectsLoadedMsg struct {
	items []list.Item
}

// NewProjectListView creates a new project list view
func NewProjectListView(database *db.DB) *ProjectListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Project name"
	newName.CharLimit = 100

	l := list.New([]list.Item{}, projectDelegate{styles: s}, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		db:      database,
		list:    l,
		styles:  s,
		keys:    keys.DefaultKeyMap(),
		newName: newName,
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	return v.loadProjects
}

func (v *ProjectListView) loadProjects() tea.Msg {
	projects, err := v.db.ListProjects()
	if err != nil {
		return err
	}

	items := make([]list.Item, len(projects))
	for i, p := range projects {
		tasks, err := v.db.ListTasks(db.TaskFilter{ProjectID: &projects[i].ID})
		if err != nil {
			return err
		}
		items[i] = projectItem{project: p, count: len(tasks)}
	}
	return projectsLoadedMsg{items: items}
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.list.SetSize(msg.Width-4, msg.Height-6)
		return v, nil

	case projectsLoadedMsg:
		v.list.SetItems(msg.items)
		v.loaded = true
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.creating {
			return v.updateCreating(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.newName.Reset()
			v.newName.Focus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg {
					return SelectedProject{Project: item.project}
				}
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				if item.project.ID == models.InboxProjectID {
					return v, nil
				}
				v.confirmingDelete = true
				v.deleteTargetID = item.project.ID
				v.deleteTargetName = item.project.Name
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		if err := v.db.DeleteProject(v.deleteTargetID); err != nil {
			return v, nil
		}
		return v, v.loadProjects
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *ProjectListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		name := strings.TrimSpace(v.newName.Value())
		if name == "" {
			return v, nil
		}
		project, err := v.db.CreateProject(name, "")
		if err != nil {
			return v, nil
		}
		v.creating = false
		return v, func() tea.Msg {
			return SelectedProject{Project: *project}
		}
	}

	var cmd tea.Cmd
	v.newName, cmd = v.newName.Update(msg)
	return v, cmd
}

func (v *ProjectListView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.creating {
		return v.renderCreateForm()
	}
	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	return v.list.View() + "\n" + v.renderHelp()
}

func (v *ProjectListView) renderCreateForm() string {
	s := v.styles
	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Project"),
		"",
		s.InputFocused.Width(40).Render(v.newName.View()),
		"",
		s.TitleMuted.Render("Enter: create • Esc: cancel"),
	)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, form)
}

func (v *ProjectListView) renderDeleteConfirm() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Project?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q and its sections go away; tasks move to the inbox.", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, content)
}

func (v *ProjectListView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s select • %s new • %s del • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("q"),
		),
	)
}
