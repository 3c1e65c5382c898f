package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hunterjackson/todoer/internal/db"
	"github.com/hunterjackson/todoer/internal/models"
	"github.com/hunterjackson/todoer/internal/ui/views"
)

type view int

const (
	viewProjects view = iota
	viewTasks
)

// App routes messages between the project list and the task list
type App struct {
	db       *db.DB
	active   view
	projects *views.ProjectListView
	tasks    *views.TaskListView
	width    int
	height   int
}

func NewApp(database *db.DB) *App {
	return &App{
		db:       database,
		active:   viewProjects,
		projects: views.NewProjectListView(database),
	}
}

func (a *App) Init() tea.Cmd {
	// Reopen the project that was active last time.
	if lastID, err := a.db.GetSetting("last_project_id"); err == nil && lastID != "" {
		if project, err := a.db.GetProject(lastID); err == nil {
			return a.openProject(*project)
		}
	}
	return a.projects.Init()
}

func (a *App) openProject(project models.Project) tea.Cmd {
	a.active = viewTasks
	a.tasks = views.NewTaskListView(a.db, project)
	a.db.SetSetting("last_project_id", project.ID)

	return tea.Batch(
		a.tasks.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// The project list persists across view switches; keep it sized.
		a.projects.Update(msg)

	case views.SelectedProject:
		return a, a.openProject(msg.Project)

	case views.BackToProjects:
		a.active = viewProjects
		a.db.SetSetting("last_project_id", "")
		return a, tea.Batch(
			a.projects.Init(),
			func() tea.Msg {
				return tea.WindowSizeMsg{Width: a.width, Height: a.height}
			},
		)
	}

	var cmd tea.Cmd
	if a.active == viewTasks && a.tasks != nil {
		_, cmd = a.tasks.Update(msg)
	} else {
		_, cmd = a.projects.Update(msg)
	}
	return a, cmd
}

func (a *App) View() string {
	if a.active == viewTasks && a.tasks != nil {
		return a.tasks.View()
	}
	return a.projects.View()
}
