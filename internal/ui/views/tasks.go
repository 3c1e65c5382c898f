package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hunterjackson/todoer/internal/db"
	"github.com/hunterjackson/todoer/internal/models"
	"github.com/hunterjackson/todoer/internal/ui/keys"
	"github.com/hunterjackson/todoer/internal/ui/styles"
)

// taskMode selects which slice of the repository the view shows
type taskMode int

const (
	modeProject taskMode = iota
	modeToday
	modeUpcoming
	modeSearch
)

const upcomingDays = 7

// taskRow is a task plus its indentation depth in the rendered forest
type taskRow struct {
	task  models.Task
	depth int
}

// TaskListView shows tasks for a project or a date window
type TaskListView struct {
	db      *db.DB
	project models.Project
	mode    taskMode
	rows    []taskRow
	stats   *db.Stats
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int
	cursor int

	creating    bool
	newContent  textinput.Model
	searching   bool
	searchInput textinput.Model

	confirmingDelete bool
	deleteTarget     taskRow
}

// BackToProjects signals to go back to the project list
type BackToProjects struct{}

type tasksLoadedMsg struct {
	rows  []taskRow
	stats *db.Stats
}

// NewTaskListView creates a task list view scoped to a project
func NewTaskListView(database *db.DB, project models.Project) *TaskListView {
	newContent := textinput.New()
	newContent.Placeholder = "Task content"
	newContent.CharLimit = 500

	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100

	return &TaskListView{
		db:          database,
		project:     project,
		mode:        modeProject,
		styles:      styles.NewStyles(),
		keys:        keys.DefaultKeyMap(),
		newContent:  newContent,
		searchInput: search,
	}
}

func (v *TaskListView) Init() tea.Cmd {
	return v.loadTasks
}

func (v *TaskListView) loadTasks() tea.Msg {
	var (
		tasks []models.Task
		err   error
	)

	switch v.mode {
	case modeToday:
		tasks, err = v.db.TodayTasks()
	case modeUpcoming:
		tasks, err = v.db.UpcomingTasks(upcomingDays)
	case modeSearch:
		tasks, err = v.db.SearchTasks(strings.TrimSpace(v.searchInput.Value()))
	default:
		tasks, err = v.db.ListTasks(db.TaskFilter{ProjectID: &v.project.ID})
	}
	if err != nil {
		return err
	}

	stats, err := v.db.Stats()
	if err != nil {
		return err
	}

	return tasksLoadedMsg{rows: buildForest(tasks), stats: stats}
}

// buildForest orders tasks parent-first with indentation depths. Tasks whose
// parent is not part of the result (or whose ancestry is corrupted into a
// cycle) surface at the root level.
func buildForest(tasks []models.Task) []taskRow {
	byID := make(map[string]*models.Task, len(tasks))
	children := make(map[string][]*models.Task)
	var roots []*models.Task

	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}
	for i := range tasks {
		t := &tasks[i]
		if t.ParentID != nil && byID[*t.ParentID] != nil {
			children[*t.ParentID] = append(children[*t.ParentID], t)
		} else {
			roots = append(roots, t)
		}
	}

	var rows []taskRow
	visited := make(map[string]bool)
	var walk func(t *models.Task, depth int)
	walk = func(t *models.Task, depth int) {
		if visited[t.ID] {
			return
		}
		visited[t.ID] = true
		rows = append(rows, taskRow{task: *t, depth: depth})
		for _, child := range children[t.ID] {
			walk(child, depth+1)
		}
	}
	for _, root := range roots {
		walk(root, 0)
	}
	return rows
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tasksLoadedMsg:
		v.rows = msg.rows
		v.stats = msg.stats
		if v.cursor >= len(v.rows) {
			v.cursor = max(len(v.rows)-1, 0)
		}
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.creating {
			return v.updateCreating(msg)
		}
		if v.searching {
			return v.updateSearching(msg)
		}
		return v.updateBrowsing(msg)
	}

	return v, nil
}

func (v *TaskListView) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		if v.mode != modeProject {
			v.mode = modeProject
			return v, v.loadTasks
		}
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.rows)-1 {
			v.cursor++
		}

	case key.Matches(msg, v.keys.New):
		v.creating = true
		v.newContent.Reset()
		v.newContent.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Complete):
		if row, ok := v.selectedRow(); ok {
			return v, v.toggleComplete(row.task)
		}

	case key.Matches(msg, v.keys.Delete):
		if row, ok := v.selectedRow(); ok {
			v.confirmingDelete = true
			v.deleteTarget = row
		}

	case key.Matches(msg, v.keys.Search):
		v.searching = true
		v.searchInput.Reset()
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Today):
		v.mode = modeToday
		v.cursor = 0
		return v, v.loadTasks

	case key.Matches(msg, v.keys.Upcoming):
		v.mode = modeUpcoming
		v.cursor = 0
		return v, v.loadTasks
	}

	return v, nil
}

func (v *TaskListView) selectedRow() (taskRow, bool) {
	if v.cursor < 0 || v.cursor >= len(v.rows) {
		return taskRow{}, false
	}
	return v.rows[v.cursor], true
}

func (v *TaskListView) toggleComplete(task models.Task) tea.Cmd {
	return func() tea.Msg {
		var err error
		if task.Completed {
			_, err = v.db.UncompleteTask(task.ID)
		} else {
			_, err = v.db.CompleteTask(task.ID)
		}
		if err != nil {
			return err
		}
		return v.loadTasks()
	}
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		target := v.deleteTarget.task.ID
		return v, func() tea.Msg {
			if _, err := v.db.DeleteTask(target); err != nil {
				return err
			}
			return v.loadTasks()
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *TaskListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		content := strings.TrimSpace(v.newContent.Value())
		if content == "" {
			return v, nil
		}

		// Creating while a task is selected makes a subtask of it.
		input := db.TaskInput{Content: content, ProjectID: v.project.ID}
		if row, ok := v.selectedRow(); ok && v.mode == modeProject {
			input.ParentID = &row.task.ID
		}
		if _, err := v.db.CreateTask(input); err != nil {
			return v, nil
		}
		v.creating = false
		return v, v.loadTasks
	}

	var cmd tea.Cmd
	v.newContent, cmd = v.newContent.Update(msg)
	return v, cmd
}

func (v *TaskListView) updateSearching(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.searching = false
		v.mode = modeProject
		return v, v.loadTasks

	case key.Matches(msg, v.keys.Enter):
		v.searching = false
		v.mode = modeSearch
		v.cursor = 0
		return v, v.loadTasks
	}

	var cmd tea.Cmd
	v.searchInput, cmd = v.searchInput.Update(msg)
	return v, cmd
}

func (v *TaskListView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.creating {
		return v.renderCreateForm()
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render(v.title()))
	b.WriteString("\n\n")

	if v.searching {
		b.WriteString(v.styles.InputFocused.Width(40).Render(v.searchInput.View()))
		b.WriteString("\n\n")
	}

	if len(v.rows) == 0 {
		b.WriteString(v.styles.TitleMuted.Render("No tasks"))
		b.WriteString("\n")
	}
	for i, row := range v.rows {
		b.WriteString(v.renderRow(row, i == v.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderStatus())
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *TaskListView) title() string {
	switch v.mode {
	case modeToday:
		return "Today"
	case modeUpcoming:
		return fmt.Sprintf("Upcoming %d days", upcomingDays)
	case modeSearch:
		return fmt.Sprintf("Search: %s", strings.TrimSpace(v.searchInput.Value()))
	}
	return v.project.Name
}

func (v *TaskListView) renderRow(row taskRow, selected bool) string {
	s := v.styles

	check := "[ ]"
	if row.task.Completed {
		check = "[x]"
	}

	marker := lipgloss.NewStyle().
		Foreground(styles.PriorityColor(row.task.Priority)).
		Render("●")

	content := row.task.Content
	if row.task.Completed {
		content = s.TaskDone.Render(content)
	}

	line := fmt.Sprintf("%s%s %s %s%s",
		strings.Repeat("  ", row.depth), check, marker, content, v.renderDue(row.task))

	for _, label := range row.task.Labels {
		line += " " + s.Label.Render("@"+label.Name)
	}

	if selected {
		return s.ListSelected.Render(line)
	}
	return s.ListItem.Render(line)
}

func (v *TaskListView) renderDue(task models.Task) string {
	if task.DueDate == nil {
		return ""
	}

	due := task.DueDate.Format("Jan 2")
	if !task.Completed && task.DueDate.Before(time.Now()) {
		return " " + v.styles.TaskOverdue.Render(due)
	}
	return " " + v.styles.TaskDue.Render(due)
}

func (v *TaskListView) renderStatus() string {
	if v.stats == nil {
		return ""
	}
	return v.styles.StatusBar.Render(
		fmt.Sprintf("karma: %d today • %d total • %d day streak",
			v.stats.CompletedToday, v.stats.CompletedTotal, v.stats.Streak),
	) + "\n"
}

func (v *TaskListView) renderCreateForm() string {
	s := v.styles

	title := "New Task"
	if row, ok := v.selectedRow(); ok && v.mode == modeProject {
		title = fmt.Sprintf("New subtask of %q", row.task.Content)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(title),
		"",
		s.InputFocused.Width(50).Render(v.newContent.View()),
		"",
		s.TitleMuted.Render("Enter: create • Esc: cancel"),
	)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, form)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q and all its subtasks.", v.deleteTarget.task.Content)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, content)
}

func (v *TaskListView) renderHelp() string {
	s := v.styles
	return s.Help.Render(
		fmt.Sprintf("%s complete • %s new • %s del • %s today • %s upcoming • %s search • %s back",
			s.HelpKey.Render("c"),
			s.HelpKey.Render("n"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("t"),
			s.HelpKey.Render("u"),
			s.HelpKey.Render("/"),
			s.HelpKey.Render("esc"),
		),
	)
}
