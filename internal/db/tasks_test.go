package db

import (
	"errors"
	"testing"
	"time"

	"github.com/hunterjackson/todoer/internal/models"
)

func TestCreateTask_Defaults(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	task := mustCreateTask(t, database, TaskInput{Content: "  Buy groceries  "})

	if task.Content != "Buy groceries" {
		t.Fatalf("expected trimmed content, got %q", task.Content)
	}
	if task.ProjectID != models.InboxProjectID {
		t.Fatalf("expected inbox project, got %q", task.ProjectID)
	}
	if task.Priority != models.PriorityDefault {
		t.Fatalf("expected default priority, got %d", task.Priority)
	}
	if task.Completed || task.CompletedAt != nil {
		t.Fatalf("expected new task to be incomplete")
	}
	if task.SortOrder != 1 {
		t.Fatalf("expected first task at sort order 1, got %v", task.SortOrder)
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}
}

func TestCreateTask_EmptyContent(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	for _, content := range []string{"", "   ", "\t\n"} {
		if _, err := database.CreateTask(TaskInput{Content: content}); !errors.Is(err, ErrEmptyContent) {
			t.Fatalf("content %q: expected ErrEmptyContent, got %v", content, err)
		}
	}
}

func TestCreateTask_AppendsAfterSiblings(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	first := mustCreateTask(t, database, TaskInput{Content: "first"})
	second := mustCreateTask(t, database, TaskInput{Content: "second"})

	if second.SortOrder <= first.SortOrder {
		t.Fatalf("expected %v > %v", second.SortOrder, first.SortOrder)
	}

	// Children order independently of roots.
	child := mustCreateTask(t, database, TaskInput{Content: "child", ParentID: &first.ID})
	if child.SortOrder != 1 {
		t.Fatalf("expected first child at sort order 1, got %v", child.SortOrder)
	}
}

func TestCreateTask_ReferenceValidation(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	if _, err := database.CreateTask(TaskInput{Content: "x", ProjectID: "nope"}); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
	if _, err := database.CreateTask(TaskInput{Content: "x", SectionID: strPtr("nope")}); !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}
	if _, err := database.CreateTask(TaskInput{Content: "x", ParentID: strPtr("nope")}); !errors.Is(err, ErrParentTaskNotFound) {
		t.Fatalf("expected ErrParentTaskNotFound, got %v", err)
	}
	if _, err := database.CreateTask(TaskInput{Content: "x", LabelIDs: []string{"nope"}}); !errors.Is(err, ErrLabelNotFound) {
		t.Fatalf("expected ErrLabelNotFound, got %v", err)
	}
}

func TestCreateTask_SectionMustMatchProject(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	work := mustCreateProject(t, database, "Work")
	home := mustCreateProject(t, database, "Home")

	section, err := database.CreateSection(work.ID, "Sprint")
	if err != nil {
		t.Fatalf("CreateSection returned error: %v", err)
	}

	_, err = database.CreateTask(TaskInput{Content: "x", ProjectID: home.ID, SectionID: &section.ID})
	if !errors.Is(err, ErrSectionProjectMismatch) {
		t.Fatalf("expected ErrSectionProjectMismatch, got %v", err)
	}

	task, err := database.CreateTask(TaskInput{Content: "x", ProjectID: work.ID, SectionID: &section.ID})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}
	if task.SectionID == nil || *task.SectionID != section.ID {
		t.Fatalf("expected section to be set")
	}
}

func TestCreateTask_ParentMustBeActive(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	parent := mustCreateTask(t, database, TaskInput{Content: "parent"})
	if _, err := database.DeleteTask(parent.ID); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}

	_, err := database.CreateTask(TaskInput{Content: "child", ParentID: &parent.ID})
	if !errors.Is(err, ErrParentTaskNotFound) {
		t.Fatalf("expected ErrParentTaskNotFound for deleted parent, got %v", err)
	}
}

func TestCreateTask_WithLabels(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	urgent, err := database.CreateLabel("urgent", "#f00")
	if err != nil {
		t.Fatalf("CreateLabel returned error: %v", err)
	}

	task := mustCreateTask(t, database, TaskInput{Content: "x", LabelIDs: []string{urgent.ID}})
	if len(task.Labels) != 1 || task.Labels[0].Name != "urgent" {
		t.Fatalf("expected label to be attached, got %v", task.Labels)
	}
}

func TestGetTask_AbsentAndDeleted(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	task, err := database.GetTask("missing")
	if err != nil || task != nil {
		t.Fatalf("expected nil for missing task, got %v, %v", task, err)
	}

	created := mustCreateTask(t, database, TaskInput{Content: "x"})
	if _, err := database.DeleteTask(created.ID); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}

	task, err = database.GetTask(created.ID)
	if err != nil || task != nil {
		t.Fatalf("expected nil for deleted task, got %v, %v", task, err)
	}
}

func TestListTasks_Filters(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	work := mustCreateProject(t, database, "Work")
	root := mustCreateTask(t, database, TaskInput{Content: "root", ProjectID: work.ID})
	child := mustCreateTask(t, database, TaskInput{Content: "child", ProjectID: work.ID, ParentID: &root.ID})
	mustCreateTask(t, database, TaskInput{Content: "inbox task"})

	if _, err := database.CompleteTask(child.ID); err != nil {
		t.Fatalf("CompleteTask returned error: %v", err)
	}

	byProject, err := database.ListTasks(TaskFilter{ProjectID: &work.ID})
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if len(byProject) != 2 {
		t.Fatalf("expected 2 tasks in project, got %d", len(byProject))
	}

	incomplete, err := database.ListTasks(TaskFilter{ProjectID: &work.ID, Completed: boolPtr(false)})
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if len(incomplete) != 1 || incomplete[0].ID != root.ID {
		t.Fatalf("expected only the root task, got %d", len(incomplete))
	}

	roots, err := database.ListTasks(TaskFilter{ProjectID: &work.ID, RootOnly: true})
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if len(roots) != 1 || roots[0].ID != root.ID {
		t.Fatalf("expected only root-level tasks, got %d", len(roots))
	}

	children, err := database.ListTasks(TaskFilter{ParentID: &root.ID})
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if len(children) != 1 || children[0].ID != child.ID {
		t.Fatalf("expected only the child task, got %d", len(children))
	}
}

func TestUpdateTask_PatchSemantics(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	task := mustCreateTask(t, database, TaskInput{
		Content:     "original",
		Description: "notes",
		DueDate:     timePtr(time.Now().Add(48 * time.Hour)),
		DelegatedTo: strPtr("alice"),
	})

	// Nil fields leave values untouched.
	updated, err := database.UpdateTask(task.ID, TaskPatch{Content: strPtr("renamed")})
	if err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}
	if updated.Content != "renamed" {
		t.Fatalf("expected renamed content, got %q", updated.Content)
	}
	if updated.Description != "notes" {
		t.Fatalf("expected description untouched, got %q", updated.Description)
	}
	if updated.DueDate == nil {
		t.Fatalf("expected due date untouched")
	}
	if !updated.UpdatedAt.After(task.UpdatedAt) && !updated.UpdatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("expected updated_at to be bumped")
	}

	// Zero-value pointers clear nullable fields.
	updated, err = database.UpdateTask(task.ID, TaskPatch{
		Description: strPtr(""),
		DueDate:     &time.Time{},
		DelegatedTo: strPtr(""),
	})
	if err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}
	if updated.Description != "" {
		t.Fatalf("expected description cleared, got %q", updated.Description)
	}
	if updated.DueDate != nil {
		t.Fatalf("expected due date cleared")
	}
	if updated.DelegatedTo != nil {
		t.Fatalf("expected delegation cleared")
	}
}

func TestUpdateTask_EmptyContentRejected(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	task := mustCreateTask(t, database, TaskInput{Content: "keep me"})

	if _, err := database.UpdateTask(task.ID, TaskPatch{Content: strPtr("  ")}); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}

	got, err := database.GetTask(task.ID)
	if err != nil {
		t.Fatalf("GetTask returned error: %v", err)
	}
	if got.Content != "keep me" {
		t.Fatalf("rejected update must not change content, got %q", got.Content)
	}
}

func TestUpdateTask_AbsentReturnsNil(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	task, err := database.UpdateTask("missing", TaskPatch{Content: strPtr("x")})
	if err != nil || task != nil {
		t.Fatalf("expected nil for missing task, got %v, %v", task, err)
	}
}

func TestUpdateTask_ProjectChangeRevalidatesSection(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	work := mustCreateProject(t, database, "Work")
	home := mustCreateProject(t, database, "Home")
	section, err := database.CreateSection(work.ID, "Sprint")
	if err != nil {
		t.Fatalf("CreateSection returned error: %v", err)
	}

	task := mustCreateTask(t, database, TaskInput{Content: "x", ProjectID: work.ID, SectionID: &section.ID})

	// Moving the project while the section stays behind must be rejected.
	if _, err := database.UpdateTask(task.ID, TaskPatch{ProjectID: &home.ID}); !errors.Is(err, ErrSectionProjectMismatch) {
		t.Fatalf("expected ErrSectionProjectMismatch, got %v", err)
	}

	// Clearing the section at the same time is fine.
	updated, err := database.UpdateTask(task.ID, TaskPatch{ProjectID: &home.ID, SectionID: strPtr("")})
	if err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}
	if updated.ProjectID != home.ID || updated.SectionID != nil {
		t.Fatalf("expected project moved and section cleared")
	}
}

func TestUpdateTask_ReparentValidation(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	parent := mustCreateTask(t, database, TaskInput{Content: "parent"})
	child := mustCreateTask(t, database, TaskInput{Content: "child", ParentID: &parent.ID})

	if _, err := database.UpdateTask(parent.ID, TaskPatch{ParentID: &child.ID}); !errors.Is(err, ErrCyclicParent) {
		t.Fatalf("expected ErrCyclicParent, got %v", err)
	}
	if _, err := database.UpdateTask(parent.ID, TaskPatch{ParentID: &parent.ID}); !errors.Is(err, ErrSelfParent) {
		t.Fatalf("expected ErrSelfParent, got %v", err)
	}

	// Detaching the child moves it to the root level.
	updated, err := database.UpdateTask(child.ID, TaskPatch{ParentID: strPtr("")})
	if err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}
	if updated.ParentID != nil {
		t.Fatalf("expected child detached from parent")
	}
}

func TestUpdateTask_ReplaceLabels(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	urgent, err := database.CreateLabel("urgent", "")
	if err != nil {
		t.Fatalf("CreateLabel returned error: %v", err)
	}
	waiting, err := database.CreateLabel("waiting", "")
	if err != nil {
		t.Fatalf("CreateLabel returned error: %v", err)
	}

	task := mustCreateTask(t, database, TaskInput{Content: "x", LabelIDs: []string{urgent.ID}})

	updated, err := database.UpdateTask(task.ID, TaskPatch{LabelIDs: &[]string{waiting.ID}})
	if err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}
	if len(updated.Labels) != 1 || updated.Labels[0].ID != waiting.ID {
		t.Fatalf("expected label set replaced, got %v", updated.Labels)
	}

	updated, err = database.UpdateTask(task.ID, TaskPatch{LabelIDs: &[]string{}})
	if err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}
	if len(updated.Labels) != 0 {
		t.Fatalf("expected labels cleared, got %v", updated.Labels)
	}

	if _, err := database.UpdateTask(task.ID, TaskPatch{LabelIDs: &[]string{"nope"}}); !errors.Is(err, ErrLabelNotFound) {
		t.Fatalf("expected ErrLabelNotFound, got %v", err)
	}
}

func TestCompleteAndUncomplete(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	task := mustCreateTask(t, database, TaskInput{Content: "x"})

	done, err := database.CompleteTask(task.ID)
	if err != nil {
		t.Fatalf("CompleteTask returned error: %v", err)
	}
	if !done.Completed || done.CompletedAt == nil {
		t.Fatalf("expected completed with timestamp")
	}

	undone, err := database.UncompleteTask(task.ID)
	if err != nil {
		t.Fatalf("UncompleteTask returned error: %v", err)
	}
	if undone.Completed || undone.CompletedAt != nil {
		t.Fatalf("expected incomplete with cleared timestamp")
	}

	missing, err := database.CompleteTask("missing")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing task, got %v, %v", missing, err)
	}
}

func TestSearchTasks(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	mustCreateTask(t, database, TaskInput{Content: "Buy groceries"})
	mustCreateTask(t, database, TaskInput{Content: "Buy new phone"})
	mustCreateTask(t, database, TaskInput{Content: "Call mom"})
	hidden := mustCreateTask(t, database, TaskInput{Content: "Buy hidden thing"})
	if _, err := database.DeleteTask(hidden.ID); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}
	mustCreateTask(t, database, TaskInput{Content: "Errands", Description: "buy stamps"})

	results, err := database.SearchTasks("buy")
	if err != nil {
		t.Fatalf("SearchTasks returned error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(results))
	}
	for _, r := range results {
		if r.Content == "Call mom" {
			t.Fatalf("unexpected match %q", r.Content)
		}
	}
}

func TestListDelegatedUsers(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	mustCreateTask(t, database, TaskInput{Content: "a", DelegatedTo: strPtr("bob")})
	mustCreateTask(t, database, TaskInput{Content: "b", DelegatedTo: strPtr("alice")})
	mustCreateTask(t, database, TaskInput{Content: "c", DelegatedTo: strPtr("alice")})
	mustCreateTask(t, database, TaskInput{Content: "d"})
	gone := mustCreateTask(t, database, TaskInput{Content: "e", DelegatedTo: strPtr("carol")})
	if _, err := database.DeleteTask(gone.ID); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}

	users, err := database.ListDelegatedUsers()
	if err != nil {
		t.Fatalf("ListDelegatedUsers returned error: %v", err)
	}
	if len(users) != 2 || users[0] != "alice" || users[1] != "bob" {
		t.Fatalf("expected [alice bob], got %v", users)
	}
}

func TestTaskInputFields(t *testing.T) {
	t.Parallel()

	database := newTestDB(t)

	due := time.Now().Add(24 * time.Hour)
	deadline := time.Now().Add(72 * time.Hour)
	task := mustCreateTask(t, database, TaskInput{
		Content:        "full",
		Description:    "desc",
		DueDate:        &due,
		Deadline:       &deadline,
		Duration:       intPtr(30),
		RecurrenceRule: "every day",
		Priority:       models.PriorityHighest,
	})

	if task.Description != "desc" || task.RecurrenceRule != "every day" {
		t.Fatalf("expected text fields persisted")
	}
	if task.DueDate == nil || task.Deadline == nil {
		t.Fatalf("expected dates persisted")
	}
	if task.Duration == nil || *task.Duration != 30 {
		t.Fatalf("expected duration persisted, got %v", task.Duration)
	}
	if task.Priority != models.PriorityHighest {
		t.Fatalf("expected priority 1, got %d", task.Priority)
	}
}
