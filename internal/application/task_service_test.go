package application

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/todo-api/internal/domain/entity"
	"github.com/oksasatya/todo-api/internal/testutils"
	"github.com/oksasatya/todo-api/pkg/helpers"
)

const (
	alice = "6f1c1f9e-2d7a-4c39-9a53-0a0a5b1f2c11"
	bob   = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

type taskFixture struct {
	svc  *TaskService
	repo *testutils.TaskRepo
	mr   *miniredis.Miniredis
	pub  *testutils.Publisher
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	mr, rdb := testutils.NewRedis(t)
	repo := testutils.NewTaskRepo()
	pub := &testutils.Publisher{}
	svc := NewTaskService(repo, rdb, time.Minute, helpers.DiscardLogger())
	svc.Events = pub
	return &taskFixture{svc: svc, repo: repo, mr: mr, pub: pub}
}

func (f *taskFixture) create(t *testing.T, userID, content string) *entity.Task {
	t.Helper()
	task, err := f.svc.CreateTask(context.Background(), userID, CreateTaskInput{Content: content})
	require.NoError(t, err)
	return task
}

func ptr[T any](v T) *T { return &v }

func TestListTasks_Validation(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListTasks(ctx, "", ListTasksQuery{Take: 5})
	assert.ErrorIs(t, err, ErrUserIDRequired)

	for _, take := range []int{0, -1, 21} {
		_, err = f.svc.ListTasks(ctx, alice, ListTasksQuery{Take: take})
		assert.ErrorIs(t, err, ErrInvalidPageSize, "take=%d", take)
		assert.ErrorIs(t, err, ErrValidation)
	}

	_, err = f.svc.ListTasks(ctx, alice, ListTasksQuery{Take: 5, PrevEndID: ptr(int64(0))})
	assert.ErrorIs(t, err, ErrInvalidCursor)
	assert.Zero(t, f.repo.Reads)
}

func TestListTasks_PaginatesToEnd(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	want := map[int64]bool{}
	for i := 1; i <= 7; i++ {
		want[f.create(t, alice, "Task "+strconv.Itoa(i)).ID] = true
	}
	f.create(t, bob, "not alice's")

	for take := MinPageSize; take <= MaxPageSize; take++ {
		seen := map[int64]bool{}
		var cursor *int64
		for {
			page, err := f.svc.ListTasks(ctx, alice, ListTasksQuery{Take: take, PrevEndID: cursor})
			require.NoError(t, err)
			require.LessOrEqual(t, len(page.Tasks), take)

			if page.CurrEndID == EndCursor {
				assert.Empty(t, page.Tasks)
				break
			}
			for i, task := range page.Tasks {
				assert.False(t, seen[task.ID], "task %d returned twice", task.ID)
				seen[task.ID] = true
				if i > 0 {
					assert.Greater(t, page.Tasks[i-1].ID, task.ID)
				}
			}
			last := page.Tasks[len(page.Tasks)-1].ID
			assert.Equal(t, strconv.FormatInt(last, 10), page.CurrEndID)
			cursor = &last
		}
		assert.Equal(t, want, seen, "take=%d", take)
	}
}

func TestListTasks_TotalIncludesCursor(t *testing.T) {
	f := newTaskFixture(t)
	for i := 0; i < 5; i++ {
		f.create(t, alice, "t")
	}

	first, err := f.svc.ListTasks(context.Background(), alice, ListTasksQuery{Take: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), first.Total)

	cursor := first.Tasks[1].ID
	second, err := f.svc.ListTasks(context.Background(), alice, ListTasksQuery{Take: 2, PrevEndID: &cursor})
	require.NoError(t, err)
	assert.Equal(t, int64(3), second.Total)
}

func TestListTasks_Filters(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	f.create(t, alice, "Buy MILK")
	walk := f.create(t, alice, "walk the dog")
	f.create(t, alice, "buy bread")
	_, err := f.svc.UpdateTask(ctx, alice, walk.ID, UpdateTaskInput{IsCompleted: ptr(true)})
	require.NoError(t, err)

	page, err := f.svc.ListTasks(ctx, alice, ListTasksQuery{Take: 10, Content: ptr("milk")})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "Buy MILK", page.Tasks[0].Content)

	page, err = f.svc.ListTasks(ctx, alice, ListTasksQuery{Take: 10, IsCompleted: ptr(true)})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, walk.ID, page.Tasks[0].ID)

	page, err = f.svc.ListTasks(ctx, alice, ListTasksQuery{Take: 10, Content: ptr("BUY"), IsCompleted: ptr(false)})
	require.NoError(t, err)
	assert.Len(t, page.Tasks, 2)
	assert.Equal(t, int64(2), page.Total)
}

func TestListTasks_ReadThroughCache(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.create(t, alice, "buy milk")
	q := ListTasksQuery{Take: 1, Content: ptr("milk")}

	hits := cacheHits.Value()
	first, err := f.svc.ListTasks(ctx, alice, q)
	require.NoError(t, err)
	reads := f.repo.Reads

	key := "tasks:" + alice + ":findAll:START:1:q=milk:ALL"
	require.True(t, f.mr.Exists(key))
	assert.Equal(t, time.Minute, f.mr.TTL(key))

	var cached map[string]json.RawMessage
	raw, err := f.mr.Get(key)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Contains(t, cached, "tasks")
	assert.Contains(t, cached, "total")

	second, err := f.svc.ListTasks(ctx, alice, q)
	require.NoError(t, err)
	assert.Equal(t, reads, f.repo.Reads, "second list must be served from cache")
	assert.Equal(t, first.Tasks[0].ID, second.Tasks[0].ID)
	assert.Equal(t, strconv.FormatInt(task.ID, 10), second.CurrEndID)
	assert.Equal(t, hits+1, cacheHits.Value())
}

func TestListTasks_KeyPlaceholders(t *testing.T) {
	assert.Equal(t, "tasks:u1:findAll:START:5:ALL:ALL", taskListKey("u1", ListTasksQuery{Take: 5}))
	assert.Equal(t, "tasks:u1:findAll:40:20:q=milk:false",
		taskListKey("u1", ListTasksQuery{Take: 20, PrevEndID: ptr(int64(40)), Content: ptr("milk"), IsCompleted: ptr(false)}))
	assert.Equal(t, "tasks:u1:findAll:START:5:q=ALL:ALL", taskListKey("u1", ListTasksQuery{Take: 5, Content: ptr("ALL")}))
	assert.Equal(t, "tasks:u1:findAll:START:5:q=a%3Atrue:ALL", taskListKey("u1", ListTasksQuery{Take: 5, Content: ptr("a:true")}))
	assert.Equal(t, "tasks:u1:findOne:7", taskOneKey("u1", 7))
}

func TestListTasks_LiteralPlaceholderFilterIsNotTheUnfilteredPage(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	f.create(t, alice, "buy milk")
	f.create(t, alice, "call ALL hands")

	page, err := f.svc.ListTasks(ctx, alice, ListTasksQuery{Take: 10})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 2)

	page, err = f.svc.ListTasks(ctx, alice, ListTasksQuery{Take: 10, Content: ptr("ALL")})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "call ALL hands", page.Tasks[0].Content)
	assert.Equal(t, int64(1), page.Total)
}

func TestListTasks_RedisDownFallsBackToStore(t *testing.T) {
	f := newTaskFixture(t)
	f.create(t, alice, "buy milk")
	f.mr.Close()

	page, err := f.svc.ListTasks(context.Background(), alice, ListTasksQuery{Take: 5})
	require.NoError(t, err)
	assert.Len(t, page.Tasks, 1)
}

func TestListTasks_StoreFailureIsRequestError(t *testing.T) {
	f := newTaskFixture(t)
	f.repo.Fail = testutils.ErrBoom

	_, err := f.svc.ListTasks(context.Background(), alice, ListTasksQuery{Take: 5})
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "boom", reqErr.Detail)
}

func TestGetTask_CachedPerUser(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.create(t, alice, "buy milk")

	got, err := f.svc.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Content)
	assert.True(t, f.mr.Exists(taskOneKey(alice, task.ID)))

	reads := f.repo.Reads
	_, err = f.svc.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, reads, f.repo.Reads)
}

func TestGetTask_NotFoundAndForbiddenAreDistinct(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.create(t, alice, "buy milk")

	_, err := f.svc.GetTask(ctx, alice, 999)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = f.svc.GetTask(ctx, bob, task.ID)
	assert.ErrorIs(t, err, ErrTaskForbidden)
	assert.NotErrorIs(t, err, ErrTaskNotFound)
}

func TestGetTask_NonOwnerSeesDeletionImmediately(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.create(t, alice, "buy milk")

	_, err := f.svc.GetTask(ctx, bob, task.ID)
	require.ErrorIs(t, err, ErrTaskForbidden)
	assert.False(t, f.mr.Exists(taskOneKey(bob, task.ID)))

	_, err = f.svc.DeleteTask(ctx, alice, task.ID)
	require.NoError(t, err)

	_, err = f.svc.GetTask(ctx, bob, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestNonOwnerCannotMutate(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.create(t, alice, "buy milk")
	before, _ := f.repo.Row(task.ID)

	_, err := f.svc.UpdateTask(ctx, bob, task.ID, UpdateTaskInput{Content: ptr("hijacked"), IsCompleted: ptr(true)})
	assert.ErrorIs(t, err, ErrTaskForbidden)

	n, err := f.svc.DeleteTask(ctx, bob, task.ID)
	assert.ErrorIs(t, err, ErrTaskForbidden)
	assert.Zero(t, n)

	after, _ := f.repo.Row(task.ID)
	assert.Equal(t, before, after)
	assert.Equal(t, []string{TaskCreated}, f.pub.Types())
}

func TestCreateTask_InvalidatesCachedPages(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	f.create(t, alice, "first")

	page, err := f.svc.ListTasks(ctx, alice, ListTasksQuery{Take: 10})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)

	second := f.create(t, alice, "second")

	page, err = f.svc.ListTasks(ctx, alice, ListTasksQuery{Take: 10})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 2)
	assert.Equal(t, second.ID, page.Tasks[0].ID)
}

func TestCreateTask_Validation(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.svc.CreateTask(context.Background(), alice, CreateTaskInput{Content: "  "})
	assert.ErrorIs(t, err, ErrContentRequired)

	_, err = f.svc.CreateTask(context.Background(), "", CreateTaskInput{Content: "x"})
	assert.ErrorIs(t, err, ErrUserIDRequired)

	task, err := f.svc.CreateTask(context.Background(), alice, CreateTaskInput{Content: "done already", IsCompleted: ptr(true)})
	require.NoError(t, err)
	assert.True(t, task.IsCompleted)
	assert.Equal(t, alice, task.UserID)
}

func TestUpdateTask_SweepsOnlyThatUsersKeys(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.create(t, alice, "buy milk")
	bobTask := f.create(t, bob, "bob's")

	_, err := f.svc.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)
	_, err = f.svc.ListTasks(ctx, alice, ListTasksQuery{Take: 5})
	require.NoError(t, err)
	_, err = f.svc.GetTask(ctx, bob, bobTask.ID)
	require.NoError(t, err)
	require.NoError(t, f.mr.Set("tasks:HELLO:WORLD", "unrelated"))

	updated, err := f.svc.UpdateTask(ctx, alice, task.ID, UpdateTaskInput{Content: ptr("buy oat milk")})
	require.NoError(t, err)
	assert.Equal(t, "buy oat milk", updated.Content)
	assert.False(t, updated.IsCompleted)

	assert.False(t, f.mr.Exists(taskOneKey(alice, task.ID)))
	assert.False(t, f.mr.Exists("tasks:"+alice+":findAll:START:5:ALL:ALL"))
	assert.True(t, f.mr.Exists(taskOneKey(bob, bobTask.ID)))
	assert.True(t, f.mr.Exists("tasks:HELLO:WORLD"))

	got, err := f.svc.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "buy oat milk", got.Content)
}

func TestUpdateTask_SweepFailureAbortsMutation(t *testing.T) {
	f := newTaskFixture(t)
	task := f.create(t, alice, "buy milk")
	f.mr.Close()

	_, err := f.svc.UpdateTask(context.Background(), alice, task.ID, UpdateTaskInput{Content: ptr("changed")})
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)

	row, _ := f.repo.Row(task.ID)
	assert.Equal(t, "buy milk", row.Content)
}

func TestUpdateTask_NotFoundAndEmptyContent(t *testing.T) {
	f := newTaskFixture(t)
	task := f.create(t, alice, "buy milk")

	_, err := f.svc.UpdateTask(context.Background(), alice, 404, UpdateTaskInput{IsCompleted: ptr(true)})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = f.svc.UpdateTask(context.Background(), alice, task.ID, UpdateTaskInput{Content: ptr("")})
	assert.ErrorIs(t, err, ErrContentRequired)
}

func TestDeleteTask_SoftDeletes(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.create(t, alice, "buy milk")
	_, err := f.svc.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)

	n, err := f.svc.DeleteTask(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.svc.GetTask(ctx, alice, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	page, err := f.svc.ListTasks(ctx, alice, ListTasksQuery{Take: 5})
	require.NoError(t, err)
	assert.Empty(t, page.Tasks)
	assert.Equal(t, EndCursor, page.CurrEndID)

	row, ok := f.repo.Row(task.ID)
	require.True(t, ok, "soft-deleted row must stay in the store")
	assert.NotNil(t, row.DeletedAt)

	_, err = f.svc.DeleteTask(ctx, alice, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestMutationsPublishEvents(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.create(t, alice, "buy milk")
	_, err := f.svc.UpdateTask(ctx, alice, task.ID, UpdateTaskInput{IsCompleted: ptr(true)})
	require.NoError(t, err)
	_, err = f.svc.DeleteTask(ctx, alice, task.ID)
	require.NoError(t, err)

	require.Equal(t, []string{TaskCreated, TaskUpdated, TaskDeleted}, f.pub.Types())

	var ev TaskEvent
	require.NoError(t, json.Unmarshal(f.pub.Messages[2].Body, &ev))
	assert.Equal(t, TaskDeleted, ev.Type)
	assert.Equal(t, task.ID, ev.Task.ID)
	assert.NotNil(t, ev.Task.DeletedAt)

	var wire struct {
		Task map[string]any `json:"task"`
	}
	require.NoError(t, json.Unmarshal(f.pub.Messages[0].Body, &wire))
	assert.Equal(t, alice, wire.Task["userId"])
	assert.Equal(t, false, wire.Task["isCompleted"])
	assert.NotContains(t, wire.Task, "deletedAt")
	assert.NotContains(t, wire.Task, "UserID")
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	f := newTaskFixture(t)
	f.pub.Fail = testutils.ErrBoom

	task, err := f.svc.CreateTask(context.Background(), alice, CreateTaskInput{Content: "buy milk"})
	require.NoError(t, err)
	assert.NotZero(t, task.ID)
}

func TestTaskService_WithoutRedis(t *testing.T) {
	repo := testutils.NewTaskRepo()
	svc := NewTaskService(repo, nil, time.Minute, nil)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, alice, CreateTaskInput{Content: "buy milk"})
	require.NoError(t, err)
	_, err = svc.UpdateTask(ctx, alice, task.ID, UpdateTaskInput{Content: ptr("buy oat milk")})
	require.NoError(t, err)

	page, err := svc.ListTasks(ctx, alice, ListTasksQuery{Take: 1})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "buy oat milk", page.Tasks[0].Content)
}
