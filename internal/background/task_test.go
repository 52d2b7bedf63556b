package background

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser/pkg/models"
)

func TestInMemoryTaskStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryTaskStore()

	result := &TaskResult{
		ProcessID: "parse_1",
		Type:      TaskTypeParse,
		Status:    TaskStatusAccepted,
		CreatedAt: time.Now(),
		Metadata:  map[string]interface{}{"filename": "cv.pdf"},
	}
	require.NoError(t, store.Store(ctx, result))

	// Mutating the caller's copy does not leak into the store
	result.Status = TaskStatusFailure
	result.Metadata["filename"] = "changed"

	got, err := store.Get(ctx, "parse_1")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusAccepted, got.Status)
	assert.Equal(t, "cv.pdf", got.Metadata["filename"])

	got.Status = TaskStatusProcessing
	require.NoError(t, store.Update(ctx, got))

	status, err := store.Get(ctx, "parse_1")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusProcessing, status.Status)

	assert.ErrorIs(t, store.Update(ctx, &TaskResult{ProcessID: "missing"}), ErrTaskNotFound)
	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	require.NoError(t, store.Delete(ctx, "parse_1"))
	assert.ErrorIs(t, store.Delete(ctx, "parse_1"), ErrTaskNotFound)
}

func TestInMemoryTaskStore_RejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryTaskStore()

	require.NoError(t, store.Store(ctx, &TaskResult{ProcessID: "parse_1", Status: TaskStatusAccepted}))
	assert.ErrorIs(t, store.Store(ctx, &TaskResult{ProcessID: "parse_1", Status: TaskStatusSuccess}), ErrTaskExists)

	got, err := store.Get(ctx, "parse_1")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusAccepted, got.Status)
}

func TestInMemoryTaskStore_Cleanup(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryTaskStore()
	now := time.Now()
	longAgo := now.Add(-48 * time.Hour)

	require.NoError(t, store.Store(ctx, &TaskResult{ProcessID: "old_done", Status: TaskStatusSuccess, CreatedAt: longAgo, CompletedAt: &longAgo}))
	require.NoError(t, store.Store(ctx, &TaskResult{ProcessID: "old_running", Status: TaskStatusProcessing, CreatedAt: longAgo}))
	require.NoError(t, store.Store(ctx, &TaskResult{ProcessID: "new_done", Status: TaskStatusFailure, CreatedAt: now, CompletedAt: &now}))

	require.NoError(t, store.Cleanup(ctx, 24*time.Hour))

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	// newest first
	assert.Equal(t, "new_done", tasks[0].ProcessID)
	assert.Equal(t, "old_running", tasks[1].ProcessID)
}

func TestTaskStatus_Final(t *testing.T) {
	assert.False(t, TaskStatusAccepted.Final())
	assert.False(t, TaskStatusProcessing.Final())
	assert.True(t, TaskStatusSuccess.Final())
	assert.True(t, TaskStatusFailure.Final())
}

func TestDecodeTask(t *testing.T) {
	payload := []byte(`{"processId":"parse_1","type":"parse","status":"SUCCESS","createdAt":"2024-01-02T03:04:05Z",` +
		`"processingTime":1500000000,"data":{"filename":"cv.pdf","resume":{"personalInfo":{"name":"Jane"}}}}`)

	result, err := decodeTask(payload)
	require.NoError(t, err)

	assert.Equal(t, TaskStatusSuccess, result.Status)
	require.NotNil(t, result.ProcessingTime)
	assert.Equal(t, 1500*time.Millisecond, *result.ProcessingTime)

	data, ok := result.Data.(*ParseTaskData)
	require.True(t, ok)
	assert.Equal(t, "cv.pdf", data.Filename)
	assert.Equal(t, "Jane", data.Resume.PersonalInfo.Name)

	result, err = decodeTask([]byte(`{"processId":"p","type":"parse","status":"ACCEPTED"}`))
	require.NoError(t, err)
	assert.Nil(t, result.Data)

	_, err = decodeTask([]byte(`not json`))
	assert.Error(t, err)
}

func TestRedisTaskStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	store := NewRedisTaskStoreWithClient(client, time.Minute)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	processID := "test_" + time.Now().Format("150405.000000")
	defer store.Delete(ctx, processID)

	accepted := &TaskResult{
		ProcessID: processID,
		Type:      TaskTypeParse,
		Status:    TaskStatusAccepted,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Store(ctx, accepted))
	assert.ErrorIs(t, store.Store(ctx, accepted), ErrTaskExists)

	got, err := store.Get(ctx, processID)
	require.NoError(t, err)
	got.Status = TaskStatusSuccess
	got.Data = &ParseTaskData{Filename: "cv.pdf", Resume: &models.ResumeData{PersonalInfo: models.PersonalInfo{Name: "Jane"}}}
	require.NoError(t, store.Update(ctx, got))

	got, err = store.Get(ctx, processID)
	require.NoError(t, err)
	assert.Equal(t, TaskStatusSuccess, got.Status)
	assert.Equal(t, "Jane", got.Data.(*ParseTaskData).Resume.PersonalInfo.Name)

	ttl, err := client.TTL(ctx, taskKey(processID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	found := false
	for _, task := range tasks {
		if task.ProcessID == processID {
			found = true
		}
	}
	assert.True(t, found)

	assert.ErrorIs(t, store.Update(ctx, &TaskResult{ProcessID: processID + "_missing"}), ErrTaskNotFound)
	_, err = store.Get(ctx, processID+"_missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
