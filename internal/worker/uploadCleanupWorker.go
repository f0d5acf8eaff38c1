package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/dkolesni/eventboard/pkg/objectstore"
	"github.com/dkolesni/eventboard/pkg/queue"

	"github.com/sirupsen/logrus"
)

const deleteTimeout = 10 * time.Second

// UploadCleanupWorker consumes delete_object tasks and removes orphaned
// blobs from the object store: uploads whose event insert failed, and images
// of deleted or re-imaged events.
type UploadCleanupWorker struct {
	tasks queue.Queue
	store objectstore.Store
}

func NewUploadCleanupWorker(tasks queue.Queue, store objectstore.Store) *UploadCleanupWorker {
	return &UploadCleanupWorker{
		tasks: tasks,
		store: store,
	}
}

// Start blocks consuming cleanup tasks until ctx is cancelled.
func (w *UploadCleanupWorker) Start(ctx context.Context) {
	logrus.Info("Upload cleanup worker started")

	if err := w.tasks.Subscribe(ctx, w.handleTask); err != nil && ctx.Err() == nil {
		logrus.Errorf("Upload cleanup worker stopped with error: %v", err)
		return
	}

	logrus.Info("Upload cleanup worker stopped")
}

func (w *UploadCleanupWorker) handleTask(task *queue.Task) error {
	if task.Type != queue.TaskTypeDeleteObject {
		logrus.Warnf("Skipping task %s with unexpected type %s", task.ID, task.Type)
		return nil
	}

	key, ok := task.Data["key"].(string)
	if !ok || key == "" {
		// Non-retryable: the payload is unusable.
		return fmt.Errorf("invalid cleanup task %s: missing object key", task.ID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
	defer cancel()

	if err := w.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	logrus.Debugf("Orphaned object %s removed", key)
	return nil
}
