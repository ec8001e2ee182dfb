package video

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"ytdigest/models"
)

// ErrQueueFull is returned when the job queue is at capacity.
var ErrQueueFull = errors.New("job queue is full")

// processJob is one queued pipeline run. fromStatus records the status read
// at dispatch time; the run only starts if the stored status still matches.
type processJob struct {
	video      *models.Video
	fromStatus models.Status
	enqueuedAt time.Time
}

type jobQueue struct {
	jobs   chan *processJob
	quit   chan struct{}
	wg     sync.WaitGroup
	logger *logrus.Logger

	closeOnce sync.Once
}

func newJobQueue(maxQueueSize int) *jobQueue {
	return &jobQueue{
		jobs:   make(chan *processJob, maxQueueSize),
		quit:   make(chan struct{}),
		logger: logrus.StandardLogger(),
	}
}

// Start begins processing jobs with the given number of workers.
func (q *jobQueue) Start(workers int, processFunc func(*processJob)) {
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(i, processFunc)
	}
}

// Submit adds a job to the queue without blocking.
func (q *jobQueue) Submit(job *processJob) error {
	job.enqueuedAt = time.Now()
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *jobQueue) worker(id int, processFunc func(*processJob)) {
	defer q.wg.Done()

	log := q.logger.WithField("worker_id", id)
	log.Debug("Starting worker")

	for {
		select {
		case <-q.quit:
			log.Debug("Worker shutting down")
			return
		case job := <-q.jobs:
			start := time.Now()
			log.WithFields(logrus.Fields{
				"video_id":   job.video.ID,
				"queue_wait": start.Sub(job.enqueuedAt),
			}).Info("Processing job")

			processFunc(job)

			log.WithFields(logrus.Fields{
				"video_id": job.video.ID,
				"duration": time.Since(start),
			}).Info("Job finished")
		}
	}
}

// Close stops the workers. Queued jobs that have not started are dropped;
// their videos remain in their dispatch-time state.
func (q *jobQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.quit)
	})
	q.wg.Wait()
}
