package systems

import (
	"errors"
	"sync"

	"github.com/spaghettifunk/prism/engine/core"
)

var (
	ErrNoWorkers           = errors.New("attempting to create worker pool with less than 1 worker")
	ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")
	ErrJobSystemClosed     = errors.New("job system is shut down")
)

/**
 * @brief A unit of work. Run executes on a worker goroutine; OnComplete
 * or OnFailure run later on the goroutine that calls Update, which is the
 * one owning the graphics device.
 */
type JobTask struct {
	Name       string
	Run        func() (interface{}, error)
	OnComplete func(result interface{})
	OnFailure  func(err error)
}

type jobResult struct {
	task   JobTask
	result interface{}
	err    error
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	mutex    sync.Mutex
	finished []jobResult

	// held for reading while submitting, so Shutdown waits for blocked senders
	closeMutex sync.RWMutex
	isClosed   bool
}

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}
	js.start()
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				result, err := job.Run()
				if err != nil {
					core.LogError("job %s failed: %s", job.Name, err)
				}
				js.mutex.Lock()
				js.finished = append(js.finished, jobResult{task: job, result: result, err: err})
				js.mutex.Unlock()
			}
		}()
	}
}

/**
 * @brief Shuts the job system down. Queued jobs still run; their
 * callbacks are dropped.
 */
func (js *JobSystem) Shutdown() error {
	js.closeMutex.Lock()
	if js.isClosed {
		js.closeMutex.Unlock()
		return nil
	}
	js.isClosed = true
	close(js.jobQueue)
	js.closeMutex.Unlock()

	js.wg.Wait()
	js.mutex.Lock()
	if n := len(js.finished); n > 0 {
		core.LogDebug("dropping %d finished jobs at shutdown", n)
	}
	js.finished = nil
	js.mutex.Unlock()
	return nil
}

/**
 * @brief Runs the callbacks of every finished job. Should happen once an
 * update cycle.
 * @return The number of callbacks that ran.
 */
func (js *JobSystem) Update() int {
	js.mutex.Lock()
	done := js.finished
	js.finished = nil
	js.mutex.Unlock()

	for _, r := range done {
		if r.err != nil {
			if r.task.OnFailure != nil {
				r.task.OnFailure(r.err)
			}
			continue
		}
		if r.task.OnComplete != nil {
			r.task.OnComplete(r.result)
		}
	}
	return len(done)
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks
 * while the queue is full.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	if jt.Run == nil {
		return errors.New("job has nothing to run")
	}
	js.closeMutex.RLock()
	defer js.closeMutex.RUnlock()
	if js.isClosed {
		return ErrJobSystemClosed
	}
	js.jobQueue <- jt
	return nil
}
