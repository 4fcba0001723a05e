package pool

import (
	"errors"
	"sync"

	"github.com/golang/glog"
)

var (
	// ErrInvalidSize error returns when New is asked for a pool without workers
	ErrInvalidSize = errors.New("pool size must be positive")
	// ErrClosed error returns when Execute is called on a closed pool
	ErrClosed = errors.New("pool is closed")
)

// Job is a unit of work executed by one of the pool's workers.
type Job func()

// Option configures a Pool.
type Option func(*Pool)

// WithPanicHandler sets the function called with the recovered value when a job panics.
// The worker which ran the job keeps serving the queue.
func WithPanicHandler(h func(interface{})) Option {
	return func(p *Pool) { p.panicHandler = h }
}

// WithQueueSize sets the capacity of the job channel, 0 makes submission synchronous.
func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n >= 0 {
			p.queueSize = n
		}
	}
}

// Pool is a fixed set of long-lived workers consuming jobs from a single shared channel.
type Pool struct {
	size         int
	queueSize    int
	panicHandler func(interface{})
	jobs         chan Job
	wg           sync.WaitGroup
	// mu protects closed and makes sure no Execute sends on a closed channel
	mu     sync.RWMutex
	closed bool
}

// New starts a pool of n workers. Workers live until Close is called.
func New(n int, opts ...Option) (*Pool, error) {
	if n <= 0 {
		return nil, ErrInvalidSize
	}
	p := &Pool{
		size:      n,
		queueSize: 2 * n,
		panicHandler: func(v interface{}) {
			glog.Errorf("pool job panicked: %+v", v)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.jobs = make(chan Job, p.queueSize)
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker(i)
	}
	glog.V(5).Infof("pool with %d workers started", n)

	return p, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Execute enqueues job, it blocks while the queue is full.
func (p *Pool) Execute(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	p.jobs <- job

	return nil
}

// Close closes the submission side and waits for every worker to drain the queue and exit.
// Calling Close multiple times is safe.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	glog.V(5).Infof("pool with %d workers stopped", p.size)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	// Receive only fails once the channel is closed and drained
	for job := range p.jobs {
		p.run(job)
	}
	glog.V(6).Infof("pool worker %d exited", id)
}

func (p *Pool) run(job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.panicHandler(r)
		}
	}()
	job()
}
