package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/golang/glog"
)

var (
	// ErrAlreadyExist error returns when Add attempts to add already existing report
	ErrAlreadyExist = errors.New("already exists")
	// ErrNotFound error returns when Get attempts to get a non existing report
	ErrNotFound = errors.New("not found")
)

type storeOp uint8

const (
	addReport storeOp = iota + 1
	removeReport
	getReport
	listReports
)

// Report describes the benchmark runs of one strategy and worker count.
type Report struct {
	Strategy string
	Workers  int
	Length   int
	Passes   int
	Runs     int
	Elapsed  time.Duration
}

// Key identifies the report by strategy and workers.
func (r *Report) Key() string {
	return fmt.Sprintf("%s/%d", r.Strategy, r.Workers)
}

// PerRun returns the average duration of a single run.
func (r *Report) PerRun() time.Duration {
	if r.Runs == 0 {
		return 0
	}
	return r.Elapsed / time.Duration(r.Runs)
}

// Manager defines methods of a reports registry, it is safe for concurrent use.
type Manager interface {
	Add(*Report) error
	Remove(string) error
	List() []*Report
	Get(string) (*Report, error)
	Stop()
}

var _ Manager = &reportStore{}

type mgrReply struct {
	reports []*Report
	err     error
}

type storeMsg struct {
	op      storeOp
	key     string
	report  *Report
	replyCh chan mgrReply
}

type reportStore struct {
	stopCh chan struct{}
	opCh   chan storeMsg
}

func (s *reportStore) call(msg storeMsg) mgrReply {
	msg.replyCh = make(chan mgrReply)
	s.opCh <- msg
	return <-msg.replyCh
}

func (s *reportStore) Add(r *Report) error {
	return s.call(storeMsg{op: addReport, key: r.Key(), report: r}).err
}

func (s *reportStore) Remove(key string) error {
	return s.call(storeMsg{op: removeReport, key: key}).err
}

func (s *reportStore) Get(key string) (*Report, error) {
	r := s.call(storeMsg{op: getReport, key: key})
	if r.err != nil {
		return nil, r.err
	}
	return r.reports[0], nil
}

// List returns all reports ordered by their average run duration, fastest first.
func (s *reportStore) List() []*Report {
	return s.call(storeMsg{op: listReports}).reports
}

func (s *reportStore) Stop() {
	close(s.stopCh)
}

func (s *reportStore) manager() {
	reports := make(map[string]*Report)
	for {
		select {
		case <-s.stopCh:
			return
		case msg := <-s.opCh:
			switch msg.op {
			case addReport:
				glog.V(6).Infof("Adding report: %s", msg.key)
				if _, ok := reports[msg.key]; ok {
					msg.replyCh <- mgrReply{err: fmt.Errorf("report %s %w", msg.key, ErrAlreadyExist)}
					continue
				}
				reports[msg.key] = msg.report
				msg.replyCh <- mgrReply{}
			case removeReport:
				glog.V(6).Infof("Removing report: %s", msg.key)
				if _, ok := reports[msg.key]; !ok {
					msg.replyCh <- mgrReply{err: fmt.Errorf("report %s %w", msg.key, ErrNotFound)}
					continue
				}
				delete(reports, msg.key)
				msg.replyCh <- mgrReply{}
			case getReport:
				glog.V(6).Infof("Getting report: %s", msg.key)
				r, ok := reports[msg.key]
				if !ok {
					msg.replyCh <- mgrReply{err: fmt.Errorf("report %s %w", msg.key, ErrNotFound)}
					continue
				}
				msg.replyCh <- mgrReply{reports: []*Report{r}}
			case listReports:
				l := make([]*Report, 0, len(reports))
				for _, r := range reports {
					l = append(l, r)
				}
				sort.Slice(l, func(i, j int) bool {
					if l[i].PerRun() != l[j].PerRun() {
						return l[i].PerRun() < l[j].PerRun()
					}
					return l[i].Key() < l[j].Key()
				})
				msg.replyCh <- mgrReply{reports: l}
			}
		}
	}
}

// NewStore returns a new instance of a reports registry.
func NewStore() Manager {
	s := &reportStore{
		stopCh: make(chan struct{}),
		opCh:   make(chan storeMsg),
	}
	// Starting store manager
	go s.manager()

	return s
}
