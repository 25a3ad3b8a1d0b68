package repair

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/technova/internal/kvstore"
)

type Service interface {
	List(ctx context.Context, filter Filter) ([]Job, error)
	Board(ctx context.Context, filter Filter) ([]Column, error)
	Get(ctx context.Context, id string) (*Job, error)
	Template(ctx context.Context) (*Job, error)
	Create(ctx context.Context, job Job) (*Job, error)
	Save(ctx context.Context, job Job) (*Job, error)
	Move(ctx context.Context, id string, to Status) (*Job, error)
	QuickFinish(ctx context.Context, id string) (*Job, error)
	Delete(ctx context.Context, id string) error
	Lookup(ctx context.Context, id string) (*Job, error)
}

// service stores every repair job as one list in the shared kv scope.
type service struct {
	mu   sync.Mutex
	jobs *kvstore.Binding[[]Job]
	now  func() time.Time
}

func NewService(backend kvstore.Backend) Service {
	return &service{
		jobs: kvstore.NewBinding(backend, kvstore.KeyRepairs, []Job{}),
		now:  time.Now,
	}
}

func (s *service) List(ctx context.Context, filter Filter) ([]Job, error) {
	jobs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		if filter.Matches(j) {
			filtered = append(filtered, j)
		}
	}

	return filtered, nil
}

// Board filters first and then partitions into columns.
func (s *service) Board(ctx context.Context, filter Filter) ([]Column, error) {
	jobs, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return Partition(jobs), nil
}

func (s *service) Get(ctx context.Context, id string) (*Job, error) {
	jobs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(jobs, id)
	if idx < 0 {
		log.Warn().Str("repair_id", id).Msg("service: repair job not found")
		return nil, ErrNotFound
	}

	return &jobs[idx], nil
}

// Template returns a blank job with a fresh id for the create form.
func (s *service) Template(ctx context.Context) (*Job, error) {
	jobs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	id, err := uniqueID(jobs)
	if err != nil {
		return nil, err
	}

	return &Job{
		ID:        id,
		Status:    StatusReceived,
		Progress:  0,
		Parts:     []Part{},
		EntryDate: s.now().UTC().Format(time.RFC3339),
	}, nil
}

// Create adds a new job. An id already on the board is refused.
func (s *service) Create(ctx context.Context, job Job) (*Job, error) {
	return s.put(ctx, job, false)
}

// Save creates the job when its id is unknown and replaces it otherwise.
func (s *service) Save(ctx context.Context, job Job) (*Job, error) {
	return s.put(ctx, job, true)
}

func (s *service) put(ctx context.Context, job Job, replace bool) (*Job, error) {
	if err := job.prepare(); err != nil {
		log.Warn().Err(err).Str("repair_id", job.ID).Msg("service: repair form rejected")
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if job.ID == "" {
		if job.ID, err = uniqueID(jobs); err != nil {
			return nil, err
		}
	} else if !ValidID(job.ID) {
		return nil, fmt.Errorf("%w: id must look like WX-0000", ErrInvalidField)
	}

	idx := indexOf(jobs, job.ID)
	if idx >= 0 && !replace {
		log.Warn().Str("repair_id", job.ID).Msg("service: repair job id already taken")
		return nil, ErrDuplicateID
	}
	if idx < 0 {
		if job.EntryDate == "" {
			job.EntryDate = s.now().UTC().Format(time.RFC3339)
		}
		jobs = append([]Job{job}, jobs...)
		log.Info().Str("repair_id", job.ID).Str("device", job.Device).Msg("service: repair job created")
	} else {
		if job.EntryDate == "" {
			job.EntryDate = jobs[idx].EntryDate
		}
		jobs[idx] = job
		log.Info().Str("repair_id", job.ID).Stringer("status", job.Status).Msg("service: repair job updated")
	}

	if err := s.save(ctx, jobs); err != nil {
		return nil, err
	}

	return &job, nil
}

// Move is the drag-and-drop transition onto a board column.
func (s *service) Move(ctx context.Context, id string, to Status) (*Job, error) {
	return s.transition(ctx, id, moveDrop, to)
}

func (s *service) QuickFinish(ctx context.Context, id string) (*Job, error) {
	return s.transition(ctx, id, moveQuickFinish, StatusFinished)
}

func (s *service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.load(ctx)
	if err != nil {
		return err
	}

	idx := indexOf(jobs, id)
	if idx < 0 {
		return ErrNotFound
	}

	jobs = slices.Delete(jobs, idx, idx+1)
	if err := s.save(ctx, jobs); err != nil {
		return err
	}

	log.Info().Str("repair_id", id).Msg("service: repair job deleted")

	return nil
}

// Lookup serves the customer-facing status page. Jobs not flagged public
// are reported as missing.
func (s *service) Lookup(ctx context.Context, id string) (*Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.IsPublic {
		return nil, ErrNotFound
	}

	return job, nil
}

func (s *service) transition(ctx context.Context, id string, m move, to Status) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(jobs, id)
	if idx < 0 {
		log.Warn().Str("repair_id", id).Stringer("new_status", to).Msg("service: repair job not found, cannot move")
		return nil, ErrNotFound
	}

	job := &jobs[idx]
	from := job.Status
	if !canMove(m, from, to) {
		log.Warn().
			Str("repair_id", id).
			Str("move", string(m)).
			Stringer("current_status", from).
			Stringer("new_status", to).
			Msg("service: invalid repair transition attempt")
		return nil, fmt.Errorf("%w: %s from %s to %s", ErrInvalidTransition, m, from, to)
	}

	applyMove(job, m, to, s.now())

	if err := s.save(ctx, jobs); err != nil {
		return nil, err
	}

	log.Info().Str("repair_id", id).Stringer("old_status", from).Stringer("new_status", to).Msg("service: repair job moved")

	moved := *job
	return &moved, nil
}

func (s *service) load(ctx context.Context) ([]Job, error) {
	jobs, err := s.jobs.Load(ctx, kvstore.SharedScope)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to load repair jobs")
		return nil, fmt.Errorf("service: failed to load repair jobs: %w", err)
	}
	return jobs, nil
}

func (s *service) save(ctx context.Context, jobs []Job) error {
	if err := s.jobs.Save(ctx, kvstore.SharedScope, jobs); err != nil {
		log.Error().Err(err).Msg("service: failed to save repair jobs")
		return fmt.Errorf("service: failed to save repair jobs: %w", err)
	}
	return nil
}

func indexOf(jobs []Job, id string) int {
	return slices.IndexFunc(jobs, func(j Job) bool { return j.ID == id })
}

const randomIDAttempts = 100

// uniqueID draws random ids first and falls back to the lowest free one.
func uniqueID(jobs []Job) (string, error) {
	taken := make(map[string]struct{}, len(jobs))
	for _, j := range jobs {
		taken[j.ID] = struct{}{}
	}

	for range randomIDAttempts {
		id := randomID()
		if _, ok := taken[id]; !ok {
			return id, nil
		}
	}

	for n := range maxIDs {
		id := formatID(n)
		if _, ok := taken[id]; !ok {
			return id, nil
		}
	}

	log.Error().Int("jobs", len(jobs)).Msg("service: every repair id is taken")
	return "", ErrNoFreeID
}
