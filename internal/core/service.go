package core

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// MaxImportRows is the hard ceiling on rows in one import batch.
const MaxImportRows = 200

// DefaultImportTimeout is the maximum duration for one import operation.
const DefaultImportTimeout = 2 * time.Minute

// Options configures a Service. Zero values select defaults.
type Options struct {
	// EnforceOwnership restricts updates and deletes to the owning agent.
	EnforceOwnership bool

	// MaxImportRows lowers the import ceiling below MaxImportRows.
	MaxImportRows int

	// ImportTimeout bounds one import, including the batch insert.
	ImportTimeout time.Duration

	Clock    Clock
	Recorder Recorder
	Logger   *slog.Logger

	// Limiter bounds concurrent imports. Nil means unbounded.
	Limiter *ImportLimiter

	// NewID generates lead and history ids.
	NewID func() uuid.UUID
}

// Service provides the business logic for buyer lead management.
type Service struct {
	store            Store
	enforceOwnership bool
	maxImportRows    int
	importTimeout    time.Duration
	now              Clock
	rec              Recorder
	log              *slog.Logger
	limiter          *ImportLimiter
	newID            func() uuid.UUID
}

// NewService creates a new Service instance.
func NewService(store Store, opts Options) *Service {
	s := &Service{
		store:            store,
		enforceOwnership: opts.EnforceOwnership,
		maxImportRows:    opts.MaxImportRows,
		importTimeout:    opts.ImportTimeout,
		now:              opts.Clock,
		rec:              opts.Recorder,
		log:              opts.Logger,
		limiter:          opts.Limiter,
		newID:            opts.NewID,
	}
	if s.maxImportRows <= 0 || s.maxImportRows > MaxImportRows {
		s.maxImportRows = MaxImportRows
	}
	if s.importTimeout <= 0 {
		s.importTimeout = DefaultImportTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.rec == nil {
		s.rec = nopRecorder{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.newID == nil {
		s.newID = uuid.New
	}
	return s
}

// Limiter returns the import limiter, or nil when imports are unbounded.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

func (s *Service) timestamp() time.Time {
	return Timestamp(s.now())
}

// checkOwner returns a PermissionError when ownership is enforced and the
// actor is not the owner.
func (s *Service) checkOwner(id, owner, actor uuid.UUID) error {
	if !s.enforceOwnership || owner == actor {
		return nil
	}
	return &PermissionError{ID: id, ActorID: actor}
}
