package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/offering-registry/internal/domain"
	"github.com/spec-kit/offering-registry/internal/events"
	"github.com/spec-kit/offering-registry/internal/observability"
	"github.com/spec-kit/offering-registry/internal/repository"
	apperrors "github.com/spec-kit/offering-registry/pkg/util"
)

// ErrDuplicateOffering is returned under the reject policy when an ACTIVE offering
// for the same course, program and semester already exists.
var ErrDuplicateOffering = errors.New("duplicate offering")

// OfferingService registers a course for a set of programs in one transaction.
type OfferingService struct {
	store            repository.OfferingStore
	dispatcher       events.Dispatcher
	logger           *zap.Logger
	metrics          *observability.Metrics
	validate         *validator.Validate
	rejectDuplicates bool
}

// OfferingDependencies bundles collaborators for the offering service.
type OfferingDependencies struct {
	Store            repository.OfferingStore
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
	Metrics          *observability.Metrics
	RejectDuplicates bool
}

// RegistrationRequest is one submission of the offering form.
type RegistrationRequest struct {
	CourseID       string
	ProgramIDs     []string
	Semester       int
	DepartmentCode string
	BasketID       *string
}

// RegistrationResult reports a committed submission.
type RegistrationResult struct {
	SubmissionID  string
	InsertedCount int
}

// registrationInput is the normalized request. Field order decides which
// problem is reported first.
type registrationInput struct {
	CourseID       string   `validate:"required"`
	ProgramIDs     []string `validate:"min=1"`
	DepartmentCode string   `validate:"required"`
	Semester       int      `validate:"min=1,max=8"`
	BasketID       *string
}

var validationMessages = map[string]string{
	"CourseID":       "missing course",
	"ProgramIDs":     "missing programs",
	"DepartmentCode": "missing department",
	"Semester":       fmt.Sprintf("semester must be between %d and %d", domain.MinSemester, domain.MaxSemester),
}

// NewOfferingService constructs the service.
func NewOfferingService(deps OfferingDependencies) *OfferingService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferingService{
		store:            deps.Store,
		dispatcher:       deps.Dispatcher,
		logger:           logger,
		metrics:          deps.Metrics,
		validate:         validator.New(),
		rejectDuplicates: deps.RejectDuplicates,
	}
}

// RegisterOffering inserts one ACTIVE offering row per program. Either every row
// is committed or none is.
func (s *OfferingService) RegisterOffering(ctx context.Context, req RegistrationRequest) (*RegistrationResult, error) {
	start := time.Now()

	input, err := s.normalize(req)
	if err != nil {
		s.metrics.RecordRegistration(observability.OutcomeInvalidRequest, 0, time.Since(start))
		return nil, err
	}

	submissionID := uuid.NewString()
	logger := s.logger.With(
		zap.String("submission_id", submissionID),
		zap.String("course_id", input.CourseID),
		zap.Int("semester", input.Semester),
		zap.Int("programs", len(input.ProgramIDs)),
	)

	inserted := 0
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.OfferingTx) error {
		for _, programID := range input.ProgramIDs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if s.rejectDuplicates {
				exists, err := tx.ExistsActive(ctx, input.CourseID, programID, input.Semester)
				if err != nil {
					return err
				}
				if exists {
					return fmt.Errorf("%w: course %s already offered to program %s in semester %d",
						ErrDuplicateOffering, input.CourseID, programID, input.Semester)
				}
			}
			offering := &domain.CourseOffering{
				CourseID:           input.CourseID,
				ProgramID:          programID,
				Semester:           input.Semester,
				BasketID:           input.BasketID,
				OfferingDepartment: input.DepartmentCode,
				Status:             domain.OfferingStatusActive,
			}
			if err := tx.Insert(ctx, offering); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		storageErr := apperrors.NewStorageError(err,
			repository.IsConstraintViolation(err) || errors.Is(err, ErrDuplicateOffering))
		logger.Warn("offering registration rolled back", zap.Int("attempted", inserted), zap.Error(err))
		s.metrics.RecordRegistration(observability.OutcomeStorageError, 0, time.Since(start))
		s.publish(ctx, events.Event{
			Type:         events.EventOfferingRegistrationFailed,
			SubmissionID: submissionID,
			Payload: events.OfferingRegistrationFailedPayload{
				CourseID: input.CourseID,
				Code:     apperrors.CodeStorageError,
				Message:  storageErr.Error(),
			},
		})
		return nil, storageErr
	}

	logger.Info("offering registered", zap.Int("inserted", inserted))
	s.metrics.RecordRegistration(observability.OutcomeSuccess, inserted, time.Since(start))
	s.publish(ctx, events.Event{
		Type:         events.EventOfferingsRegistered,
		SubmissionID: submissionID,
		Payload: events.OfferingsRegisteredPayload{
			CourseID:       input.CourseID,
			ProgramIDs:     input.ProgramIDs,
			Semester:       input.Semester,
			DepartmentCode: input.DepartmentCode,
			BasketID:       input.BasketID,
			InsertedCount:  inserted,
		},
	})

	return &RegistrationResult{SubmissionID: submissionID, InsertedCount: inserted}, nil
}

// ListByCourse returns the offerings recorded for a course, oldest first.
func (s *OfferingService) ListByCourse(ctx context.Context, courseID string) ([]domain.CourseOffering, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, apperrors.NewInvalidRequest(validationMessages["CourseID"])
	}
	offerings, err := s.store.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, apperrors.NewStorageError(err, false)
	}
	return offerings, nil
}

func (s *OfferingService) normalize(req RegistrationRequest) (*registrationInput, error) {
	input := &registrationInput{
		CourseID:       strings.TrimSpace(req.CourseID),
		ProgramIDs:     uniquePrograms(req.ProgramIDs),
		DepartmentCode: strings.TrimSpace(req.DepartmentCode),
		Semester:       req.Semester,
	}
	if req.BasketID != nil {
		if basket := strings.TrimSpace(*req.BasketID); basket != "" {
			input.BasketID = &basket
		}
	}

	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			if msg, ok := validationMessages[verrs[0].StructField()]; ok {
				return nil, apperrors.NewInvalidRequest(msg)
			}
		}
		return nil, apperrors.NewInternalError(err)
	}
	return input, nil
}

// uniquePrograms trims ids, drops blanks and keeps the first occurrence of each.
func uniquePrograms(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func (s *OfferingService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	if err := s.dispatcher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("submission_id", event.SubmissionID),
			zap.Error(err))
	}
}
