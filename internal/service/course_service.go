package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/domain"
)

// CourseService serves the question catalog and per-user progress
type CourseService struct {
	users    domain.UserRepository
	courses  domain.CourseRepository
	progress domain.ProgressRepository
	tracer   trace.Tracer
	logger   *zap.Logger
	now      func() time.Time
}

// NewCourseService creates a new course service
func NewCourseService(
	users domain.UserRepository,
	courses domain.CourseRepository,
	progress domain.ProgressRepository,
	tracer trace.Tracer,
	logger *zap.Logger,
) *CourseService {
	return &CourseService{
		users:    users,
		courses:  courses,
		progress: progress,
		tracer:   tracer,
		logger:   logger,
		now:      time.Now,
	}
}

// ListCourses returns every course without its questions
func (s *CourseService) ListCourses(ctx context.Context) ([]domain.CourseSummary, error) {
	ctx, span := s.tracer.Start(ctx, "CourseService.ListCourses")
	defer span.End()

	courses, err := s.courses.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CourseSummary, 0, len(courses))
	for _, c := range courses {
		out = append(out, domain.CourseSummary{
			ID:            c.ID,
			Slug:          c.Slug,
			Title:         c.Title,
			Description:   c.Description,
			QuestionCount: len(c.Questions),
		})
	}
	return out, nil
}

// GetCourse returns a course with the caller's progress on each question
func (s *CourseService) GetCourse(ctx context.Context, identity domain.Identity, slug string) (*domain.CourseDetail, error) {
	ctx, span := s.tracer.Start(ctx, "CourseService.GetCourse")
	defer span.End()
	span.SetAttributes(attribute.String("course.slug", slug))

	course, err := s.courses.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindOrCreateByExternalID(ctx, identity)
	if err != nil {
		return nil, err
	}
	rows, err := s.progress.FindByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[uuid.UUID]*domain.QuestionProgress, len(rows))
	for i := range rows {
		byQuestion[rows[i].QuestionID] = &rows[i]
	}

	detail := &domain.CourseDetail{
		ID:          course.ID,
		Slug:        course.Slug,
		Title:       course.Title,
		Description: course.Description,
		Questions:   make([]domain.QuestionResponse, 0, len(course.Questions)),
	}
	for i := range course.Questions {
		resp := course.Questions[i].ToResponse(byQuestion[course.Questions[i].ID])
		if resp.Solved {
			detail.Solved++
		}
		detail.Questions = append(detail.Questions, resp)
	}
	return detail, nil
}

// UpdateProgress marks a question solved or bookmarked for the caller.
// Fields left nil keep their stored value.
func (s *CourseService) UpdateProgress(ctx context.Context, identity domain.Identity, questionID uuid.UUID, update domain.ProgressUpdate) (*domain.QuestionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CourseService.UpdateProgress")
	defer span.End()
	span.SetAttributes(attribute.String("question.id", questionID.String()))

	if update.Empty() {
		return nil, domain.NewDomainError(domain.ErrInvalidInput, "nothing to update")
	}

	question, err := s.courses.FindQuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindOrCreateByExternalID(ctx, identity)
	if err != nil {
		return nil, err
	}

	progress, err := s.progress.Find(ctx, user.ID, questionID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = &domain.QuestionProgress{UserID: user.ID, QuestionID: questionID}
	}

	now := s.now()
	update.Apply(progress, now)
	progress.UpdatedAt = now
	if err := s.progress.Upsert(ctx, progress); err != nil {
		s.logger.Error("Failed to save progress",
			zap.String("user_id", user.ID.String()),
			zap.String("question_id", questionID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	resp := question.ToResponse(progress)
	return &resp, nil
}

// ListBookmarks returns the caller's bookmarked questions, most recent first
func (s *CourseService) ListBookmarks(ctx context.Context, identity domain.Identity) ([]domain.QuestionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CourseService.ListBookmarks")
	defer span.End()

	user, err := s.users.FindOrCreateByExternalID(ctx, identity)
	if err != nil {
		return nil, err
	}
	rows, err := s.progress.FindBookmarked(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.QuestionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].Question.ToResponse(&rows[i]))
	}
	return out, nil
}
