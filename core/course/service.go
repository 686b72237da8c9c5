package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/prefeitura-rio/gorio-admin/core"
)

// ErrNotFound is returned by repositories when the course API does not know the course.
var ErrNotFound = errors.New("course not found")

type (
	// Repository is the course API as seen by the service.
	Repository interface {
		ListCourses(ctx context.Context, filter ListFilter) (APIList, error)
		GetCourse(ctx context.Context, id int) (APICourse, error)
		CreateCourse(ctx context.Context, ac APICourse) (APICourse, error)
		UpdateCourse(ctx context.Context, id int, ac APICourse) (APICourse, error)
	}

	Service struct {
		repo   Repository
		now    func() time.Time
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, now: time.Now, logger: logger}
}

// decorate maps an upstream course and computes its display status.
func (svc *Service) decorate(ac APICourse, now time.Time) (Course, error) {
	c, err := FromAPI(ac)
	if err != nil {
		return Course{}, &core.InvalidUpstreamError{Service: "courses", Err: err}
	}
	c.DisplayStatus = Classify(now, c.Schedule())
	return c, nil
}

// List returns one page of courses. When filtering on a display status, the filter is applied
// after classification, so the page may hold fewer courses than requested. Courses the course
// API sent with unreadable data are logged and left out.
func (svc *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	filter.Clean()
	upstream := filter
	upstream.Status = ""
	list, err := svc.repo.ListCourses(ctx, upstream)
	if err != nil {
		return ListResult{}, errors.Wrap(err, "listing courses")
	}

	now := svc.now()
	res := ListResult{
		Data:    make([]Course, 0, len(list.Data)),
		Page:    list.Meta.Page,
		PerPage: list.Meta.PerPage,
		Total:   list.Meta.Total,

		Approximate: filter.Status != "",
	}
	for _, ac := range list.Data {
		c, err := svc.decorate(ac, now)
		if err != nil {
			svc.logger.Warn("skipping course", err, map[string]interface{}{"id": ac.ID})
			res.Approximate = true
			continue
		}
		if filter.Status != "" && c.DisplayStatus != filter.Status {
			continue
		}
		res.Data = append(res.Data, c)
	}
	return res, nil
}

func (svc *Service) Get(ctx context.Context, id int) (Course, error) {
	ac, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, errors.Wrapf(err, "getting course %d", id)
	}
	return svc.decorate(ac, svc.now())
}

// Create expects nc to be validated.
func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	ac, err := svc.repo.CreateCourse(ctx, nc.ToAPI())
	if err != nil {
		return Course{}, errors.Wrap(err, "creating course")
	}
	return svc.decorate(ac, svc.now())
}

// Update expects nc to be validated.
func (svc *Service) Update(ctx context.Context, id int, nc NewCourse) (Course, error) {
	ac, err := svc.repo.UpdateCourse(ctx, id, nc.ToAPI())
	if err != nil {
		return Course{}, errors.Wrapf(err, "updating course %d", id)
	}
	return svc.decorate(ac, svc.now())
}
