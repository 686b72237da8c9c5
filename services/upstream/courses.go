package upstream

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sendgrid/rest"

	"github.com/prefeitura-rio/gorio-admin/core"
	"github.com/prefeitura-rio/gorio-admin/core/course"
)

// CourseAPI is the course backend of the GO Rio platform.
type CourseAPI struct {
	*Client
}

var _ course.Repository = (*CourseAPI)(nil)

func NewCourseAPI(baseURL string, timeout time.Duration) *CourseAPI {
	return &CourseAPI{NewClient("course-api", baseURL, timeout)}
}

func notFound(err error) error {
	if core.IsUpstreamNotFound(err) {
		return course.ErrNotFound
	}
	return err
}

func (api *CourseAPI) ListCourses(ctx context.Context, filter course.ListFilter) (course.APIList, error) {
	query := map[string]string{
		"page":     strconv.Itoa(filter.Page),
		"per_page": strconv.Itoa(filter.PerPage),
	}
	if filter.Search != "" {
		query["search"] = filter.Search
	}
	var list course.APIList
	err := api.sendJSON(ctx, rest.Get, "/api/v1/courses", query, nil, &list)
	return list, err
}

func (api *CourseAPI) GetCourse(ctx context.Context, id int) (course.APICourse, error) {
	var ac course.APICourse
	err := api.sendJSON(ctx, rest.Get, fmt.Sprintf("/api/v1/courses/%d", id), nil, nil, &ac)
	return ac, notFound(err)
}

func (api *CourseAPI) CreateCourse(ctx context.Context, ac course.APICourse) (course.APICourse, error) {
	var created course.APICourse
	err := api.sendJSON(ctx, rest.Post, "/api/v1/courses", nil, ac, &created)
	return created, err
}

func (api *CourseAPI) UpdateCourse(ctx context.Context, id int, ac course.APICourse) (course.APICourse, error) {
	var updated course.APICourse
	err := api.sendJSON(ctx, rest.Put, fmt.Sprintf("/api/v1/courses/%d", id), nil, ac, &updated)
	return updated, notFound(err)
}
