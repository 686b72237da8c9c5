package course

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/prefeitura-rio/gorio-admin/core"
	"github.com/prefeitura-rio/gorio-admin/core/markdown"
)

var (
	errInvalidDate = errors.New("invalid date")

	// layouts accepted from the course API, most specific first
	dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}
)

type (
	// APICourse is a course in the course API's shape.
	APICourse struct {
		ID                  int             `json:"id,omitempty"`
		Title               string          `json:"title"`
		Description         string          `json:"description"`
		Organization        string          `json:"organization"`
		Modalidade          string          `json:"modalidade"`
		Status              string          `json:"status"`
		EnrollmentStartDate *string         `json:"enrollment_start_date"`
		EnrollmentEndDate   *string         `json:"enrollment_end_date"`
		Workload            string          `json:"workload"`
		Locations           []APILocation   `json:"locations"`
		RemoteClass         *APIRemoteClass `json:"remote_class"`
		CreatedAt           *string         `json:"created_at,omitempty"`
		UpdatedAt           *string         `json:"updated_at,omitempty"`
	}

	APILocation struct {
		ID             int                `json:"id,omitempty"`
		Address        string             `json:"address"`
		Neighborhood   string             `json:"neighborhood"`
		ClassSchedules []APIClassSchedule `json:"class_schedules"`
	}

	APIRemoteClass struct {
		ClassSchedules []APIClassSchedule `json:"class_schedules"`
	}

	APIClassSchedule struct {
		ClassStartDate *string `json:"class_start_date"`
		ClassEndDate   *string `json:"class_end_date"`
		ClassTime      string  `json:"class_time"`
		ClassDays      string  `json:"class_days"`
		Vacancies      int     `json:"vacancies"`
	}

	// APIList is one page of the course API listing.
	APIList struct {
		Data []APICourse `json:"data"`
		Meta struct {
			Page    int `json:"page"`
			PerPage int `json:"per_page"`
			Total   int `json:"total"`
		} `json:"meta"`
	}
)

// FromAPI maps an upstream course to the console's shape. Dates that cannot be parsed are
// reported as field errors instead of being dropped. The display status is left for the caller.
func FromAPI(ac APICourse) (Course, error) {
	var fldErrs []core.FieldError
	date := func(field string, raw *string) *time.Time {
		t, err := parseDate(raw)
		if err != nil {
			fldErrs = append(fldErrs, core.FieldError{Field: field, Error: err.Error()})
		}
		return t
	}
	schedules := func(field string, in []APIClassSchedule) []ClassSchedule {
		out := make([]ClassSchedule, 0, len(in))
		for _, acs := range in {
			out = append(out, ClassSchedule{
				Start:     date(field+".class_start_date", acs.ClassStartDate),
				End:       date(field+".class_end_date", acs.ClassEndDate),
				ClassTime: acs.ClassTime,
				ClassDays: acs.ClassDays,
				Vacancies: acs.Vacancies,
			})
		}
		return out
	}

	c := Course{
		ID:              ac.ID,
		Title:           ac.Title,
		Description:     ac.Description,
		DescriptionHTML: markdown.FromMarkdownHTML(ac.Description),
		Organization:    ac.Organization,
		Modality:        Modality(strings.ToUpper(ac.Modalidade)),
		Status:          RawStatus(ac.Status),
		EnrollmentStart: date("enrollment_start_date", ac.EnrollmentStartDate),
		EnrollmentEnd:   date("enrollment_end_date", ac.EnrollmentEndDate),
		Workload:        ac.Workload,
		Locations:       make([]Location, 0, len(ac.Locations)),
		CreatedAt:       date("created_at", ac.CreatedAt),
		UpdatedAt:       date("updated_at", ac.UpdatedAt),
	}
	for _, al := range ac.Locations {
		c.Locations = append(c.Locations, Location{
			ID:           al.ID,
			Address:      al.Address,
			Neighborhood: al.Neighborhood,
			Schedules:    schedules("locations.class_schedules", al.ClassSchedules),
		})
	}
	if ac.RemoteClass != nil {
		c.RemoteClass = &RemoteClass{Schedules: schedules("remote_class.class_schedules", ac.RemoteClass.ClassSchedules)}
	}

	if fldErrs != nil {
		return Course{}, core.NewValidationError(errors.Errorf("course %d: invalid upstream data", ac.ID), fldErrs...)
	}
	return c, nil
}

// ToAPI maps a validated NewCourse to the course API's shape.
func (nc NewCourse) ToAPI() APICourse {
	schedules := func(in []ClassSchedule) []APIClassSchedule {
		out := make([]APIClassSchedule, 0, len(in))
		for _, cs := range in {
			out = append(out, APIClassSchedule{
				ClassStartDate: formatDate(cs.Start),
				ClassEndDate:   formatDate(cs.End),
				ClassTime:      cs.ClassTime,
				ClassDays:      cs.ClassDays,
				Vacancies:      cs.Vacancies,
			})
		}
		return out
	}

	ac := APICourse{
		Title:               nc.Title,
		Description:         nc.Description,
		Organization:        nc.Organization,
		Modalidade:          string(nc.Modality),
		Status:              string(nc.Status),
		EnrollmentStartDate: formatDate(nc.EnrollmentStart),
		EnrollmentEndDate:   formatDate(nc.EnrollmentEnd),
		Workload:            nc.Workload,
		Locations:           make([]APILocation, 0, len(nc.Locations)),
	}
	for _, loc := range nc.Locations {
		ac.Locations = append(ac.Locations, APILocation{
			ID:             loc.ID,
			Address:        loc.Address,
			Neighborhood:   loc.Neighborhood,
			ClassSchedules: schedules(loc.Schedules),
		})
	}
	if nc.RemoteClass != nil {
		ac.RemoteClass = &APIRemoteClass{ClassSchedules: schedules(nc.RemoteClass.Schedules)}
	}
	return ac
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errors.Wrap(errInvalidDate, s)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
