package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/prefeitura-rio/gorio-admin/core"
	"github.com/prefeitura-rio/gorio-admin/core/markdown"
)

type (
	Modality      string
	RawStatus     string
	DisplayStatus string
)

// Modalities
const (
	ModalityOnline              Modality = "ONLINE"
	ModalityPresencial          Modality = "PRESENCIAL"
	ModalitySemipresencial      Modality = "SEMIPRESENCIAL"
	ModalityLivreFormacaoOnline Modality = "LIVRE_FORMACAO_ONLINE"
)

// Raw statuses, as stored by the course API. Upper-case values come from older records.
const (
	StatusDraft     RawStatus = "draft"
	StatusOpened    RawStatus = "opened"
	StatusClosed    RawStatus = "closed"
	StatusCanceled  RawStatus = "canceled"
	StatusAberto    RawStatus = "ABERTO"
	StatusCriado    RawStatus = "CRIADO"
	StatusEncerrado RawStatus = "ENCERRADO"
)

// Display statuses. Any raw status other than opened/ABERTO is displayed as is.
const (
	Scheduled            DisplayStatus = "scheduled"
	AcceptingEnrollments DisplayStatus = "accepting_enrollments"
	InProgress           DisplayStatus = "in_progress"
	Finished             DisplayStatus = "finished"
	Opened               DisplayStatus = "opened"
)

var (
	Modalities    = []Modality{ModalityOnline, ModalityPresencial, ModalitySemipresencial, ModalityLivreFormacaoOnline}
	RawStatuses   = []RawStatus{StatusDraft, StatusOpened, StatusClosed, StatusCanceled, StatusAberto, StatusCriado, StatusEncerrado}
	DisplayValues = []DisplayStatus{
		DisplayStatus(StatusDraft), Scheduled, AcceptingEnrollments, InProgress, Finished,
		DisplayStatus(StatusClosed), DisplayStatus(StatusCanceled), Opened,
		DisplayStatus(StatusAberto), DisplayStatus(StatusCriado), DisplayStatus(StatusEncerrado),
	}
)

func (st RawStatus) isOpened() bool {
	return st == StatusOpened || st == StatusAberto
}

type (
	// ClassWindow is the date range of one class schedule. Either end may be unknown.
	ClassWindow struct {
		Start *time.Time
		End   *time.Time
	}

	// Schedule is what the status classifier looks at.
	Schedule struct {
		EnrollmentStart *time.Time
		EnrollmentEnd   *time.Time
		ClassWindows    []ClassWindow
		Modality        Modality
		RawStatus       RawStatus
	}
)

type (
	Course struct {
		ID              int           `json:"id"`
		Title           string        `json:"title"`
		Description     string        `json:"description"` // markdown
		DescriptionHTML string        `json:"descriptionHTML"`
		Organization    string        `json:"organization"`
		Modality        Modality      `json:"modality"`
		Status          RawStatus     `json:"status"`
		DisplayStatus   DisplayStatus `json:"displayStatus"`
		EnrollmentStart *time.Time    `json:"enrollmentStart"`
		EnrollmentEnd   *time.Time    `json:"enrollmentEnd"`
		Workload        string        `json:"workload"`
		Locations       []Location    `json:"locations"`
		RemoteClass     *RemoteClass  `json:"remoteClass"`
		CreatedAt       *time.Time    `json:"createdAt,omitempty"`
		UpdatedAt       *time.Time    `json:"updatedAt,omitempty"`
	}

	Location struct {
		ID           int             `json:"id,omitempty"`
		Address      string          `json:"address" validate:"required"`
		Neighborhood string          `json:"neighborhood"`
		Schedules    []ClassSchedule `json:"schedules" validate:"dive"`
	}

	RemoteClass struct {
		Schedules []ClassSchedule `json:"schedules" validate:"dive"`
	}

	ClassSchedule struct {
		Start     *time.Time `json:"start"`
		End       *time.Time `json:"end"`
		ClassTime string     `json:"classTime"`
		ClassDays string     `json:"classDays"`
		Vacancies int        `json:"vacancies" validate:"gte=0"`
	}
)

// Schedule collects every class window of every location and of the remote class.
func (c Course) Schedule() Schedule {
	s := Schedule{
		EnrollmentStart: c.EnrollmentStart,
		EnrollmentEnd:   c.EnrollmentEnd,
		Modality:        c.Modality,
		RawStatus:       c.Status,
	}
	add := func(schedules []ClassSchedule) {
		for _, cs := range schedules {
			s.ClassWindows = append(s.ClassWindows, ClassWindow{Start: cs.Start, End: cs.End})
		}
	}
	for _, loc := range c.Locations {
		add(loc.Schedules)
	}
	if c.RemoteClass != nil {
		add(c.RemoteClass.Schedules)
	}
	return s
}

// NewCourse contains the information needed to create or replace a Course.
// The description may be sent either as Markdown or as the editor's document.
type NewCourse struct {
	Title           string         `json:"title" validate:"required,max=255"`
	Description     string         `json:"description"`
	DescriptionDoc  *markdown.Node `json:"descriptionDoc"`
	Organization    string         `json:"organization" validate:"required"`
	Modality        Modality       `json:"modality" validate:"required,modality"`
	Status          RawStatus      `json:"status" validate:"required,coursestatus"`
	EnrollmentStart *time.Time     `json:"enrollmentStart"`
	EnrollmentEnd   *time.Time     `json:"enrollmentEnd"`
	Workload        string         `json:"workload"`
	Locations       []Location     `json:"locations" validate:"dive"`
	RemoteClass     *RemoteClass   `json:"remoteClass"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Organization = core.CleanString(nc.Organization)
	if nc.DescriptionDoc != nil {
		nc.Description = markdown.ToMarkdown(*nc.DescriptionDoc)
		nc.DescriptionDoc = nil
	}
	return validate.Struct(nc)
}

// ListFilter narrows a course listing. Status matches the display status.
type ListFilter struct {
	Search  string        `query:"search"`
	Status  DisplayStatus `query:"status" validate:"omitempty,displaystatus"`
	Page    int           `query:"page" validate:"gte=0"`
	PerPage int           `query:"per_page" validate:"gte=0,lte=100"`
}

func (lf *ListFilter) Clean() {
	lf.Search = core.CleanString(lf.Search)
	if lf.Page < 1 {
		lf.Page = 1
	}
	if lf.PerPage < 1 {
		lf.PerPage = 20
	}
}

// ListResult is one page of courses. Total is the course API's count; it is Approximate when
// the page was filtered on display status or courses were skipped.
type ListResult struct {
	Data        []Course `json:"data"`
	Page        int      `json:"page"`
	PerPage     int      `json:"perPage"`
	Total       int      `json:"total"`
	Approximate bool     `json:"approximate,omitempty"`
}
