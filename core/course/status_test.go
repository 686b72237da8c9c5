package course

import (
	"testing"
	"time"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestClassify(t *testing.T) {
	enrollEnd := date("2025-02-28")

	tests := []struct {
		name string
		now  *time.Time
		s    Schedule
		want DisplayStatus
	}{
		{
			name: "scheduled",
			now:  date("2025-01-01"),
			s:    Schedule{EnrollmentStart: date("2025-02-01"), RawStatus: StatusOpened},
			want: Scheduled,
		},
		{
			name: "accepting enrollments",
			now:  date("2025-02-05"),
			s:    Schedule{EnrollmentStart: date("2025-02-01"), EnrollmentEnd: enrollEnd, RawStatus: StatusOpened},
			want: AcceptingEnrollments,
		},
		{
			name: "accepting enrollments on the last day",
			now:  enrollEnd,
			s:    Schedule{EnrollmentStart: date("2025-02-01"), EnrollmentEnd: enrollEnd, RawStatus: StatusAberto},
			want: AcceptingEnrollments,
		},
		{
			name: "in progress via class window",
			now:  date("2025-03-15"),
			s: Schedule{
				EnrollmentEnd: enrollEnd,
				ClassWindows:  []ClassWindow{{Start: date("2025-03-01"), End: date("2025-04-01")}},
				RawStatus:     StatusOpened,
			},
			want: InProgress,
		},
		{
			name: "finished via class window",
			now:  date("2025-05-01"),
			s: Schedule{
				EnrollmentEnd: enrollEnd,
				ClassWindows:  []ClassWindow{{Start: date("2025-03-01"), End: date("2025-04-01")}},
				RawStatus:     StatusOpened,
			},
			want: Finished,
		},
		{
			name: "windows span every location",
			now:  date("2025-04-15"),
			s: Schedule{
				EnrollmentEnd: enrollEnd,
				ClassWindows: []ClassWindow{
					{Start: date("2025-03-01"), End: date("2025-04-01")},
					{Start: date("2025-04-10"), End: date("2025-05-01")},
				},
				RawStatus: StatusOpened,
			},
			want: InProgress,
		},
		{
			name: "between enrollment end and first class",
			now:  date("2025-03-01"),
			s: Schedule{
				EnrollmentEnd: enrollEnd,
				ClassWindows:  []ClassWindow{{Start: date("2025-03-10"), End: date("2025-04-01")}},
				RawStatus:     StatusOpened,
			},
			want: Opened,
		},
		{
			name: "self-paced online after enrollment",
			now:  date("2026-01-01"),
			s:    Schedule{EnrollmentEnd: enrollEnd, Modality: ModalityLivreFormacaoOnline, RawStatus: StatusOpened},
			want: InProgress,
		},
		{
			name: "fallback 30 days after enrollment",
			now:  timePtr(enrollEnd.Add(FallbackWindow)),
			s:    Schedule{EnrollmentEnd: enrollEnd, RawStatus: StatusOpened},
			want: InProgress,
		},
		{
			name: "fallback 31 days after enrollment",
			now:  timePtr(enrollEnd.Add(31 * 24 * time.Hour)),
			s:    Schedule{EnrollmentEnd: enrollEnd, RawStatus: StatusOpened},
			want: Finished,
		},
		{
			name: "window without an end uses the fallback",
			now:  timePtr(enrollEnd.Add(40 * 24 * time.Hour)),
			s: Schedule{
				EnrollmentEnd: enrollEnd,
				ClassWindows:  []ClassWindow{{Start: date("2025-03-01")}},
				RawStatus:     StatusOpened,
			},
			want: Finished,
		},
		{
			name: "no dates at all",
			now:  date("2025-01-01"),
			s:    Schedule{RawStatus: StatusOpened},
			want: Opened,
		},
		{
			name: "draft passes through",
			now:  date("2025-02-05"),
			s:    Schedule{EnrollmentStart: date("2025-02-01"), EnrollmentEnd: enrollEnd, RawStatus: StatusDraft},
			want: DisplayStatus(StatusDraft),
		},
		{
			name: "legacy status passes through",
			now:  date("2025-02-05"),
			s:    Schedule{RawStatus: StatusEncerrado},
			want: DisplayStatus(StatusEncerrado),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := append([]ClassWindow(nil), tt.s.ClassWindows...)
			if got := Classify(*tt.now, tt.s); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
			for i := range windows {
				if windows[i] != tt.s.ClassWindows[i] {
					t.Errorf("Classify() mutated class window %d", i)
				}
			}
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
