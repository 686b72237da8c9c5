package course

import "time"

// FallbackWindow is how long after enrollment closes a course without class dates is
// still considered in progress.
const FallbackWindow = 30 * 24 * time.Hour

// Classify derives the status shown for a course at time now.
// Only opened courses are classified from their dates, the other raw statuses are returned unchanged.
func Classify(now time.Time, s Schedule) DisplayStatus {
	if !s.RawStatus.isOpened() {
		return DisplayStatus(s.RawStatus)
	}

	start, end := s.EnrollmentStart, s.EnrollmentEnd
	switch {
	case start != nil && now.Before(*start):
		return Scheduled
	case start != nil && end != nil && !now.After(*end):
		return AcceptingEnrollments
	case s.Modality == ModalityLivreFormacaoOnline && end != nil && now.After(*end):
		// self-paced courses have no class dates
		return InProgress
	}

	if earliest, latest, ok := s.classSpan(); ok {
		switch {
		case !now.Before(earliest) && !now.After(latest):
			return InProgress
		case now.After(latest):
			return Finished
		}
	} else if end != nil {
		switch since := now.Sub(*end); {
		case since > FallbackWindow:
			return Finished
		case since >= 0:
			return InProgress
		}
	}
	return Opened
}

// classSpan returns the earliest class start and the latest class end.
// ok is false unless at least one start and one end are known.
func (s Schedule) classSpan() (earliest, latest time.Time, ok bool) {
	var hasStart, hasEnd bool
	for _, w := range s.ClassWindows {
		if w.Start != nil && (!hasStart || w.Start.Before(earliest)) {
			earliest, hasStart = *w.Start, true
		}
		if w.End != nil && (!hasEnd || w.End.After(latest)) {
			latest, hasEnd = *w.End, true
		}
	}
	return earliest, latest, hasStart && hasEnd
}
