package chat

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/deptboard-api/internal/domain"
)

const (
	sessionTTL   = 10 * time.Minute
	sweepEvery   = time.Minute
	listingLimit = 10
)

type studentReader interface {
	Scan(ctx context.Context) ([]domain.Student, error)
	GetByRollNo(ctx context.Context, rollNo string) (*domain.Student, error)
	Count(ctx context.Context) (int, error)
}

type facultyReader interface {
	Scan(ctx context.Context) ([]domain.Faculty, error)
	Count(ctx context.Context) (int, error)
}

type certCounter interface {
	Count(ctx context.Context) (int, error)
}

type subjectReader interface {
	ListByYear(ctx context.Context, year string) ([]domain.Subject, error)
}

// Reply is one chatbot answer.
type Reply struct {
	Message string `json:"message"`
}

type Service interface {
	Handle(ctx context.Context, sessionID, message string) (*Reply, error)
}

type service struct {
	students studentReader
	faculty  facultyReader
	certs    certCounter
	subjects subjectReader
	sessions *sessionStore
}

func NewService(students studentReader, faculty facultyReader, certs certCounter, subjects subjectReader) Service {
	return &service{
		students: students,
		faculty:  faculty,
		certs:    certs,
		subjects: subjects,
		sessions: newSessionStore(sessionTTL, sweepEvery),
	}
}

var (
	greetingWords = []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening"}
	rollPattern   = regexp.MustCompile(`roll\s*(?:number|no)?\.?\s*:?\s*([A-Za-z0-9-]+)`)
	yearPattern   = regexp.MustCompile(`[1-4]`)
	namePattern   = regexp.MustCompile(`(?:who is|find|search)\s+(.+)`)
)

// Handle runs one message through the rule chain. Rules are evaluated in a
// fixed order; the first match answers. The only multi-turn state is the
// "which year?" follow-up for subject queries.
func (s *service) Handle(ctx context.Context, sessionID, message string) (*Reply, error) {
	text := strings.ToLower(strings.TrimSpace(message))
	if text == "" {
		return &Reply{Message: "Say something and I'll try to help."}, nil
	}
	if s.sessions.state(sessionID) == stateAwaitingYear {
		return s.handleYearReply(ctx, sessionID, text)
	}

	switch {
	case isGreeting(text):
		return &Reply{Message: "Hello! Ask me about students, faculty, subjects or certificates."}, nil
	case strings.Contains(text, "how many"):
		return s.handleCount(ctx, text)
	case rollPattern.MatchString(text):
		return s.handleRollLookup(ctx, text)
	case strings.Contains(text, "subject") || strings.Contains(text, "material"):
		s.sessions.setState(sessionID, stateAwaitingYear)
		return &Reply{Message: "Which year? (1-4)"}, nil
	case namePattern.MatchString(text):
		return s.handleNameLookup(ctx, text)
	case strings.Contains(text, "student"):
		return s.handleStudentListing(ctx)
	case strings.Contains(text, "faculty"):
		return s.handleFacultyListing(ctx)
	default:
		return &Reply{Message: "I can list students or faculty, count records, look up a roll number, or show subjects for a year."}, nil
	}
}

func isGreeting(text string) bool {
	for _, w := range greetingWords {
		if text == w || strings.HasPrefix(text, w+" ") || strings.HasPrefix(text, w+"!") {
			return true
		}
	}
	return false
}

func (s *service) handleYearReply(ctx context.Context, sessionID, text string) (*Reply, error) {
	if strings.Contains(text, "cancel") || strings.Contains(text, "never mind") {
		s.sessions.setState(sessionID, stateIdle)
		return &Reply{Message: "Okay, cancelled."}, nil
	}
	year := yearPattern.FindString(text)
	if year == "" {
		return &Reply{Message: "I need a year between 1 and 4. Which year?"}, nil
	}
	s.sessions.setState(sessionID, stateIdle)

	subjects, err := s.subjects.ListByYear(ctx, year)
	if err != nil {
		return nil, err
	}
	if len(subjects) == 0 {
		return &Reply{Message: fmt.Sprintf("No subjects recorded for year %s.", year)}, nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Subjects for year %s:\n", year)
	for _, sub := range subjects {
		fmt.Fprintf(&b, "- %s (%s)", sub.SubjectName, sub.SubjectCode)
		if sub.MaterialLink != "" {
			fmt.Fprintf(&b, " material: %s", sub.MaterialLink)
		}
		b.WriteByte('\n')
	}
	return &Reply{Message: strings.TrimRight(b.String(), "\n")}, nil
}

func (s *service) handleCount(ctx context.Context, text string) (*Reply, error) {
	switch {
	case strings.Contains(text, "student"):
		n, err := s.students.Count(ctx)
		if err != nil {
			return nil, err
		}
		return &Reply{Message: fmt.Sprintf("There are %d students on the roster.", n)}, nil
	case strings.Contains(text, "facult"):
		n, err := s.faculty.Count(ctx)
		if err != nil {
			return nil, err
		}
		return &Reply{Message: fmt.Sprintf("There are %d faculty members on the roster.", n)}, nil
	case strings.Contains(text, "certificate"):
		n, err := s.certs.Count(ctx)
		if err != nil {
			return nil, err
		}
		return &Reply{Message: fmt.Sprintf("There are %d certificates on record.", n)}, nil
	}
	return &Reply{Message: "I can count students, faculty or certificates."}, nil
}

func (s *service) handleRollLookup(ctx context.Context, text string) (*Reply, error) {
	m := rollPattern.FindStringSubmatch(text)
	if m == nil || m[1] == "" {
		return &Reply{Message: "Which roll number should I look up?"}, nil
	}
	student, err := s.students.GetByRollNo(ctx, m[1])
	if errors.Is(err, domain.ErrNotFound) {
		return &Reply{Message: fmt.Sprintf("No student with roll number %s.", m[1])}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Reply{Message: fmt.Sprintf("%s (roll %s), %s year %s, %s",
		student.Name, student.RollNo, student.Department, student.Year, student.Email)}, nil
}

func (s *service) handleNameLookup(ctx context.Context, text string) (*Reply, error) {
	m := namePattern.FindStringSubmatch(text)
	needle := strings.TrimSpace(m[1])
	if needle == "" {
		return &Reply{Message: "Who should I look for?"}, nil
	}
	students, err := s.students.Scan(ctx)
	if err != nil {
		return nil, err
	}
	var hits []string
	for _, st := range students {
		if strings.Contains(strings.ToLower(st.Name), needle) {
			hits = append(hits, fmt.Sprintf("%s (roll %s)", st.Name, st.RollNo))
			if len(hits) == listingLimit {
				break
			}
		}
	}
	if len(hits) == 0 {
		return &Reply{Message: fmt.Sprintf("No student matching %q.", needle)}, nil
	}
	return &Reply{Message: "Matches:\n- " + strings.Join(hits, "\n- ")}, nil
}

func (s *service) handleStudentListing(ctx context.Context) (*Reply, error) {
	students, err := s.students.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return &Reply{Message: "The student roster is empty."}, nil
	}
	var names []string
	for i, st := range students {
		if i == listingLimit {
			break
		}
		names = append(names, fmt.Sprintf("%s (roll %s)", st.Name, st.RollNo))
	}
	msg := "Students:\n- " + strings.Join(names, "\n- ")
	if len(students) > listingLimit {
		msg += fmt.Sprintf("\n...and %d more.", len(students)-listingLimit)
	}
	return &Reply{Message: msg}, nil
}

func (s *service) handleFacultyListing(ctx context.Context) (*Reply, error) {
	faculty, err := s.faculty.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(faculty) == 0 {
		return &Reply{Message: "The faculty roster is empty."}, nil
	}
	var names []string
	for i, f := range faculty {
		if i == listingLimit {
			break
		}
		names = append(names, fmt.Sprintf("%s (%s)", f.Name, f.Department))
	}
	msg := "Faculty:\n- " + strings.Join(names, "\n- ")
	if len(faculty) > listingLimit {
		msg += fmt.Sprintf("\n...and %d more.", len(faculty)-listingLimit)
	}
	return &Reply{Message: msg}, nil
}
