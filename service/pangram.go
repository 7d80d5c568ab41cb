package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/u16-io/FindPangram/db"
	"github.com/u16-io/FindPangram/model"
	"github.com/u16-io/FindPangram/syllable"
	"go.uber.org/zap"
)

const (
	resultAccepted = "accepted"
	resultRejected = "rejected"
	resultError    = "error"
)

// Service validates and stores pangrams
type Service struct {
	store       db.Store
	counter     syllable.Counter
	logger      *zap.Logger
	submissions *prometheus.CounterVec
	now         func() time.Time
}

// New registers the service's metrics with reg; a nil reg skips registration.
func New(store db.Store, counter syllable.Counter, logger *zap.Logger, reg prometheus.Registerer) *Service {
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "findpangram_submissions_total",
		Help: "Pangram submissions by outcome.",
	}, []string{"result"})
	if reg != nil {
		reg.MustRegister(submissions)
	}
	return &Service{
		store:       store,
		counter:     counter,
		logger:      logger.Named("service"),
		submissions: submissions,
		now:         time.Now,
	}
}

// Validate checks the letter rule and then each line's syllable count, one
// remote lookup per line in order. A failed lookup counts as 0 syllables.
func (s *Service) Validate(ctx context.Context, p *model.Pangram) error {
	var messages []string

	if missing := MissingLetters(p.Text()); len(missing) > 0 {
		messages = append(messages, letterMessage(missing))
	}

	for i, line := range p.Lines() {
		want := RequiredSyllables[i]
		got := s.countSyllables(ctx, i+1, line)
		if got != want {
			messages = append(messages, syllableMessage(i+1, want, got))
		}
	}

	if len(messages) > 0 {
		return &ValidationError{Messages: messages}
	}
	return nil
}

func (s *Service) countSyllables(ctx context.Context, lineNo int, line string) int {
	if line == "" {
		return 0
	}
	n, err := s.counter.Count(ctx, line)
	if err != nil {
		s.logger.Warn("Syllable lookup failed",
			zap.Int("line", lineNo),
			zap.String("text", line),
			zap.Error(err))
		return 0
	}
	return n
}

func newPangram(line1, line2, line3 string) *model.Pangram {
	return &model.Pangram{
		Line1: strings.TrimSpace(line1),
		Line2: strings.TrimSpace(line2),
		Line3: strings.TrimSpace(line3),
	}
}

// Check validates the three lines without storing anything.
func (s *Service) Check(ctx context.Context, line1, line2, line3 string) error {
	return s.Validate(ctx, newPangram(line1, line2, line3))
}

// Create validates the three lines and persists them as one new record.
// Nothing is stored when validation fails.
func (s *Service) Create(ctx context.Context, line1, line2, line3 string) (*model.Pangram, error) {
	p := newPangram(line1, line2, line3)

	if err := s.Validate(ctx, p); err != nil {
		s.submissions.WithLabelValues(resultRejected).Inc()
		s.logger.Info("Pangram rejected", zap.String("text", p.Text()), zap.Error(err))
		return nil, err
	}

	p.ID = uuid.NewString()
	p.CreatedAt = s.now().UTC()
	if err := s.store.Create(ctx, p); err != nil {
		s.submissions.WithLabelValues(resultError).Inc()
		return nil, fmt.Errorf("failed to save pangram: %w", err)
	}

	s.submissions.WithLabelValues(resultAccepted).Inc()
	s.logger.Info("Pangram saved", zap.String("id", p.ID), zap.Int("length", p.TotalLength()))
	return p, nil
}

// List returns every stored pangram, newest first.
func (s *Service) List(ctx context.Context) ([]model.Pangram, error) {
	ps, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pangrams: %w", err)
	}
	return ps, nil
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
