package search

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/patientdesk/patientdesk/internal/domain/patient"
	"github.com/patientdesk/patientdesk/internal/platform/llm"
)

// MinQueryLength is the shortest query worth sending to the model, counted
// in characters, not bytes. Shorter queries are rejected before any LLM call.
const MinQueryLength = 4

// ErrQueryTooShort is a client error; everything else out of Search is a
// server-side failure.
var ErrQueryTooShort = errors.New("query too short")

// ErrFilterParse wraps an LLM or parse failure. The client sees a generic
// message; the cause is logged.
var ErrFilterParse = errors.New("failed to parse search query")

type Service struct {
	llm      llm.Client
	patients *patient.Service
	now      func() time.Time
}

func NewService(client llm.Client, patients *patient.Service) *Service {
	return &Service{llm: client, patients: patients, now: time.Now}
}

// Search turns the free-text query into a filter via the language model,
// compiles it, and runs it against storage. Results carry their full status
// history; an empty result list is not an error.
func (s *Service) Search(ctx context.Context, query string) ([]*patient.Patient, error) {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, ErrQueryTooShort
	}

	raw, err := s.llm.Complete(ctx, systemPrompt, fmt.Sprintf("The user's query is: %q", query))
	if err != nil {
		log.Error().Err(err).Msg("llm completion failed")
		return nil, fmt.Errorf("%w: %v", ErrFilterParse, err)
	}

	filter, err := ParseFilter(raw)
	if err != nil {
		log.Error().Err(err).Str("response", raw).Msg("llm response is not valid json")
		return nil, fmt.Errorf("%w: %v", ErrFilterParse, err)
	}

	criteria := filter.Criteria(patient.DateOf(s.now()))
	if criteria.Empty() {
		log.Warn().Str("query", query).Msg("query compiled to no predicates; matching every patient")
	}
	return s.patients.Search(ctx, criteria)
}
