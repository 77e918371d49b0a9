package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"flowintake/api/internal/config"
	"flowintake/api/internal/store"
)

type dataStore interface {
	InsertFlow(context.Context, store.FlowInsert) (store.FlowRow, error)
	ListFlows(context.Context, store.FlowFilter) ([]store.FlowRow, error)
	Ping(context.Context) error
}

type notifier interface {
	Notify(ctx context.Context, summary string, payload any, contactEmail string) error
}

// Service wires the record shaper, store and notifier together. The
// notifier may be nil when Slack is not configured.
type Service struct {
	cfg      config.Config
	store    dataStore
	notifier notifier
	now      func() time.Time
}

func New(cfg config.Config, dataStore dataStore, notifier notifier) *Service {
	return &Service{
		cfg:      cfg,
		store:    dataStore,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// CreateFlow persists one submission and returns the stored record,
// create-path shaped, wrapped in an array to match the bulk-insert return
// shape. The notification runs after a successful insert; its outcome is
// deliberately discarded and never alters the result.
func (s *Service) CreateFlow(ctx context.Context, sub Submission) ([]FlowRecord, error) {
	if sub.FlowType == "" {
		return nil, validationError("Error saving data", fmt.Errorf("flowType is required"))
	}

	record := buildInsertRecord(sub, s.now())
	row, err := s.store.InsertFlow(ctx, record)
	if err != nil {
		return nil, storageError("Error saving data", err)
	}

	shaped := []FlowRecord{shapeCreatedRow(row)}

	if s.notifier != nil {
		summary := submissionSummary(sub)
		contact := contactEmail(sub, s.cfg.FallbackContactEmail)
		if err := s.notifier.Notify(ctx, summary, shaped, contact); err != nil {
			log.Printf("notification failed for flow %s: %v", row.ID, err)
		}
	}

	return shaped, nil
}

// ListFlows returns every stored record matching the filter, list-path
// shaped. The result is never nil so an empty match renders as [].
func (s *Service) ListFlows(ctx context.Context, filter store.FlowFilter) ([]FlowRecord, error) {
	rows, err := s.store.ListFlows(ctx, filter)
	if err != nil {
		return nil, storageError("Error fetching data", err)
	}
	shaped := make([]FlowRecord, 0, len(rows))
	for _, row := range rows {
		shaped = append(shaped, shapeListedRow(row))
	}
	return shaped, nil
}

func submissionSummary(sub Submission) string {
	option := "N/A"
	if sub.BespokeOption != nil && *sub.BespokeOption != "" {
		option = *sub.BespokeOption
	}
	return fmt.Sprintf("Flow Type: %s\nBespoke Option: %s", sub.FlowType, option)
}

// contactEmail reads the contact sub-field out of the inbound general
// questions, falling back to the configured default address.
func contactEmail(sub Submission, fallback string) string {
	var questions struct {
		Contact string `json:"contact"`
	}
	if len(sub.GeneralQuestions) > 0 {
		_ = json.Unmarshal(sub.GeneralQuestions, &questions)
	}
	if questions.Contact != "" {
		return questions.Contact
	}
	return fallback
}
