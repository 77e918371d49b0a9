package store

import (
	"encoding/json"
	"time"
)

// FlowInsert is the record written to user_flows. Pointer and RawMessage
// fields that are nil are stored as SQL NULL; flow variants never fabricate
// fields belonging to another variant.
type FlowInsert struct {
	FlowType             string
	BespokeOption        *string
	AgencyCounterInputs  json.RawMessage
	LandingPageSelection json.RawMessage
	TailoredQuestions    json.RawMessage
	GeneralQuestions     json.RawMessage
	UpdatePageDetails    json.RawMessage
	SubmittedAt          time.Time
}

// FlowRow is a stored row as returned by insert-returning or select.
type FlowRow struct {
	ID                   string
	FlowType             string
	BespokeOption        *string
	AgencyCounterInputs  json.RawMessage
	LandingPageSelection json.RawMessage
	TailoredQuestions    json.RawMessage
	GeneralQuestions     json.RawMessage
	UpdatePageDetails    json.RawMessage
	SubmittedAt          time.Time
}

// FlowFilter carries the optional list-endpoint filters. All present
// filters are combined with AND.
type FlowFilter struct {
	Key          string
	Value        string
	Email        string
	StartDate    string
	EndDate      string
	SpecificDate string
}
