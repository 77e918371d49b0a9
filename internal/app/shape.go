package app

import (
	"encoding/json"
	"time"

	"flowintake/api/internal/store"
)

const (
	FlowTypeBespokeDemo  = "bespoke-demo"
	FlowTypeUpdateConfig = "update-config"
)

// Submission is the inbound create payload. Flow-specific fields are kept
// as raw JSON; which of them matter is decided by the flowType discriminator.
type Submission struct {
	FlowType             string          `json:"flowType"`
	BespokeOption        *string         `json:"bespokeOption"`
	AgencyCounterInputs  json.RawMessage `json:"agencyCounterInputs"`
	LandingPageSelection json.RawMessage `json:"landingPageSelection"`
	TailoredQuestions    json.RawMessage `json:"tailoredQuestions"`
	GeneralQuestions     json.RawMessage `json:"generalQuestions"`
	UpdatePageDetails    json.RawMessage `json:"updatePageDetails"`
	SubmittedAt          *time.Time      `json:"submitted_at"`
}

// FlowRecord is the fixed response shape returned for every flow type.
// Fields the row did not populate render as null.
type FlowRecord struct {
	ID                   string    `json:"id"`
	FlowType             string    `json:"flow_type"`
	BespokeOption        *string   `json:"bespoke_option"`
	AgencyCounterInputs  any       `json:"agency_counter_inputs"`
	LandingPageSelection any       `json:"landing_page_selection"`
	TailoredQuestions    any       `json:"tailored_questions"`
	GeneralQuestions     any       `json:"general_questions"`
	UpdatePageDetails    any       `json:"update_page_details"`
	SubmittedAt          time.Time `json:"submitted_at"`
}

// GeneralQuestions is the canonical six-field structure the create path
// always returns, with defaults filled for anything the row left out.
type GeneralQuestions struct {
	Website        string  `json:"website"`
	RPN            string  `json:"rpn"`
	RPNInput       *string `json:"rpnInput"`
	Carriers       string  `json:"carriers"`
	AdditionalInfo string  `json:"additionalInfo"`
	Contact        string  `json:"contact"`
}

// buildInsertRecord shapes a submission into its storage record. Only the
// fields belonging to the submission's flow type are carried over; an
// unknown flow type yields a record with just the two base fields.
func buildInsertRecord(sub Submission, now time.Time) store.FlowInsert {
	record := store.FlowInsert{
		FlowType:    sub.FlowType,
		SubmittedAt: now.UTC(),
	}
	if sub.SubmittedAt != nil {
		record.SubmittedAt = sub.SubmittedAt.UTC()
	}

	switch sub.FlowType {
	case FlowTypeBespokeDemo:
		record.BespokeOption = sub.BespokeOption
		if present := presentJSON(sub.AgencyCounterInputs); present != nil {
			// raw pass-through, the nested user list is not shaped on insert
			record.AgencyCounterInputs = present
		}
		record.LandingPageSelection = presentJSON(sub.LandingPageSelection)
		record.TailoredQuestions = presentJSON(sub.TailoredQuestions)
		record.GeneralQuestions = presentJSON(sub.GeneralQuestions)
	case FlowTypeUpdateConfig:
		record.UpdatePageDetails = presentJSON(sub.UpdatePageDetails)
	}
	return record
}

// shapeCreatedRow projects a freshly inserted row into the response shape:
// nested users trimmed to firstName/lastName/email, tailored questions
// parsed out of a textual encoding if needed, general questions always
// rendered with all six sub-fields.
func shapeCreatedRow(row store.FlowRow) FlowRecord {
	return FlowRecord{
		ID:                   row.ID,
		FlowType:             row.FlowType,
		BespokeOption:        row.BespokeOption,
		AgencyCounterInputs:  projectAgencyCounterInputs(row.AgencyCounterInputs),
		LandingPageSelection: rawValue(row.LandingPageSelection),
		TailoredQuestions:    parseJSONValue(row.TailoredQuestions),
		GeneralQuestions:     shapeGeneralQuestions(row.GeneralQuestions),
		UpdatePageDetails:    rawValue(row.UpdatePageDetails),
		SubmittedAt:          row.SubmittedAt,
	}
}

// shapeListedRow is the list-path projection. Unlike the create path it
// neither trims the nested user list nor fills general-question defaults;
// textual encodings are parsed but absent sub-fields stay absent. Callers
// of the list endpoint depend on this looser shape (see DESIGN.md).
func shapeListedRow(row store.FlowRow) FlowRecord {
	return FlowRecord{
		ID:                   row.ID,
		FlowType:             row.FlowType,
		BespokeOption:        row.BespokeOption,
		AgencyCounterInputs:  parseJSONValue(row.AgencyCounterInputs),
		LandingPageSelection: rawValue(row.LandingPageSelection),
		TailoredQuestions:    parseJSONValue(row.TailoredQuestions),
		GeneralQuestions:     parseJSONValue(row.GeneralQuestions),
		UpdatePageDetails:    rawValue(row.UpdatePageDetails),
		SubmittedAt:          row.SubmittedAt,
	}
}

// presentJSON normalizes an absent or JSON-null value to nil so the store
// writes SQL NULL instead of the literal null document.
func presentJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}

// rawValue passes a stored document through unchanged, null when absent.
func rawValue(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

// parseJSONValue decodes a stored document into a structured value. A
// value stored as a JSON string holding encoded JSON is unwrapped one
// level; already-structured values pass through.
func parseJSONValue(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	if text, ok := value.(string); ok {
		var nested any
		if err := json.Unmarshal([]byte(text), &nested); err == nil {
			return nested
		}
	}
	return value
}

// projectAgencyCounterInputs keeps the container as stored but trims each
// entry of its users list down to firstName, lastName and email.
func projectAgencyCounterInputs(raw json.RawMessage) any {
	value := parseJSONValue(raw)
	if value == nil {
		return nil
	}
	container, ok := value.(map[string]any)
	if !ok {
		return value
	}
	users, ok := container["users"].([]any)
	if !ok {
		return container
	}
	projected := make([]any, 0, len(users))
	for _, entry := range users {
		person, _ := entry.(map[string]any)
		trimmed := map[string]any{}
		for _, field := range []string{"firstName", "lastName", "email"} {
			if v, exists := person[field]; exists {
				trimmed[field] = v
			}
		}
		projected = append(projected, trimmed)
	}
	container["users"] = projected
	return container
}

// shapeGeneralQuestions always yields the full six-field structure. Empty
// or missing sub-fields collapse to their defaults, including an empty
// rpnInput, which renders as null.
func shapeGeneralQuestions(raw json.RawMessage) GeneralQuestions {
	shaped := GeneralQuestions{RPN: "no"}
	stored, ok := parseJSONValue(raw).(map[string]any)
	if !ok {
		return shaped
	}
	shaped.Website = stringField(stored, "website")
	if rpn := stringField(stored, "rpn"); rpn != "" {
		shaped.RPN = rpn
	}
	if input := stringField(stored, "rpnInput"); input != "" {
		shaped.RPNInput = &input
	}
	shaped.Carriers = stringField(stored, "carriers")
	shaped.AdditionalInfo = stringField(stored, "additionalInfo")
	shaped.Contact = stringField(stored, "contact")
	return shaped
}

func stringField(values map[string]any, key string) string {
	text, _ := values[key].(string)
	return text
}
