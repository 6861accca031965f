package permit

import (
	"encoding/json"
	"fmt"
	"io"
)

// Payload is a permit request body kept untyped until normalisation. Numbers
// are decoded as json.Number so their literal text survives.
type Payload map[string]any

const (
	FieldPermitNumber               = "permit_number"
	FieldIssuedTo                   = "issued_to"
	FieldSubstation                 = "substation"
	FieldWorkDetails                = "work_details"
	FieldSafeWorkLimits             = "safe_work_limits"
	FieldSafeHVWorkLimits           = "safe_hv_work_limits"
	FieldMVLVEquipment              = "mv_lv_equipment"
	FieldEarthPoints                = "earth_points"
	FieldAdditionalEarthConnections = "additional_earth_connections"
	FieldConsentPerson              = "consent_person"
	FieldIssueDate                  = "issue_date"
	FieldIssueTime                  = "issue_time"
	FieldSubmittedAt                = "submitted_at"
	FieldUrgency                    = "urgency"
	FieldStatus                     = "status"
	FieldComments                   = "comments"
	FieldApproverName               = "approver_name"
	FieldApprovalDate               = "approval_date"
	FieldApprovalTime               = "approval_time"
	FieldClearanceDate              = "clearance_date"
	FieldClearanceTime              = "clearance_time"
	FieldClearanceSignature         = "clearance_signature"
	FieldConnections                = "connections"
	FieldCancellationConsentPerson  = "cancellation_consent_person"
)

// StructuredFields are stored as JSON text and decoded on every read.
var StructuredFields = []string{
	FieldWorkDetails,
	FieldSafeWorkLimits,
	FieldSafeHVWorkLimits,
	FieldMVLVEquipment,
	FieldEarthPoints,
	FieldAdditionalEarthConnections,
	FieldConnections,
}

// CloseoutFields is the only set of columns that may change after creation.
var CloseoutFields = []string{
	FieldClearanceDate,
	FieldClearanceTime,
	FieldClearanceSignature,
	FieldConnections,
	FieldCancellationConsentPerson,
}

// DecodePayload reads a JSON object from r.
func DecodePayload(r io.Reader) (Payload, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var payload Payload
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode permit payload: %w", err)
	}
	if payload == nil {
		payload = Payload{}
	}
	return payload, nil
}

// Get returns the raw value for field and whether it carries a value.
// An explicit null counts as absent.
func (p Payload) Get(field string) (any, bool) {
	value, ok := p[field]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}
