package permit

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/permit-service/internal/core/common/validation"
	permitDatamodel "github.com/frahmantamala/permit-service/internal/core/datamodel/permit"
)

var now = func() time.Time { return time.Now().UTC() }

// Normalize maps a payload onto a permit row. Every recognised column is set;
// absent or null values become NULL and arrays or objects become JSON text.
// permit_number is not checked here.
func Normalize(payload Payload) *permitDatamodel.Permit {
	record := &permitDatamodel.Permit{
		IssuedTo:                   nullableText(payload[FieldIssuedTo]),
		Substation:                 nullableText(payload[FieldSubstation]),
		WorkDetails:                nullableText(payload[FieldWorkDetails]),
		SafeWorkLimits:             nullableText(payload[FieldSafeWorkLimits]),
		SafeHVWorkLimits:           nullableText(payload[FieldSafeHVWorkLimits]),
		MVLVEquipment:              nullableText(payload[FieldMVLVEquipment]),
		EarthPoints:                nullableText(payload[FieldEarthPoints]),
		AdditionalEarthConnections: nullableText(payload[FieldAdditionalEarthConnections]),
		ConsentPerson:              nullableText(payload[FieldConsentPerson]),
		IssueDate:                  nullableText(payload[FieldIssueDate]),
		IssueTime:                  nullableText(payload[FieldIssueTime]),
		SubmittedAt:                submittedAt(payload[FieldSubmittedAt]),
		Urgency:                    nullableText(payload[FieldUrgency]),
		Status:                     nullableText(payload[FieldStatus]),
		Comments:                   nullableText(payload[FieldComments]),
		ApproverName:               nullableText(payload[FieldApproverName]),
		ApprovalDate:               nullableText(payload[FieldApprovalDate]),
		ApprovalTime:               nullableText(payload[FieldApprovalTime]),
		ClearanceDate:              nullableText(payload[FieldClearanceDate]),
		ClearanceTime:              nullableText(payload[FieldClearanceTime]),
		ClearanceSignature:         nullableText(payload[FieldClearanceSignature]),
		Connections:                nullableText(payload[FieldConnections]),
		CancellationConsentPerson:  nullableText(payload[FieldCancellationConsentPerson]),
	}

	if number := nullableText(payload[FieldPermitNumber]); number != nil {
		record.PermitNumber = *number
	}

	return record
}

// CloseoutUpdates picks the closeout columns that carry a value, keyed by
// column name and encoded the same way Normalize encodes them.
func CloseoutUpdates(payload Payload) map[string]any {
	updates := make(map[string]any)
	for _, field := range CloseoutFields {
		if text := nullableText(payload[field]); text != nil {
			updates[field] = *text
		}
	}
	return updates
}

func nullableText(value any) *string {
	var text string
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		text = v
	case json.Number:
		text = v.String()
	case bool:
		text = strconv.FormatBool(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		text = string(encoded)
	}
	return &text
}

// submittedAt falls back to the current time when the value is absent or blank.
func submittedAt(value any) time.Time {
	if raw, ok := value.(string); ok && strings.TrimSpace(raw) != "" {
		if t, ok := validation.ParseTimestamp(raw); ok {
			return t.UTC()
		}
	}
	return now()
}
