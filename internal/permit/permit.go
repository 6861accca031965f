package permit

import (
	"log/slog"
	"time"

	permitDatamodel "github.com/frahmantamala/permit-service/internal/core/datamodel/permit"
)

// Permit is the read model returned to clients, structured fields decoded.
type Permit struct {
	ID                         int64     `json:"id"`
	PermitNumber               string    `json:"permit_number"`
	IssuedTo                   *string   `json:"issued_to"`
	Substation                 *string   `json:"substation"`
	WorkDetails                any       `json:"work_details"`
	SafeWorkLimits             any       `json:"safe_work_limits"`
	SafeHVWorkLimits           any       `json:"safe_hv_work_limits"`
	MVLVEquipment              any       `json:"mv_lv_equipment"`
	EarthPoints                any       `json:"earth_points"`
	AdditionalEarthConnections any       `json:"additional_earth_connections"`
	ConsentPerson              *string   `json:"consent_person"`
	IssueDate                  *string   `json:"issue_date"`
	IssueTime                  *string   `json:"issue_time"`
	SubmittedAt                time.Time `json:"submitted_at"`
	Urgency                    *string   `json:"urgency"`
	Status                     *string   `json:"status"`
	Comments                   *string   `json:"comments"`
	ApproverName               *string   `json:"approver_name"`
	ApprovalDate               *string   `json:"approval_date"`
	ApprovalTime               *string   `json:"approval_time"`
	ClearanceDate              *string   `json:"clearance_date"`
	ClearanceTime              *string   `json:"clearance_time"`
	ClearanceSignature         *string   `json:"clearance_signature"`
	Connections                any       `json:"connections"`
	CancellationConsentPerson  *string   `json:"cancellation_consent_person"`
}

func FromDataModel(p *permitDatamodel.Permit, logger *slog.Logger) *Permit {
	logger = logger.With("permit_id", p.ID)
	return &Permit{
		ID:                         p.ID,
		PermitNumber:               p.PermitNumber,
		IssuedTo:                   p.IssuedTo,
		Substation:                 p.Substation,
		WorkDetails:                DecodeStructured(logger, FieldWorkDetails, p.WorkDetails),
		SafeWorkLimits:             DecodeStructured(logger, FieldSafeWorkLimits, p.SafeWorkLimits),
		SafeHVWorkLimits:           DecodeStructured(logger, FieldSafeHVWorkLimits, p.SafeHVWorkLimits),
		MVLVEquipment:              DecodeStructured(logger, FieldMVLVEquipment, p.MVLVEquipment),
		EarthPoints:                DecodeStructured(logger, FieldEarthPoints, p.EarthPoints),
		AdditionalEarthConnections: DecodeStructured(logger, FieldAdditionalEarthConnections, p.AdditionalEarthConnections),
		ConsentPerson:              p.ConsentPerson,
		IssueDate:                  p.IssueDate,
		IssueTime:                  p.IssueTime,
		SubmittedAt:                p.SubmittedAt,
		Urgency:                    p.Urgency,
		Status:                     p.Status,
		Comments:                   p.Comments,
		ApproverName:               p.ApproverName,
		ApprovalDate:               p.ApprovalDate,
		ApprovalTime:               p.ApprovalTime,
		ClearanceDate:              p.ClearanceDate,
		ClearanceTime:              p.ClearanceTime,
		ClearanceSignature:         p.ClearanceSignature,
		Connections:                DecodeStructured(logger, FieldConnections, p.Connections),
		CancellationConsentPerson:  p.CancellationConsentPerson,
	}
}
