package permit

import "time"

// Permit is one kplc_permits row. Nullable text columns are pointers; the
// structured columns hold JSON text.
type Permit struct {
	ID                         int64     `gorm:"primaryKey"`
	PermitNumber               string    `gorm:"column:permit_number;uniqueIndex;not null"`
	IssuedTo                   *string   `gorm:"column:issued_to"`
	Substation                 *string   `gorm:"column:substation"`
	WorkDetails                *string   `gorm:"column:work_details"`
	SafeWorkLimits             *string   `gorm:"column:safe_work_limits"`
	SafeHVWorkLimits           *string   `gorm:"column:safe_hv_work_limits"`
	MVLVEquipment              *string   `gorm:"column:mv_lv_equipment"`
	EarthPoints                *string   `gorm:"column:earth_points"`
	AdditionalEarthConnections *string   `gorm:"column:additional_earth_connections"`
	ConsentPerson              *string   `gorm:"column:consent_person"`
	IssueDate                  *string   `gorm:"column:issue_date"`
	IssueTime                  *string   `gorm:"column:issue_time"`
	SubmittedAt                time.Time `gorm:"column:submitted_at;not null"`
	Urgency                    *string   `gorm:"column:urgency"`
	Status                     *string   `gorm:"column:status"`
	Comments                   *string   `gorm:"column:comments"`
	ApproverName               *string   `gorm:"column:approver_name"`
	ApprovalDate               *string   `gorm:"column:approval_date"`
	ApprovalTime               *string   `gorm:"column:approval_time"`
	ClearanceDate              *string   `gorm:"column:clearance_date"`
	ClearanceTime              *string   `gorm:"column:clearance_time"`
	ClearanceSignature         *string   `gorm:"column:clearance_signature"`
	Connections                *string   `gorm:"column:connections"`
	CancellationConsentPerson  *string   `gorm:"column:cancellation_consent_person"`
}

func (Permit) TableName() string {
	return "kplc_permits"
}
