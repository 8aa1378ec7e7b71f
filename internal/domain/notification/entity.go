package notification

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// RuleType identifies the monitor rule that produced a job.
type RuleType string

const (
	RuleLateCheckin       RuleType = "late_checkin"
	RuleOffShiftActivity  RuleType = "off_shift_activity"
	RuleEarlyCheckout     RuleType = "early_checkout"
	RuleOverrideInfo      RuleType = "override_info"
	RuleAbsence           RuleType = "absence"
	RuleOvertimeStarted   RuleType = "overtime_started"
	RuleOvertimeWarning   RuleType = "overtime_warning"
	RuleOvertimeAutoClose RuleType = "overtime_auto_close"
)

// Audience is who a job is addressed to.
type Audience string

const (
	AudienceEmployee Audience = "employee"
	AudienceAdmin    Audience = "admin"
)

// RiskLevel grades a job for display and routing.
type RiskLevel string

const (
	RiskInfo     RiskLevel = "info"
	RiskWarning  RiskLevel = "warning"
	RiskCritical RiskLevel = "critical"
)

// DeliveryStatus tracks the job through the out-of-band delivery pipeline.
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// Job is one deduplicated notification. The event hash is globally unique;
// inserting a job whose hash already exists is a no-op, not an error.
type Job struct {
	ID          string
	EmployeeID  string
	Rule        RuleType
	Audience    Audience
	Risk        RiskLevel
	Day         time.Time // local date, midnight
	EventAt     time.Time
	Title       string
	Description string
	Summary     string
	Payload     map[string]any
	ScheduledAt time.Time
	Status      DeliveryStatus
	EventHash   string
	CreatedAt   time.Time
}

// EventHash builds the idempotency key for one logical notification:
// a digest of employee + local day + rule + audience.
func EventHash(employeeID string, day time.Time, rule RuleType, audience Audience) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s",
		employeeID, day.Format("2006-01-02"), rule, audience)))
	return hex.EncodeToString(sum[:])
}
