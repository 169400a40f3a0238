package models

import "time"

// ActivityCode identifies one of the five program stages.
type ActivityCode string

const (
	ActivityLearn   ActivityCode = "LEARN"
	ActivityExplore ActivityCode = "EXPLORE"
	ActivityAmplify ActivityCode = "AMPLIFY"
	ActivityPresent ActivityCode = "PRESENT"
	ActivityShine   ActivityCode = "SHINE"
)

// AdmissionPolicy selects the rule checked before a new submission is admitted.
type AdmissionPolicy int

const (
	// AdmissionNone admits any number of submissions.
	AdmissionNone AdmissionPolicy = iota
	// AdmissionSingleActive rejects a new submission while a pending or
	// approved one exists for the same user and activity.
	AdmissionSingleActive
	// AdmissionRollingQuota enforces numeric ceilings over a trailing window.
	AdmissionRollingQuota
)

// Activity is the persisted reference row for one program stage. Seeded once
// at boot; immutable afterwards.
type Activity struct {
	Code          ActivityCode `gorm:"primaryKey;size:16" json:"code"`
	Name          string       `gorm:"size:64;not null" json:"name"`
	DefaultPoints int          `gorm:"not null" json:"default_points"`
	CreatedAt     time.Time    `json:"created_at"`
}

// ActivityDefinition carries the behaviour attached to an activity code: its
// admission policy and how approval interacts with the points ledger.
// CreditsOnApproval is false for stages whose credit arrives through the LMS
// webhook; manual approval of those acknowledges evidence without awarding
// points a second time.
type ActivityDefinition struct {
	Code              ActivityCode
	Name              string
	DefaultPoints     int
	CreditsOnApproval bool
	Admission         AdmissionPolicy
}

var activityDefinitions = [...]ActivityDefinition{
	{Code: ActivityLearn, Name: "Learn", DefaultPoints: 10, CreditsOnApproval: false, Admission: AdmissionSingleActive},
	{Code: ActivityExplore, Name: "Explore", DefaultPoints: 20, CreditsOnApproval: true, Admission: AdmissionNone},
	{Code: ActivityAmplify, Name: "Amplify", DefaultPoints: 0, CreditsOnApproval: true, Admission: AdmissionRollingQuota},
	{Code: ActivityPresent, Name: "Present", DefaultPoints: 30, CreditsOnApproval: true, Admission: AdmissionNone},
	{Code: ActivityShine, Name: "Shine", DefaultPoints: 50, CreditsOnApproval: true, Admission: AdmissionNone},
}

// ActivityByCode resolves a definition from the closed reference set.
func ActivityByCode(code ActivityCode) (ActivityDefinition, bool) {
	for _, def := range activityDefinitions {
		if def.Code == code {
			return def, true
		}
	}
	return ActivityDefinition{}, false
}

// ActivityDefinitions returns the five stage definitions in program order.
func ActivityDefinitions() []ActivityDefinition {
	defs := make([]ActivityDefinition, len(activityDefinitions))
	copy(defs, activityDefinitions[:])
	return defs
}
