package models

import "gorm.io/datatypes"

const (
	AuditApproveTeacher = "teacher_application.approve"
	AuditRejectTeacher  = "teacher_application.reject"
	AuditSuspendUser    = "user.suspend"
	AuditActivateUser   = "user.activate"
	AuditDeleteReview   = "review.delete"
)

const (
	SecurityLoginSuccess = "login_success"
	SecurityLoginFailed  = "login_failed"
	SecurityLoginBlocked = "login_blocked"
)

type AuditLog struct {
	Model
	ActorID    uint              `gorm:"index;not null" json:"actor_id"`
	Action     string            `gorm:"index;not null" json:"action"`
	TargetType string            `json:"target_type"`
	TargetID   uint              `json:"target_id"`
	Metadata   datatypes.JSONMap `json:"metadata"`
}

type SecurityEvent struct {
	Model
	UserID    *uint             `gorm:"index" json:"user_id"`
	Email     string            `json:"email"`
	Type      string            `gorm:"index;not null" json:"type"`
	IP        string            `json:"ip"`
	UserAgent string            `json:"user_agent"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
}
