package domain

import "time"

type Alarm struct {
	AlarmID    string     `json:"id" dynamodbav:"alarm_id"`
	UserID     string     `json:"user_id" dynamodbav:"user_id"`
	Metric     Metric     `json:"type" dynamodbav:"metric"`
	Comparison Comparison `json:"threshold_type" dynamodbav:"comparison"`
	Threshold  float64    `json:"value" dynamodbav:"threshold"`
	Active     bool       `json:"is_active" dynamodbav:"active"`
	CreatedAt  time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" dynamodbav:"updated_at"`
}

type CreateAlarmRequest struct {
	Metric     string   `json:"type" validate:"required,oneof=temperature humidity light"`
	Comparison string   `json:"threshold_type" validate:"required,oneof=above below"`
	Threshold  *float64 `json:"value" validate:"required"`
	Active     *bool    `json:"is_active"`
}

type UpdateAlarmRequest struct {
	Metric     *string  `json:"type" validate:"omitempty,oneof=temperature humidity light"`
	Comparison *string  `json:"threshold_type" validate:"omitempty,oneof=above below"`
	Threshold  *float64 `json:"value"`
	Active     *bool    `json:"is_active"`
}
