package model

import "time"

// PostReport 帖子举报记录
type PostReport struct {
	ID           int64      `db:"id"`
	PostID       int64      `db:"post_id"`
	ReportReason string     `db:"report_reason"`
	ReportDetail *string    `db:"report_detail"`
	ReporterIP   *string    `db:"reporter_ip"`
	ReporterUA   *string    `db:"reporter_user_agent"`
	IsProcessed  bool       `db:"is_processed"`
	ProcessedBy  *int64     `db:"processed_by"`
	ProcessedAt  *time.Time `db:"processed_at"`
	AdminNote    *string    `db:"admin_note"`
	CreatedAt    time.Time  `db:"created_at"`
}

// PostReportDTO 举报列表项（管理接口，不含举报者IP/UA）
type PostReportDTO struct {
	ID           int64      `json:"id"`
	PostID       int64      `json:"post_id"`
	ReportReason string     `json:"report_reason"`
	ReportDetail *string    `json:"report_detail,omitempty"`
	IsProcessed  bool       `json:"is_processed"`
	ProcessedBy  *int64     `json:"processed_by,omitempty"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	AdminNote    *string    `json:"admin_note,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
