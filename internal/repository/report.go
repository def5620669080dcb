package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"board_go/internal/model"
)

// ReportRepository 帖子举报数据访问接口
type ReportRepository interface {
	Create(ctx context.Context, report *model.PostReport) error
	List(ctx context.Context, onlyUnprocessed bool, limit, offset int) ([]*model.PostReport, error)
	GetByID(ctx context.Context, id int64) (*model.PostReport, error)
	Process(ctx context.Context, id int64, adminUserID int64, note *string) (bool, error)
}

type reportRepository struct {
	db *sqlx.DB
}

// NewReportRepository 创建ReportRepository实例
func NewReportRepository(db *sqlx.DB) ReportRepository {
	return &reportRepository{db: db}
}

const reportColumns = `id, post_id, report_reason, report_detail, reporter_ip, reporter_user_agent,
	is_processed, processed_by, processed_at, admin_note, created_at`

// Create 创建举报
func (r *reportRepository) Create(ctx context.Context, report *model.PostReport) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO post_reports (id, post_id, report_reason, report_detail,
			reporter_ip, reporter_user_agent, is_processed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, NOW())`,
		report.ID, report.PostID, report.ReportReason, report.ReportDetail,
		report.ReporterIP, report.ReporterUA)
	return err
}

// List 举报列表
func (r *reportRepository) List(ctx context.Context, onlyUnprocessed bool, limit, offset int) ([]*model.PostReport, error) {
	var reports []*model.PostReport
	query := "SELECT " + reportColumns + " FROM post_reports"
	args := []interface{}{}
	if onlyUnprocessed {
		query += " WHERE is_processed = 0"
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, err
	}
	return reports, nil
}

// GetByID 单条举报
func (r *reportRepository) GetByID(ctx context.Context, id int64) (*model.PostReport, error) {
	var report model.PostReport
	err := r.db.GetContext(ctx, &report,
		"SELECT "+reportColumns+" FROM post_reports WHERE id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// Process 标记举报已处理（幂等false）
func (r *reportRepository) Process(ctx context.Context, id int64, adminUserID int64, note *string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE post_reports
		SET is_processed = 1, processed_by = ?, processed_at = NOW(), admin_note = ?
		WHERE id = ? AND is_processed = 0`,
		adminUserID, note, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
