package service

import (
	"context"
	"strings"

	"board_go/internal/core/logger"
	"board_go/internal/core/metrics"
	"board_go/internal/core/snowflake"
	"board_go/internal/model"
	"board_go/internal/pkg/apperr"
	"board_go/internal/repository"
)

// ReportService 帖子举报服务
type ReportService struct {
	repo  repository.ReportRepository
	posts repository.PostRepository
}

// NewReportService 创建ReportService实例
func NewReportService(repo repository.ReportRepository, posts repository.PostRepository) *ReportService {
	return &ReportService{repo: repo, posts: posts}
}

// Create 提交举报，帖子必须存在（已软删的帖子不可再举报）
func (s *ReportService) Create(ctx context.Context, postID int64, reason, detail string, ip, ua *string) (int64, error) {
	if strings.TrimSpace(reason) == "" {
		return 0, apperr.Validation("report reason is required")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return 0, err
	}
	if post == nil || post.IsDeleted {
		return 0, apperr.NotFound("post not found")
	}

	report := &model.PostReport{
		ID:           snowflake.Generate(),
		PostID:       postID,
		ReportReason: reason,
		ReporterIP:   ip,
		ReporterUA:   ua,
	}
	if d := strings.TrimSpace(detail); d != "" {
		report.ReportDetail = &d
	}

	if err := s.repo.Create(ctx, report); err != nil {
		logger.Error("create report failed",
			logger.Int64("post_id", postID), logger.ErrorField(err))
		return 0, err
	}

	metrics.ReportsCreated.Inc()
	return report.ID, nil
}

// List 举报列表（对外DTO不含举报者IP/UA）
func (s *ReportService) List(ctx context.Context, onlyUnprocessed bool, limit, offset int) ([]*model.PostReportDTO, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	reports, err := s.repo.List(ctx, onlyUnprocessed, limit, offset)
	if err != nil {
		return nil, err
	}
	list := make([]*model.PostReportDTO, 0, len(reports))
	for _, r := range reports {
		list = append(list, reportDTO(r))
	}
	return list, nil
}

// Process 标记举报已处理，可附管理员备注（幂等false）
func (s *ReportService) Process(ctx context.Context, id int64, adminUserID int64, note *string) (bool, error) {
	ok, err := s.repo.Process(ctx, id, adminUserID, note)
	if err != nil {
		return false, err
	}
	if ok {
		logger.Info("report processed",
			logger.Int64("report_id", id),
			logger.Int64("admin_user_id", adminUserID))
	}
	return ok, nil
}

func reportDTO(r *model.PostReport) *model.PostReportDTO {
	return &model.PostReportDTO{
		ID:           r.ID,
		PostID:       r.PostID,
		ReportReason: r.ReportReason,
		ReportDetail: r.ReportDetail,
		IsProcessed:  r.IsProcessed,
		ProcessedBy:  r.ProcessedBy,
		ProcessedAt:  r.ProcessedAt,
		AdminNote:    r.AdminNote,
		CreatedAt:    r.CreatedAt,
	}
}
