package service

import (
	"context"
	"strings"

	"board_go/internal/core/logger"
	"board_go/internal/core/snowflake"
	"board_go/internal/model"
	"board_go/internal/pkg/apperr"
	"board_go/internal/repository"
)

// ContactInput 联系表单入参
type ContactInput struct {
	FirstName string
	LastName  string
	Email     string
	Company   string
	JobTitle  string
	Country   string
	Message   string
	IPAddress *string
	UserAgent *string
}

// ContactService 联系表单服务
type ContactService struct {
	repo repository.ContactRepository
}

// NewContactService 创建ContactService实例
func NewContactService(repo repository.ContactRepository) *ContactService {
	return &ContactService{repo: repo}
}

// Create 提交联系表单
func (s *ContactService) Create(ctx context.Context, in *ContactInput) (int64, error) {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return 0, apperr.Validation("name is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return 0, apperr.Validation("email is required")
	}
	if strings.TrimSpace(in.Message) == "" {
		return 0, apperr.Validation("message is required")
	}

	contact := &model.Contact{
		ID:        snowflake.Generate(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Company:   in.Company,
		Message:   in.Message,
		Status:    "new",
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
	}
	if t := strings.TrimSpace(in.JobTitle); t != "" {
		contact.JobTitle = &t
	}
	if c := strings.TrimSpace(in.Country); c != "" {
		contact.Country = &c
	}

	if err := s.repo.Create(ctx, contact); err != nil {
		logger.Error("create contact failed", logger.ErrorField(err))
		return 0, err
	}
	return contact.ID, nil
}
