package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"board_go/internal/model"
)

// ContactRepository 联系表单数据访问接口
type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
}

type contactRepository struct {
	db *sqlx.DB
}

// NewContactRepository 创建ContactRepository实例
func NewContactRepository(db *sqlx.DB) ContactRepository {
	return &contactRepository{db: db}
}

// Create 写入联系表单
func (r *contactRepository) Create(ctx context.Context, contact *model.Contact) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts (id, first_name, last_name, email, company, job_title,
			country, message, status, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())`,
		contact.ID, contact.FirstName, contact.LastName, contact.Email, contact.Company,
		contact.JobTitle, contact.Country, contact.Message, contact.Status,
		contact.IPAddress, contact.UserAgent)
	return err
}
