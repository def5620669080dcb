package model

import "time"

// Contact 联系表单记录
type Contact struct {
	ID        int64     `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     string    `db:"email"`
	Company   string    `db:"company"`
	JobTitle  *string   `db:"job_title"`
	Country   *string   `db:"country"`
	Message   string    `db:"message"`
	Status    string    `db:"status"`
	IPAddress *string   `db:"ip_address"`
	UserAgent *string   `db:"user_agent"`
	CreatedAt time.Time `db:"created_at"`
}

// BannedIP 封禁IP记录
type BannedIP struct {
	IP        string    `db:"ip"`
	Reason    *string   `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}
