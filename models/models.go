package models

import (
	"time"

	"github.com/PayRam/go-dbclient/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`
}

// User is a back-office account (admin, editor, viewer)
type User struct {
	BaseModel
	Email    string `gorm:"size:255;not null;index" json:"email"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Role     string `gorm:"size:50;index" json:"role"` // e.g., "admin", "editor", "viewer"
	IsActive bool   `gorm:"index" json:"isActive"`
}

func (User) TableName() string {
	return "users"
}

type Client struct {
	BaseModel
	Name    string `gorm:"size:255;not null;index" json:"name"`
	Email   string `gorm:"size:255;index" json:"email"`
	Phone   string `gorm:"size:50" json:"phone"`
	Company string `gorm:"size:255;index" json:"company"`
	Status  string `gorm:"size:50;index" json:"status"` // e.g., "lead", "active", "archived"
}

func (Client) TableName() string {
	return "clients"
}

// Project is an engineering or construction engagement for a client
type Project struct {
	BaseModel
	Reference   string          `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	ClientID    uint            `gorm:"index" json:"clientId"`
	Status      string          `gorm:"size:50;index" json:"status"` // e.g., "planning", "in_progress", "completed"
	Budget      decimal.Decimal `gorm:"type:decimal(38,18)" json:"budget"`
	StartDate   *time.Time      `gorm:"index" json:"startDate"`
	EndDate     *time.Time      `gorm:"index" json:"endDate"`
	Description string          `gorm:"type:text" json:"description"`
}

func (Project) TableName() string {
	return "projects"
}

// BeforeCreate assigns a reference when the caller did not provide one
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.Reference == "" {
		p.Reference = utils.NewReference()
	}
	return nil
}

// Task is a card on the project task board
type Task struct {
	BaseModel
	ProjectID   uint       `gorm:"index" json:"projectId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      string     `gorm:"size:50;index" json:"status"`   // e.g., "todo", "in_progress", "review", "done"
	Priority    string     `gorm:"size:50;index" json:"priority"` // e.g., "low", "medium", "high"
	AssigneeID  *uint      `gorm:"index" json:"assigneeId"`
	Position    int        `json:"position"`
	DueDate     *time.Time `gorm:"index" json:"dueDate"`
}

func (Task) TableName() string {
	return "tasks"
}

type CalendarEvent struct {
	BaseModel
	Title     string    `gorm:"size:255;not null" json:"title"`
	StartsAt  time.Time `gorm:"not null;index" json:"startsAt"`
	EndsAt    time.Time `gorm:"not null;index" json:"endsAt"`
	AllDay    bool      `json:"allDay"`
	Location  string    `gorm:"size:255" json:"location"`
	ProjectID *uint     `gorm:"index" json:"projectId"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}

// All lists every model owned by the back-office schema, in creation order
func All() []interface{} {
	return []interface{}{&User{}, &Client{}, &Project{}, &Task{}, &CalendarEvent{}}
}
