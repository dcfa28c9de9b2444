package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents an authenticated user (cashier or admin) in the system
type User struct {
	BaseModel
	Email        string      `gorm:"column:Email;type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password     string      `gorm:"column:Password;type:varchar(255);not null" json:"-"` // Hidden from JSON
	FullName     string      `gorm:"column:FullName;type:varchar(255)" json:"fullName" validate:"required"`
	PhoneNumber  string      `gorm:"column:PhoneNumber;type:varchar(20)" json:"phoneNumber"`
	RoleID       *uint       `gorm:"column:RoleID;index" json:"roleId"`
	Role         *Role       `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsActive     bool        `gorm:"column:IsActive" json:"isActive"`
	Privileges   []Privilege `gorm:"many2many:User_Privilege;" json:"privileges,omitempty"`
	TokenVersion string      `gorm:"column:TokenVersion;type:varchar(255);default:''" json:"-"` // For single session enforcement
	LastSeenAt   *time.Time  `gorm:"column:LastSeenAt" json:"lastSeenAt,omitempty"`             // For user presence
}

func (User) TableName() string {
	return "User"
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// HasPrivilege checks if the user has a specific privilege
func (u *User) HasPrivilege(code string) bool {
	for _, p := range u.Privileges {
		if p.Code == code {
			return true
		}
	}
	return false
}

// GetPrivilegeCodes returns a slice of all privilege codes for this user
func (u *User) GetPrivilegeCodes() []string {
	codes := make([]string, len(u.Privileges))
	for i, p := range u.Privileges {
		codes[i] = p.Code
	}
	return codes
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	FullName    string      `json:"fullName"`
	PhoneNumber string      `json:"phoneNumber"`
	RoleID      *uint       `json:"roleId,omitempty"`
	Role        *Role       `json:"role,omitempty"`
	IsActive    bool        `json:"isActive"`
	LastSeenAt  *time.Time  `json:"lastSeenAt,omitempty"`
	Privileges  []Privilege `json:"privileges"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		RoleID:      u.RoleID,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastSeenAt:  u.LastSeenAt,
		Privileges:  u.Privileges,
	}
}
