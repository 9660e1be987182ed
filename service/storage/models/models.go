package models

import (
	"time"

	"github.com/rs/xid"
	"gorm.io/gorm"

	"github.com/loretops/coinvest-docs/service/types"
)

// Project is the owning entity for documents. The wider platform manages
// projects elsewhere; this service only checks existence and preloads the
// owner on reads.
type Project struct {
	ID        string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(250)" json:"name"`
	Status    string    `gorm:"type:varchar(50)" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (model *Project) BeforeCreate(tx *gorm.DB) error {
	if model.ID == "" {
		model.ID = xid.New().String()
	}
	return nil
}

// ProjectDocument holds the metadata of one stored document. FileURL is
// the sole address of the backing object: there is no native key column,
// so backends must be able to re-derive their key from the URL alone.
type ProjectDocument struct {
	ID        string   `gorm:"type:varchar(50);primaryKey" json:"id"`
	ProjectID string   `gorm:"type:varchar(50);index" json:"projectId"`
	Project   *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	FileURL  string `gorm:"type:varchar(1024)" json:"fileUrl"`
	FileType string `gorm:"type:varchar(250)" json:"fileType"`

	DocumentType  types.DocumentType  `gorm:"type:varchar(50)" json:"documentType"`
	AccessLevel   types.AccessLevel   `gorm:"type:varchar(50)" json:"accessLevel"`
	SecurityLevel types.SecurityLevel `gorm:"type:varchar(50)" json:"securityLevel"`

	Title     string    `gorm:"type:varchar(250)" json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (model *ProjectDocument) BeforeCreate(tx *gorm.DB) error {
	if model.ID == "" {
		model.ID = xid.New().String()
	}
	return nil
}

// DocumentView is the audit trail: one row per signed URL issuance.
type DocumentView struct {
	ID         string           `gorm:"type:varchar(50);primaryKey" json:"id"`
	DocumentID string           `gorm:"type:varchar(50);index" json:"documentId"`
	Document   *ProjectDocument `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"-"`
	UserID     string           `gorm:"type:varchar(50)" json:"userId"`
	IPAddress  string           `gorm:"type:varchar(50)" json:"ipAddress"`
	CreatedAt  time.Time        `json:"createdAt"`
}

func (model *DocumentView) BeforeCreate(tx *gorm.DB) error {
	if model.ID == "" {
		model.ID = xid.New().String()
	}
	return nil
}
