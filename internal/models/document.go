package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Annotation keys merged into a scored version's content.
const (
	AIMarkKey = "aimark"
	ReasonKey = "reason"
)

type Document struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID        uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	CurrentVersion int       `gorm:"not null;default:1" json:"current_version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Owner    User              `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Versions []DocumentVersion `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// LatestVersion returns the version numbered CurrentVersion. Versions must be
// loaded in ascending version order.
func (d *Document) LatestVersion() (*DocumentVersion, error) {
	for i := len(d.Versions) - 1; i >= 0; i-- {
		if d.Versions[i].VersionNumber == d.CurrentVersion {
			return &d.Versions[i], nil
		}
	}
	return nil, fmt.Errorf("document %s has no version %d", d.ID, d.CurrentVersion)
}

// DocumentVersion keeps the submitted content untouched. The AI score lives in
// its own columns and is only merged into the content when rendered.
type DocumentVersion struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_document_version" json:"document_id"`
	VersionNumber int            `gorm:"not null;uniqueIndex:idx_document_version" json:"version_number"`
	Content       datatypes.JSON `gorm:"not null" json:"content"`
	AIMark        *int           `gorm:"column:ai_mark" json:"aimark,omitempty"`
	Reason        *string        `gorm:"type:text" json:"reason,omitempty"`
	ScoredAt      *time.Time     `json:"scored_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (DocumentVersion) TableName() string {
	return "document_versions"
}

func (v *DocumentVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (v *DocumentVersion) Scored() bool {
	return v.AIMark != nil
}

// OriginalContent decodes the content exactly as it was submitted.
func (v *DocumentVersion) OriginalContent() (map[string]interface{}, error) {
	content := map[string]interface{}{}
	if len(v.Content) == 0 {
		return content, nil
	}
	if err := json.Unmarshal(v.Content, &content); err != nil {
		return nil, fmt.Errorf("failed to decode version %d content: %w", v.VersionNumber, err)
	}
	return content, nil
}

// MaterializedContent is the original content with aimark and reason merged
// over it when the version has been scored.
func (v *DocumentVersion) MaterializedContent() (map[string]interface{}, error) {
	content, err := v.OriginalContent()
	if err != nil {
		return nil, err
	}
	if v.AIMark != nil {
		content[AIMarkKey] = *v.AIMark
		reason := ""
		if v.Reason != nil {
			reason = *v.Reason
		}
		content[ReasonKey] = reason
	}
	return content, nil
}

// NewContent encodes a content object for storage.
func NewContent(content map[string]interface{}) (datatypes.JSON, error) {
	if content == nil {
		content = map[string]interface{}{}
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to encode content: %w", err)
	}
	return datatypes.JSON(raw), nil
}
