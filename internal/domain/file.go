package domain

type FileID string

// FileInfo is the metadata a sender announces before streaming chunks.
type FileInfo struct {
	ID   FileID `json:"id" validate:"required,max=128"`
	Name string `json:"name" validate:"required,max=255"`
	Size int64  `json:"size" validate:"gte=0"`
	Type string `json:"type" validate:"max=255"`
}
