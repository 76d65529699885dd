package feedback

import (
	"errors"
	"time"
)

type Type string

const (
	TypeBug     Type = "bug"
	TypeFeature Type = "feature"
	TypeGeneral Type = "general"
)

var ErrInvalidInput = errors.New("invalid feedback")

// Feedback is a user-submitted note about the product.
type Feedback struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	PageURL   string    `json:"pageUrl"`
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type submission struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
	PageURL string `json:"pageUrl"`
	Rating  *int   `json:"rating"`
}
