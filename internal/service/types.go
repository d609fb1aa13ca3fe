// Package service contains the stateful parts of plat-stay: widget
// sessions, the change bus, the offer repository and uploaded images.
package service

import (
	"time"

	"github.com/joeblew999/plat-stay/internal/listing"
)

// StoredOffer is an accepted submission.
type StoredOffer struct {
	ID        string          `json:"id" doc:"Offer identifier" format:"uuid"`
	CreatedAt time.Time       `json:"createdAt" doc:"When the offer was accepted"`
	Listing   listing.Listing `json:"listing" doc:"The published listing"`
}

// UploadFile is an uploaded avatar or photo.
type UploadFile struct {
	Name     string `json:"name" doc:"Stored file name" example:"3f2c.png"`
	Size     string `json:"size" doc:"Human-readable file size" example:"12.0 KB"`
	FileType string `json:"fileType" doc:"Image type" example:"PNG"`
}
