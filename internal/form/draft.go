// Package form implements the four-step "add student" workflow: the draft
// buffer, step navigation, the required-field gate and the ordered
// photo-upload then record-create submission.
package form

import (
	"strings"

	"github.com/dharsanguruparan/HostelDesk/internal/student"
)

// DefaultPhotoLabel is shown while no photo is selected.
const DefaultPhotoLabel = "Choose file..."

// Photo is a selected passport photo waiting to be uploaded.
type Photo struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the photo size in bytes.
func (p *Photo) Size() int64 {
	if p == nil {
		return 0
	}
	return int64(len(p.Data))
}

// Draft mirrors a student record while it is being entered.
type Draft struct {
	Values student.Record
	Photo  *Photo
}

// Reset empties every value and drops the photo.
func (d *Draft) Reset() {
	d.Values = student.Record{}
	d.Photo = nil
}

func (d *Draft) clone() Draft {
	out := Draft{Values: d.Values}
	if d.Photo != nil {
		p := *d.Photo
		p.Data = append([]byte(nil), d.Photo.Data...)
		out.Photo = &p
	}
	return out
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
