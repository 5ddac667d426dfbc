// Package blobstore keeps student photos and exported documents, either in
// MinIO/S3 or in memory.
package blobstore

import (
	"fmt"
	"strings"
)

// PhotoContentType is used when the caller does not know the photo type.
const PhotoContentType = "image/jpeg"

// PhotoKey is the object key of a student's passport photo.
func PhotoKey(rollNo string) string {
	return fmt.Sprintf("students/%s/photo.jpg", rollNo)
}

// DocumentKey is the object key of one PDF export.
func DocumentKey(rollNo, jobID string) string {
	return fmt.Sprintf("students/%s/exports/%s.pdf", rollNo, jobID)
}

// StudentPrefix covers every object stored for a student.
func StudentPrefix(rollNo string) string {
	return fmt.Sprintf("students/%s/", rollNo)
}

func photoType(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return PhotoContentType
	}
	return contentType
}
