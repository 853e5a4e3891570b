package model

import (
	"time"
)

// TypeUsage is the per-category slice of a SpaceSummary.
type TypeUsage struct {
	Size       int64     `json:"size"`
	LatestDate time.Time `json:"latestDate"`
}

// SpaceSummary aggregates storage usage over a user's visible files.
// It is recomputed from the live file list on every request, never persisted.
type SpaceSummary struct {
	Image    TypeUsage `json:"image"`
	Document TypeUsage `json:"document"`
	Video    TypeUsage `json:"video"`
	Audio    TypeUsage `json:"audio"`
	Other    TypeUsage `json:"other"`
	Used     int64     `json:"used"`
	All      int64     `json:"all"` // capacity ceiling in bytes
}

func NewSpaceSummary(capacity int64) *SpaceSummary {
	return &SpaceSummary{All: capacity}
}

// Add folds one file into the summary. Unknown categories count as "other".
func (s *SpaceSummary) Add(f *File) {
	usage := s.bucket(f.Type)
	usage.Size += f.Size
	if f.UpdatedAt.After(usage.LatestDate) {
		usage.LatestDate = f.UpdatedAt
	}
	s.Used += f.Size
}

func (s *SpaceSummary) bucket(fileType string) *TypeUsage {
	switch fileType {
	case FileTypeImage:
		return &s.Image
	case FileTypeDocument:
		return &s.Document
	case FileTypeVideo:
		return &s.Video
	case FileTypeAudio:
		return &s.Audio
	default:
		return &s.Other
	}
}
