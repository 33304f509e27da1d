package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/repos"
)

type Repos struct {
	Sermon              repos.SermonRepo
	TranscriptSegment   repos.TranscriptSegmentRepo
	TranscriptEmbedding repos.TranscriptEmbeddingRepo
	Clip                repos.ClipRepo
	Template            repos.TemplateRepo
	ClipFeedback        repos.ClipFeedbackRepo
	JobRun              repos.JobRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Sermon:              repos.NewSermonRepo(db, log),
		TranscriptSegment:   repos.NewTranscriptSegmentRepo(db, log),
		TranscriptEmbedding: repos.NewTranscriptEmbeddingRepo(db, log),
		Clip:                repos.NewClipRepo(db, log),
		Template:            repos.NewTemplateRepo(db, log),
		ClipFeedback:        repos.NewClipFeedbackRepo(db, log),
		JobRun:              repos.NewJobRunRepo(db, log),
	}
}
