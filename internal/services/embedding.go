package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/repos"
	"github.com/yungbote/sermonclips-backend/internal/types"
	"github.com/yungbote/sermonclips-backend/internal/utils"
)

// GenerateEmbeddingsResult reports what an embedding run did.
type GenerateEmbeddingsResult struct {
	SermonID int64
	Status   string
	Segments int
}

type EmbeddingService interface {
	// GenerateEmbeddings re-embeds every live transcript segment of a sermon,
	// retiring the previous embedding set first.
	GenerateEmbeddings(ctx context.Context, sermonID int64) (*GenerateEmbeddingsResult, error)
}

type embeddingService struct {
	log        *logger.Logger
	sermons    repos.SermonRepo
	segments   repos.TranscriptSegmentRepo
	embeddings repos.TranscriptEmbeddingRepo
	provider   EmbeddingProvider
	batchSize  int
	now        func() time.Time
}

func NewEmbeddingService(
	log *logger.Logger,
	sermons repos.SermonRepo,
	segments repos.TranscriptSegmentRepo,
	embeddings repos.TranscriptEmbeddingRepo,
	provider EmbeddingProvider,
) EmbeddingService {
	svcLog := log.With("service", "EmbeddingService")
	batchSize := utils.GetEnvAsInt("EMBEDDING_BATCH_SIZE", 64, svcLog)
	if batchSize <= 0 {
		batchSize = 64
	}
	return &embeddingService{
		log:        svcLog,
		sermons:    sermons,
		segments:   segments,
		embeddings: embeddings,
		provider:   provider,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

func (s *embeddingService) GenerateEmbeddings(ctx context.Context, sermonID int64) (*GenerateEmbeddingsResult, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("embedding provider not configured")
	}

	sermon, err := s.sermons.GetByID(ctx, nil, sermonID)
	if err != nil {
		return nil, err
	}
	if sermon == nil {
		return nil, fmt.Errorf("%w: %d", ErrSermonNotFound, sermonID)
	}
	if sermon.DeletedAt != nil {
		s.log.Info("sermon is deleted, skipping embeddings", "sermon_id", sermonID)
		return &GenerateEmbeddingsResult{SermonID: sermonID, Status: StatusDeleted}, nil
	}
	if err := s.sermons.UpdateFields(ctx, nil, sermonID, map[string]any{"error_message": nil}); err != nil {
		return nil, err
	}

	segmentRows, err := s.segments.ListBySermonID(ctx, nil, sermonID)
	if err != nil {
		return nil, err
	}
	if len(segmentRows) == 0 {
		return nil, fmt.Errorf("%w for sermon %d", ErrNoSegments, sermonID)
	}

	if err := s.embeddings.SoftDeleteBySermonID(ctx, nil, sermonID, s.now().UTC()); err != nil {
		return nil, err
	}

	total := len(segmentRows)
	processed := 0
	for start := 0; start < total; start += s.batchSize {
		end := start + s.batchSize
		if end > total {
			end = total
		}
		batch := segmentRows[start:end]

		texts := make([]string, 0, len(batch))
		for _, seg := range batch {
			texts = append(texts, seg.Text)
		}
		vectors, err := s.provider.Embed(ctx, texts)
		if err != nil {
			return nil, err
		}

		rows := make([]*types.TranscriptEmbedding, 0, len(batch))
		for i, seg := range batch {
			rows = append(rows, &types.TranscriptEmbedding{
				SermonID:  sermonID,
				SegmentID: seg.ID,
				Text:      seg.Text,
				Embedding: pgvector.NewVector(vectors[i]),
			})
		}
		if err := s.embeddings.Create(ctx, nil, rows); err != nil {
			return nil, err
		}
		processed += len(batch)
		s.log.Info("embedded transcript segments", "sermon_id", sermonID, "processed", processed, "total", total)
	}

	current, err := s.sermons.GetByID(ctx, nil, sermonID)
	if err != nil {
		return nil, err
	}
	if current == nil || current.DeletedAt != nil {
		s.log.Info("sermon deleted during embeddings", "sermon_id", sermonID)
		return &GenerateEmbeddingsResult{SermonID: sermonID, Status: StatusDeleted}, nil
	}
	if err := s.sermons.UpdateFields(ctx, nil, sermonID, map[string]any{
		"status":        types.SermonStatusEmbedded,
		"error_message": nil,
	}); err != nil {
		return nil, err
	}

	s.log.Info("embedding complete", "sermon_id", sermonID, "segments", total)
	return &GenerateEmbeddingsResult{SermonID: sermonID, Status: "ok", Segments: total}, nil
}
