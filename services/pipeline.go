package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/srgchrksv/bitecast/models"
	"github.com/srgchrksv/bitecast/playlist"
)

type segmentTask struct {
	index int
	total int
	topic string

	folderName string
	folderPath string
}

// ProcessRequest runs the whole pipeline for one request: analysis, topic
// resolution, then search, script and narration per topic, and finally the
// manifest. Per-segment failures are skipped; the run fails only when the
// analysis fails, no topic is resolved, or no segment produces audio.
func (s *Services) ProcessRequest(ctx context.Context, req models.Request) (models.Result, error) {
	log := s.log.With("session_id", req.SessionID)
	log.Info("Processing request", "prompt", req.Prompt, "history", req.History)

	emit(req, models.ProgressEvent{Stage: models.StageAnalyze, Message: "Analyzing request"})
	analysis, err := s.AnalyzePrompt(ctx, req.Prompt)
	if err != nil {
		return s.fail(req, err)
	}

	emit(req, models.ProgressEvent{Stage: models.StageTopics, Total: analysis.SegmentsNeeded, Message: "Choosing topics"})
	topics, err := s.ResolveTopics(ctx, req.Prompt, analysis, req.History)
	if err != nil {
		return s.fail(req, err)
	}

	folderName, folderPath, err := playlist.CreateFolder(s.baseDir, playlist.FolderName(s.now(), topics[0]))
	if err != nil {
		return s.fail(req, err)
	}
	log = log.With("folder", folderName)
	log.Info("Generating playlist", "topics", topics)

	outcomes := make([]*models.Segment, len(topics))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, topic := range topics {
		if strings.TrimSpace(topic) == "" {
			log.Warn("Skipping empty topic", "segment", i+1)
			continue
		}
		task := segmentTask{index: i + 1, total: len(topics), topic: topic, folderName: folderName, folderPath: folderPath}
		g.Go(func() error {
			seg, err := s.processSegment(gctx, req, task)
			if err != nil {
				return err
			}
			outcomes[task.index-1] = seg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return s.fail(req, err)
	}

	var segments []models.Segment
	var narrated []string
	for _, seg := range outcomes {
		if seg != nil {
			segments = append(segments, *seg)
			narrated = append(narrated, seg.Topic)
		}
	}

	if len(segments) == 0 {
		log.Error("No segment produced audio")
		_ = os.Remove(folderPath)
		return s.fail(req, ErrNoSegments)
	}

	title := PlaylistTitle(analysis, topics, segments)
	manifest := BuildManifest(title, folderName, folderPath, segments)
	emit(req, models.ProgressEvent{Stage: models.StageManifest, Message: "Writing playlist summary"})
	if err := playlist.WriteManifest(folderPath, manifest); err != nil {
		log.Error("Failed to write playlist summary", "error", err)
	}

	log.Info("Request processing finished", "title", title, "segments", len(segments))
	emit(req, models.ProgressEvent{Stage: models.StageDone, Total: len(segments), Message: title})
	return models.Result{
		FolderName: folderName,
		FolderPath: folderPath,
		Title:      title,
		Topics:     narrated,
		Manifest:   manifest,
	}, nil
}

// processSegment returns (nil, nil) for a skipped segment. Only context
// cancellation is returned as an error.
func (s *Services) processSegment(ctx context.Context, req models.Request, t segmentTask) (*models.Segment, error) {
	log := s.log.With("segment", t.index, "topic", t.topic)
	if err := s.pacer.Wait(ctx, ProviderSegment); err != nil {
		return nil, err
	}

	emit(req, models.ProgressEvent{Stage: models.StageSearch, Segment: t.index, Total: t.total, Topic: t.topic})
	webContext := s.FetchContext(ctx, t.topic)

	emit(req, models.ProgressEvent{Stage: models.StageScript, Segment: t.index, Total: t.total, Topic: t.topic})
	script, err := s.GenerateScript(ctx, t.topic, webContext)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn("Skipping segment, no script", "error", err)
		emit(req, models.ProgressEvent{Stage: models.StageSkipped, Segment: t.index, Total: t.total, Topic: t.topic, Message: "script unavailable"})
		return nil, nil
	}

	fileName := playlist.SegmentFileName(t.index, t.topic)
	if err := s.pacer.Wait(ctx, ProviderTTS); err != nil {
		return nil, err
	}
	emit(req, models.ProgressEvent{Stage: models.StageAudio, Segment: t.index, Total: t.total, Topic: t.topic})
	if err := s.narrator.Narrate(ctx, script, filepath.Join(t.folderPath, fileName)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn("Skipping segment, narration failed", "error", err)
		emit(req, models.ProgressEvent{Stage: models.StageSkipped, Segment: t.index, Total: t.total, Topic: t.topic, Message: "narration failed"})
		return nil, nil
	}

	log.Info("Segment complete", "file", fileName)
	return &models.Segment{
		Index:         t.index,
		Topic:         t.topic,
		ScriptPreview: scriptPreview(script),
		AudioFile:     path.Join(t.folderName, fileName),
	}, nil
}

func (s *Services) fail(req models.Request, err error) (models.Result, error) {
	s.log.Error("Request failed", "session_id", req.SessionID, "error", err)
	emit(req, models.ProgressEvent{Stage: models.StageFailed, Message: failureMessage(err)})
	return models.Result{}, err
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrAnalysis):
		return "Could not understand the request."
	case errors.Is(err, ErrNoTopics):
		return "Could not decide on any topics."
	case errors.Is(err, ErrNoSegments):
		return "No audio segment could be generated."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Request was cancelled."
	default:
		return fmt.Sprintf("Playlist generation failed: %v", err)
	}
}
