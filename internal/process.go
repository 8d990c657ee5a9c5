package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Event is the closed set of notifications a run emits: a ProgressEvent per
// record and one CompleteEvent at the end. Consumers get them through a
// single callback, which keeps tests to assertions on an ordered event log.
type Event interface {
	isEvent()
}

// ProgressEvent reports the record about to be processed.
type ProgressEvent struct {
	Current  int
	Total    int
	FileName string
}

func (ProgressEvent) isEvent() {}

// CompleteEvent carries the final counters of a run.
type CompleteEvent struct {
	Success int
	Errors  int
	Skipped int
}

func (CompleteEvent) isEvent() {}

// Processor drives one pass over a scan result. Build one per run: the
// duplicate cache and the error stats inside are scoped to a single Run call
// and are not safe to share between concurrent runs.
type Processor struct {
	opts      *ProcessingOptions
	log       *Logger
	detector  *DuplicateDetector
	extractor *MotionPhotoExtractor
	errStats  *ErrorStats
}

func NewProcessor(opts *ProcessingOptions, log *Logger) *Processor {
	return &Processor{
		opts:      opts,
		log:       log,
		detector:  NewDuplicateDetector(opts.DuplicateMode, log),
		extractor: NewMotionPhotoExtractor(log),
		errStats:  NewErrorStats(),
	}
}

// ErrorStats exposes the categorized failures of the last Run.
func (p *Processor) ErrorStats() *ErrorStats {
	return p.errStats
}

// Run processes every record sequentially. One bad file never aborts the
// batch: per-record failures are counted and the loop moves on. Cancellation
// is cooperative and checked once per record, so a cancelled context stops
// between files, never in the middle of one.
func (p *Processor) Run(ctx context.Context, records []*MediaRecord, onEvent func(Event)) (RunCounters, error) {
	var counters RunCounters
	total := len(records)

	emit := func(e Event) {
		if onEvent != nil {
			onEvent(e)
		}
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return counters, err
		}

		name := filepath.Base(rec.MediaPath)
		emit(ProgressEvent{Current: i + 1, Total: total, FileName: name})

		if p.opts.SkipDuplicates && p.detector.IsDuplicate(rec.MediaPath, p.opts.OutputDirectory) {
			p.logf("skipping duplicate: %s", name)
			counters.Skipped++
			continue
		}

		if err := p.processRecord(rec); err != nil {
			procErr := CategorizeError(rec.MediaPath, err)
			p.errStats.Add(procErr)
			p.logf("failed to process %s: %v", name, err)
			counters.Errors++
			continue
		}
		counters.Success++
	}

	emit(CompleteEvent{Success: counters.Success, Errors: counters.Errors, Skipped: counters.Skipped})
	return counters, nil
}

// processRecord places one record: motion-photo video leg first, then the
// media file itself, embedded or plain depending on type and options.
func (p *Processor) processRecord(rec *MediaRecord) error {
	destDir := DestinationDir(rec.Metadata, rec.AlbumName, p.opts)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	name := filepath.Base(rec.MediaPath)
	destPath := UniqueDestPath(filepath.Join(destDir, name))

	// Video leg of a motion photo. Extraction failures only cost the video;
	// the photo leg continues regardless.
	if rec.IsJpeg() && p.extractor.IsMotionPhoto(rec.MediaPath) {
		videoDest := UniqueDestPath(filepath.Join(destDir, VideoFileName(name)))
		if p.extractor.ExtractVideo(rec.MediaPath, videoDest) {
			p.logf("extracted motion photo video: %s", filepath.Base(videoDest))
			if p.opts.AddMetadata {
				if err := WriteVideoSidecar(videoDest, rec.Metadata, rec.AlbumName); err != nil {
					p.logf("sidecar for %s failed: %v", filepath.Base(videoDest), err)
				}
			}
		}
	}

	hasContext := rec.Metadata != nil || rec.AlbumName != ""

	if p.opts.AddMetadata && hasContext && rec.IsJpeg() {
		embed := EmbedMetadata
		if p.opts.UseExifTool {
			embed = EmbedMetadataWithExifTool
		}
		if err := embed(rec.MediaPath, destPath, rec.Metadata, rec.AlbumName, p.log); err != nil {
			return fmt.Errorf("failed to place %s: %w", name, err)
		}
		// Move mode consumes the source on every path, embedded included.
		if !p.opts.CopyFiles {
			if err := os.Remove(rec.MediaPath); err != nil {
				p.logf("could not remove source %s after move: %v", name, err)
			}
		}
		return nil
	}

	if p.opts.CopyFiles {
		if err := copyFileAtomic(rec.MediaPath, destPath); err != nil {
			return fmt.Errorf("failed to copy %s: %w", name, err)
		}
	} else {
		if err := moveFile(rec.MediaPath, destPath); err != nil {
			return fmt.Errorf("failed to move %s: %w", name, err)
		}
	}

	// Videos keep their metadata in a sidecar; a sidecar failure never
	// affects the already-placed file.
	if rec.IsVideo() && p.opts.AddMetadata && hasContext {
		if err := WriteVideoSidecar(destPath, rec.Metadata, rec.AlbumName); err != nil {
			p.logf("sidecar for %s failed: %v", filepath.Base(destPath), err)
		}
	}
	return nil
}

func (p *Processor) logf(format string, args ...interface{}) {
	if p.log != nil {
		p.log.Log(format, args...)
	}
}
