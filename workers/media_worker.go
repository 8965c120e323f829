package workers

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/atelierworks/jewelqc-backend/media"
	"github.com/atelierworks/jewelqc-backend/repository"
)

// TaskType constants
const (
	TaskThumbnail = "thumbnail"
	TaskMetadata  = "metadata"
)

// MediaJob is one background task for a stored item photo.
type MediaJob struct {
	InspectionID uint
	StoredPath   string // relative path within the media store
	TaskType     string
}

// MediaProcessor runs thumbnail generation and metadata extraction for item
// photos off the request path.
type MediaProcessor struct {
	JobQueue         chan MediaJob
	Inspections      repository.InspectionRepositoryInterface
	Store            media.Store
	Processor        *media.Processor
	ThumbnailMaxSize int
	Wg               sync.WaitGroup
	StopChan         chan struct{}
	Pending          map[string]bool
	Mutex            sync.Mutex
}

func NewMediaProcessor(inspections repository.InspectionRepositoryInterface, store media.Store, thumbnailMaxSize, queueSize, numWorkers int) *MediaProcessor {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	proc := &MediaProcessor{
		JobQueue:         make(chan MediaJob, queueSize),
		Inspections:      inspections,
		Store:            store,
		Processor:        media.NewProcessor(store),
		ThumbnailMaxSize: thumbnailMaxSize,
		StopChan:         make(chan struct{}),
		Pending:          make(map[string]bool),
	}
	proc.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go proc.worker(i)
	}
	log.Printf("Started %d media processing worker(s) with queue size %d", numWorkers, queueSize)
	return proc
}

func (mp *MediaProcessor) worker(id int) {
	defer mp.Wg.Done()
	log.Printf("Media worker %d started", id)
	for {
		select {
		case job, ok := <-mp.JobQueue:
			if !ok {
				log.Printf("Media worker %d stopping: Job queue closed", id)
				return
			}

			pendingKey := fmt.Sprintf("%d:%s", job.InspectionID, job.TaskType)
			log.Printf("Worker %d: Received job type '%s' for inspection %d", id, job.TaskType, job.InspectionID)

			statusColumn := job.TaskType + "_status"
			err := mp.Inspections.MarkTaskProcessing(job.InspectionID, statusColumn)
			if err != nil {
				log.Printf("Worker %d: ERROR marking %s processing for inspection %d: %v. Skipping job.", id, job.TaskType, job.InspectionID, err)
				mp.Mutex.Lock()
				delete(mp.Pending, pendingKey)
				mp.Mutex.Unlock()
				continue
			}

			switch job.TaskType {
			case TaskThumbnail:
				mp.processThumbnailTask(job)
			case TaskMetadata:
				mp.processMetadataTask(job)
			default:
				log.Printf("Worker %d: ERROR unknown task type '%s' for inspection %d", id, job.TaskType, job.InspectionID)
			}

			mp.Mutex.Lock()
			delete(mp.Pending, pendingKey)
			mp.Mutex.Unlock()

		case <-mp.StopChan:
			log.Printf("Media worker %d stopping: Stop signal received", id)
			return
		}
	}
}

// processThumbnailTask generates a thumbnail for the stored photo and records the result
func (mp *MediaProcessor) processThumbnailTask(job MediaJob) {
	var taskErr error
	var thumbPathPtr *string

	fullPath, pathErr := mp.Store.GetFullPath(job.StoredPath)
	if pathErr != nil {
		taskErr = pathErr
	} else if _, statErr := os.Stat(fullPath); os.IsNotExist(statErr) {
		taskErr = fmt.Errorf("original file not found: %w", statErr)
		log.Printf("Worker: Skipping thumbnail task for %s: %v", job.StoredPath, taskErr)
	} else if statErr != nil {
		taskErr = fmt.Errorf("failed to stat original file: %w", statErr)
	} else {
		img, openErr := imaging.Open(fullPath)
		if openErr != nil {
			taskErr = fmt.Errorf("failed to open stored photo: %w", openErr)
		} else {
			thumbSavePath, genErr := mp.Processor.GenerateThumbnail(img, job.StoredPath, mp.ThumbnailMaxSize)
			if genErr != nil {
				taskErr = fmt.Errorf("thumbnail generation failed: %w", genErr)
				log.Printf("Worker: ERROR %v", taskErr)
			} else {
				thumbPathPtr = &thumbSavePath
			}
		}
	}

	dbErr := mp.Inspections.UpdateThumbnailResult(job.InspectionID, thumbPathPtr, taskErr)
	if dbErr != nil {
		log.Printf("Worker: ERROR updating thumbnail result for inspection %d: %v", job.InspectionID, dbErr)
	}
}

// processMetadataTask extracts EXIF capture metadata and records the result
func (mp *MediaProcessor) processMetadataTask(job MediaJob) {
	var taskErr error
	var metadata *media.CaptureMetadata

	fullPath, pathErr := mp.Store.GetFullPath(job.StoredPath)
	if pathErr != nil {
		taskErr = pathErr
	} else if _, statErr := os.Stat(fullPath); os.IsNotExist(statErr) {
		taskErr = fmt.Errorf("original file not found: %w", statErr)
		log.Printf("Worker: Skipping metadata task for %s: %v", job.StoredPath, taskErr)
	} else if statErr != nil {
		taskErr = fmt.Errorf("failed to stat original file: %w", statErr)
	} else {
		metadata, taskErr = media.ExtractCaptureMetadata(fullPath)
		if taskErr != nil {
			log.Printf("Worker: ERROR extracting metadata for %s: %v", job.StoredPath, taskErr)
		}
	}

	dbErr := mp.Inspections.UpdateMetadataResult(job.InspectionID, metadata, taskErr)
	if dbErr != nil {
		log.Printf("Worker: ERROR updating metadata result for inspection %d: %v", job.InspectionID, dbErr)
	}
}

// QueueJob queues a specific task if not already pending
func (mp *MediaProcessor) QueueJob(job MediaJob) bool {
	// composite key: "inspectionID:taskType"
	pendingKey := fmt.Sprintf("%d:%s", job.InspectionID, job.TaskType)

	mp.Mutex.Lock()
	if mp.Pending[pendingKey] {
		mp.Mutex.Unlock()
		return false
	}

	mp.Pending[pendingKey] = true
	mp.Mutex.Unlock()

	select {
	case mp.JobQueue <- job:
		log.Printf("Queued task '%s' for inspection %d", job.TaskType, job.InspectionID)
		return true
	default:
		log.Printf("WARNING: Media processing job queue full. Failed to queue task '%s' for inspection %d", job.TaskType, job.InspectionID)
		mp.Mutex.Lock()
		delete(mp.Pending, pendingKey)
		mp.Mutex.Unlock()
		return false
	}
}

func (mp *MediaProcessor) Stop() {
	log.Println("Stopping media processor workers...")
	close(mp.StopChan)
	mp.Wg.Wait()
	log.Println("All media processor workers stopped")
}
