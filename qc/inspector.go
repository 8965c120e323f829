package qc

import (
	"log"
	"math/rand"
	"sync"
	"time"
)

// DefaultConfidenceThreshold is the filter cutoff used when none is
// configured.
const DefaultConfidenceThreshold = 0.7

// Config carries the inspection settings read once at startup and passed in
// explicitly; the inspector holds no package-level state.
type Config struct {
	Mode                DetectionMode
	ConfidenceThreshold float64
}

// Inspector is the single entry point for running inspections. It selects a
// detector strategy per input, applies provenance-based confidence
// adjustment, and assembles the report. Inspections are independent
// single-shot computations; the inspector only serializes access to its
// random source.
type Inspector struct {
	cfg Config

	mu   sync.Mutex
	rng  *rand.Rand
	heur *HeuristicDetector
	rand *RandomDetector
	ml   *MLDetector
}

// NewInspector builds an inspector around a contour backend and a seedable
// random source. Pass nil rng to seed from the clock.
func NewInspector(cfg Config, contours ContourFinder, rng *rand.Rand) *Inspector {
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeSimulated
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Inspector{
		cfg:  cfg,
		rng:  rng,
		heur: NewHeuristicDetector(contours, rng),
		rand: NewRandomDetector(rng),
		ml:   NewMLDetector(rng),
	}
}

// Threshold returns the active confidence cutoff.
func (ins *Inspector) Threshold() float64 {
	return ins.cfg.ConfidenceThreshold
}

// Inspect runs one atomic inspection over the raw file bytes. The file type
// must already be classified by the caller. Undecodable image bytes surface
// as ErrInputDecode; there is no partial result and no internal retry.
func (ins *Inspector) Inspect(data []byte, fileType FileType, hasCADFile, forceSimulated bool) (*Report, error) {
	inspectionID := newInspectionID()

	var analysis ImageAnalysis
	if fileType == FileTypeImage {
		img, err := decodeImage(data)
		if err != nil {
			return nil, err
		}
		analysis = analyzeImage(img)
	} else {
		analysis = nominalAnalysis(fileType)
	}
	width, height := analysis.Resolution[0], analysis.Resolution[1]

	useSimulated := forceSimulated || ins.cfg.Mode == ModeSimulated
	detectionMode := ModeML
	if useSimulated {
		detectionMode = ModeSimulated
	}

	ins.mu.Lock()
	var defects []Defect
	if useSimulated {
		if fileType == FileTypeImage {
			detection := ins.heur.Detect(data, width, height)
			if detection.Fallback {
				log.Printf("qc: image analysis unavailable for %s, using randomized defects: %s", inspectionID, detection.FallbackReason)
				defects = ins.rand.Detect(width, height)
			} else {
				defects = detection.Defects
			}
		} else {
			defects = ins.rand.Detect(width, height)
		}
	} else {
		// no trained model is wired in yet; the ML detector degrades to the
		// randomized generator
		log.Printf("qc: ml mode not yet implemented for %s input, using simulated detection", fileType)
		defects = ins.ml.Detect(width, height)
	}
	ins.mu.Unlock()

	defects = AdjustAndFilter(defects, fileType, hasCADFile, ins.cfg.ConfidenceThreshold)
	status := deriveStatus(defects)

	requiresReshoot := false
	lightingWarning := ""
	if fileType == FileTypeImage {
		requiresReshoot = analysis.LightingQuality != LightingGood
		lightingWarning = analysis.LightingWarning()
	}

	report := &Report{
		InspectionID:        inspectionID,
		Status:              status,
		Recommendation:      status.Recommendation(),
		Defects:             defects,
		DefectCount:         len(defects),
		DetectionMode:       detectionMode,
		ModelVersion:        ModelVersion,
		ConfidenceThreshold: ins.cfg.ConfidenceThreshold,
		ImageAnalysis:       analysis,
		RequiresReshoot:     requiresReshoot,
		LightingWarning:     lightingWarning,
		FileType:            fileType,
		HasCADFile:          hasCADFile,
		ConfidenceNote:      confidenceNote(fileType, hasCADFile),
	}

	log.Printf("qc: inspection %s: %s, %d defect(s), file_type=%s", inspectionID, status, len(defects), fileType)
	return report, nil
}
