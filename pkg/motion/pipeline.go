package motion

// PipelineConfig holds the tunables for a Pipeline
type PipelineConfig struct {
	Depth      int  // Smoothing window size (>= 1)
	UnifyEmpty bool // Emit a zero face frame when no face is found, like body does
}

// Pipeline runs standardize → gate → normalize → smooth → encode for all
// three modalities. Each modality has its own smoothing window.
// Not safe for concurrent use.
type Pipeline struct {
	unifyEmpty bool
	smoothers  map[Modality]*Smoother
}

// NewPipeline creates a pipeline with empty smoothing windows
func NewPipeline(cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		unifyEmpty: cfg.UnifyEmpty,
		smoothers: map[Modality]*Smoother{
			Face:        NewSmoother(cfg.Depth),
			Body:        NewSmoother(cfg.Depth),
			Orientation: NewSmoother(cfg.Depth),
		},
	}
}

// Depth returns the smoothing depth
func (p *Pipeline) Depth() int {
	return p.smoothers[Body].Depth()
}

// SetDepth changes the smoothing depth of every window, clearing them all
func (p *Pipeline) SetDepth(depth int) error {
	if depth < 1 {
		return ErrInvalidDepth
	}
	for _, s := range p.smoothers {
		if err := s.SetDepth(depth); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears every smoothing window
func (p *Pipeline) Reset() {
	for _, s := range p.smoothers {
		s.Reset()
	}
}

// Body processes one tick of body detections. A frame is always produced:
// with no usable detections every slot is zero.
func (p *Pipeline) Body(in BodyInput) (Encoded, error) {
	frame := Standardize(BodyLayout, in.Detections, BodyGate)
	frame = NormalizePixels(frame, in.Width, in.Height)
	return p.Frame(frame)
}

// Face processes one tick of face detections. ok is false when no face was
// found and nothing should be sent, unless UnifyEmpty is set.
func (p *Pipeline) Face(in FaceInput) (enc Encoded, ok bool, err error) {
	frame, found, err := StandardizeFace(in.Faces)
	if err != nil {
		return Encoded{}, false, err
	}
	if !found {
		if !p.unifyEmpty {
			return Encoded{}, false, nil
		}
		frame = FaceLayout.Empty()
	}
	frame = NormalizePixels(frame, in.Width, in.Height)
	enc, err = p.Frame(frame)
	if err != nil {
		return Encoded{}, false, err
	}
	return enc, true, nil
}

// Orientation processes one device orientation reading in degrees
func (p *Pipeline) Orientation(o Angles) (Encoded, error) {
	return p.Frame(OrientationFrame(NormalizeOrientation(o)))
}

// Frame smooths and encodes an already standardized, normalized frame
func (p *Pipeline) Frame(f Frame) (Encoded, error) {
	s, ok := p.smoothers[f.Modality]
	if !ok {
		return Encode(f) // reports the unknown modality
	}
	layout, _ := LayoutFor(f.Modality)
	if !layout.Matches(f) {
		return Encode(f)
	}
	return Encode(s.Push(f))
}
