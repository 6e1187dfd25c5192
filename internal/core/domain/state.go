package domain

// UploadPhase is the stage of a single upload attempt
type UploadPhase string

const (
	UploadIdle      UploadPhase = "idle"
	UploadUploading UploadPhase = "uploading"
	UploadSucceeded UploadPhase = "succeeded"
	UploadFailed    UploadPhase = "failed"
)

// UploadState is transient and belongs to one attempt
type UploadState struct {
	Phase    UploadPhase
	Progress int         // 0-100, meaningful while uploading
	Asset    *MediaAsset // Set when succeeded
	Reason   string      // Set when failed
}

// Uploading returns the state for an attempt in flight
func Uploading(progress int) UploadState {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return UploadState{Phase: UploadUploading, Progress: progress}
}

// Succeeded returns the terminal success state
func Succeeded(asset *MediaAsset) UploadState {
	return UploadState{Phase: UploadSucceeded, Progress: 100, Asset: asset}
}

// Failed returns the terminal failure state
func Failed(reason string) UploadState {
	return UploadState{Phase: UploadFailed, Reason: reason}
}

// Terminal reports whether the attempt has finished
func (s UploadState) Terminal() bool {
	return s.Phase == UploadSucceeded || s.Phase == UploadFailed
}

// PlayState is what the player reports on play/pause changes
type PlayState int

const (
	Paused PlayState = iota
	Playing
)

func (p PlayState) String() string {
	if p == Playing {
		return "playing"
	}
	return "paused"
}

// ControllerState is the top-level session lifecycle
type ControllerState int

const (
	StateNoMedia ControllerState = iota
	StateUploading
	StateReady
)

func (s ControllerState) String() string {
	switch s {
	case StateUploading:
		return "uploading"
	case StateReady:
		return "ready"
	default:
		return "no media"
	}
}
