package ogcsim

import (
	"errors"
	"strings"

	"github.com/akmonengine/ogcsim/scene"
)

var (
	// ErrEngine indicates a backend could not be built from the engine configuration.
	ErrEngine = errors.New("ogcsim: engine initialization failed")

	// ErrSceneInvalid indicates a scene rejected by validation or installation.
	ErrSceneInvalid = errors.New("ogcsim: invalid scene")

	// ErrNotInitialized indicates an operation on an engine without backends or scene.
	ErrNotInitialized = errors.New("ogcsim: engine not initialized")

	// ErrInvalidSetting indicates a setter value out of range, the setting is left unchanged.
	ErrInvalidSetting = errors.New("ogcsim: invalid setting")
)

// EngineError wraps the backend failure of Initialize
type EngineError struct {
	Reason  string
	Wrapped error
}

func (e *EngineError) Error() string {
	if e.Wrapped != nil {
		return ErrEngine.Error() + ": " + e.Reason + ": " + e.Wrapped.Error()
	}
	return ErrEngine.Error() + ": " + e.Reason
}

func (e *EngineError) Is(target error) bool {
	return target == ErrEngine
}

func (e *EngineError) Unwrap() error {
	return e.Wrapped
}

// SceneError lists the problems of a rejected scene
type SceneError struct {
	Problems []string
	Wrapped  error
}

func newSceneError(err error) *SceneError {
	var validation *scene.ValidationError
	if errors.As(err, &validation) {
		return &SceneError{Problems: validation.Problems, Wrapped: err}
	}
	return &SceneError{Problems: []string{err.Error()}, Wrapped: err}
}

func (e *SceneError) Error() string {
	return ErrSceneInvalid.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *SceneError) Is(target error) bool {
	return target == ErrSceneInvalid
}

func (e *SceneError) Unwrap() error {
	return e.Wrapped
}
