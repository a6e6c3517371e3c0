package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultFor(t *testing.T) {
	assert.Equal(t, ResultSuccess, ResultFor(nil, false))
	assert.Equal(t, ResultFailed, ResultFor(errors.New("boom"), false))
	assert.Equal(t, ResultCanceled, ResultFor(errors.New("boom"), true))
}

func TestNoopRecorderSatisfiesRecorder(_ *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncStageResult("build", ResultSuccess)
	r.SetFetchConcurrency(2)
}
