package service

import "stridekit/internal/modules/session/domain"

type event interface{}

type commandKind uint8

const (
	cmdStart commandKind = iota + 1
	cmdStop
	cmdAnalyze
	cmdReset
)

type command struct {
	kind  commandKind
	req   domain.StartRequest
	reply chan error
}

// Notifications carry the epoch of the session that produced them.

type recorderEvent struct {
	epoch  uint64
	status domain.RecorderStatus
}

type analysisEvent struct {
	epoch  uint64
	status domain.AnalysisStatus
}

type tickEvent struct {
	epoch uint64
}

type fetchedEvent struct {
	epoch         uint64
	measurementID string
	result        *domain.MeasurementResult
	err           error
}
