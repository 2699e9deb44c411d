package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals rejected user input (search term, request payload).
	ErrValidation = errors.New("validation failed")
	// ErrRetrieval signals that SERP data could not be fetched after all retries.
	ErrRetrieval = errors.New("serp retrieval failed")
	// ErrMissingStageInput signals that a pipeline stage ran without a required upstream artifact.
	ErrMissingStageInput = errors.New("missing stage input")
	// ErrAnalysisFailed wraps any failure of a pipeline run.
	ErrAnalysisFailed = errors.New("search term analysis failed")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrRefinerUnavailable signals that no LLM refiner is configured.
	ErrRefinerUnavailable = errors.New("recommendation refiner unavailable")
	// ErrRefinerFailed signals an LLM provider failure during refinement.
	ErrRefinerFailed = errors.New("recommendation refiner failed")
)
