package main

import (
	"errors"

	"github.com/nova-cli/nova/internal/errs"
)

// Exit codes per spec.md §6: success is 0; expected domain errors get a
// distinct non-zero code per kind; unexpected errors get a distinct
// "internal" code.
const (
	exitOK                = 0
	exitNotFound           = 10
	exitAlreadyExists      = 11
	exitInvalidSource      = 12
	exitInvalidManifest    = 13
	exitValidation         = 14
	exitInternal           = 50
)

func exitCodeFor(err error) int {
	if err == nil {
		return exitOK
	}

	var notFound *errs.MarketplaceNotFound
	if errors.As(err, &notFound) {
		return exitNotFound
	}
	var exists *errs.MarketplaceAlreadyExists
	if errors.As(err, &exists) {
		return exitAlreadyExists
	}
	var invalidSource *errs.MarketplaceInvalidSource
	if errors.As(err, &invalidSource) {
		return exitInvalidSource
	}
	var invalidManifest *errs.MarketplaceInvalidManifest
	if errors.As(err, &invalidManifest) {
		return exitInvalidManifest
	}
	var validation *errs.ConfigValidation
	if errors.As(err, &validation) {
		return exitValidation
	}
	return exitInternal
}
