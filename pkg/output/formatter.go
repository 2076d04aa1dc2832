package output

import (
	"github.com/sdejongh/sidediff/pkg/models"
)

// ProgressReporter receives notifications while a batch runs.
// FileDone calls are serialized by the caller.
type ProgressReporter interface {
	// Start announces the number of files about to be compared
	Start(totalFiles int)

	// FileDone reports one finished file
	FileDone(result models.FileResult)

	// Finish is called once with the finalized report
	Finish(report *models.Report)
}

// NullProgress discards progress notifications
type NullProgress struct{}

func (NullProgress) Start(int)                  {}
func (NullProgress) FileDone(models.FileResult) {}
func (NullProgress) Finish(*models.Report)      {}
