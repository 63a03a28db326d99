package cli

import (
	"errors"
	"time"

	internalApp "github.com/felixgeelhaar/vouch/internal/app"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/commands"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
)

// ErrNotInitialized is returned by commands run without a database.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// App holds the CLI application dependencies.
type App struct {
	// Commitment Command Handlers
	CreateCommitmentHandler     *commands.CreateCommitmentHandler
	CompleteCommitmentHandler   *commands.CompleteCommitmentHandler
	SnoozeCommitmentHandler     *commands.SnoozeCommitmentHandler
	RescheduleCommitmentHandler *commands.RescheduleCommitmentHandler

	// Trust Command Handlers
	LogTrustEventHandler *commands.LogTrustEventHandler

	// Query Handlers
	ListCommitmentsHandler *queries.ListCommitmentsHandler
	GetCommitmentHandler   *queries.GetCommitmentHandler
	TrustReportHandler     *queries.TrustReportHandler
	ResolveDeadlineHandler *queries.ResolveDeadlineHandler

	// Location is the zone deadlines are shown in.
	Location *time.Location

	// Current user
	CurrentUserID string
}

// NewApp creates a CLI application instance backed by the provided container.
func NewApp(container *internalApp.Container, currentUser string) *App {
	return &App{
		CreateCommitmentHandler:     container.CreateCommitmentHandler,
		CompleteCommitmentHandler:   container.CompleteCommitmentHandler,
		SnoozeCommitmentHandler:     container.SnoozeCommitmentHandler,
		RescheduleCommitmentHandler: container.RescheduleCommitmentHandler,
		LogTrustEventHandler:        container.LogTrustEventHandler,
		ListCommitmentsHandler:      container.ListCommitmentsHandler,
		GetCommitmentHandler:        container.GetCommitmentHandler,
		TrustReportHandler:          container.TrustReportHandler,
		ResolveDeadlineHandler:      container.ResolveDeadlineHandler,
		Location:                    container.DeadlineResolver.Location(),
		CurrentUserID:               currentUser,
	}
}

// SetCurrentUserID sets the current user ID.
func (a *App) SetCurrentUserID(id string) {
	a.CurrentUserID = id
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
