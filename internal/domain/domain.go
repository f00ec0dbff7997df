package domain

import "github.com/yungbote/prompt-battle/internal/domain/generation"

type (
	Stage            = generation.Stage
	Grade            = generation.Grade
	GenerationRecord = generation.GenerationRecord
	GradeRecord      = generation.GradeRecord
)

const (
	StageBaselinePrompt   = generation.StageBaselinePrompt
	StageChallengerPrompt = generation.StageChallengerPrompt
	StageBaselineOutput   = generation.StageBaselineOutput
	StageChallengerOutput = generation.StageChallengerOutput

	StatusSucceeded = generation.StatusSucceeded
	StatusFailed    = generation.StatusFailed

	GradeLeft  = generation.GradeLeft
	GradeRight = generation.GradeRight
	GradeTie   = generation.GradeTie

	JobTypePromptBattle = generation.JobTypePromptBattle
	PayloadTask         = generation.PayloadTask
)

var (
	ErrDuplicateKey       = generation.ErrDuplicateKey
	ErrNotFound           = generation.ErrNotFound
	ErrGenerationFailed   = generation.ErrGenerationFailed
	ErrInvalidSelection   = generation.ErrInvalidSelection
	ErrMissingParameter   = generation.ErrMissingParameter
	ErrNoActiveGeneration = generation.ErrNoActiveGeneration
	ErrInvalidStage       = generation.ErrInvalidStage
	ErrQueueFull          = generation.ErrQueueFull
	ErrTimeout            = generation.ErrTimeout

	PrimaryStages = generation.PrimaryStages
	DerivedStages = generation.DerivedStages
)

func RecordKey(callID string, stage Stage) string { return generation.RecordKey(callID, stage) }

func AllStages() []Stage { return generation.AllStages() }

func ParseStage(raw string) (Stage, error) { return generation.ParseStage(raw) }

func ParseGrade(raw string) (Grade, error) { return generation.ParseGrade(raw) }
