package prompt_battle

import (
	"time"

	"github.com/yungbote/prompt-battle/internal/clients/llm"
	"github.com/yungbote/prompt-battle/internal/data/repos"
	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
	"github.com/yungbote/prompt-battle/internal/prompts"
	"github.com/yungbote/prompt-battle/internal/services"
	"github.com/yungbote/prompt-battle/internal/session"
)

// UpstreamFailed is the error stored on derived stages whose input failed.
const UpstreamFailed = "upstream stage failed"

// PersistFailed is the error stored when a stage's own record could not be saved.
const PersistFailed = "record not saved"

type Options struct {
	PromptModel  string
	OutputModel  string
	StageTimeout time.Duration
}

type Pipeline struct {
	log      *logger.Logger
	records  repos.GenerationRecordRepo
	llm      llm.Client
	catalog  *prompts.Catalog
	sessions *session.Store
	emit     services.SSEEmitter
	models   map[string]string
	timeout  time.Duration
}

func New(
	baseLog *logger.Logger,
	records repos.GenerationRecordRepo,
	client llm.Client,
	catalog *prompts.Catalog,
	sessions *session.Store,
	emit services.SSEEmitter,
	opts Options,
) *Pipeline {
	return &Pipeline{
		log:      baseLog.With("job", types.JobTypePromptBattle),
		records:  records,
		llm:      client,
		catalog:  catalog,
		sessions: sessions,
		emit:     emit,
		models: map[string]string{
			prompts.ModelPrompt: opts.PromptModel,
			prompts.ModelOutput: opts.OutputModel,
		},
		timeout: opts.StageTimeout,
	}
}

func (p *Pipeline) Type() string { return types.JobTypePromptBattle }
