package generation

// JobTypePromptBattle runs both stage sets for one submitted task.
const JobTypePromptBattle = "prompt_battle"

// Payload keys of a prompt battle job.
const (
	PayloadTask = "task"
)
