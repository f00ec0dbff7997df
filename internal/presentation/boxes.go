package presentation

import (
	"fmt"
	"strings"

	types "github.com/yungbote/prompt-battle/internal/domain"
)

// Box ids of the page, in display order.
const (
	Box1 = "output-box1"
	Box2 = "output-box2"
	Box3 = "output-box3"
	Box4 = "output-box4"
)

var boxStages = map[string]types.Stage{
	Box1: types.StageBaselinePrompt,
	Box2: types.StageChallengerPrompt,
	Box3: types.StageBaselineOutput,
	Box4: types.StageChallengerOutput,
}

// StageForBox resolves a box id. Only derived boxes are addressable one by one.
func StageForBox(boxID string) (types.Stage, error) {
	boxID = strings.TrimSpace(boxID)
	st, ok := boxStages[boxID]
	if !ok || st.Primary() {
		return "", fmt.Errorf("%w: invalid box id %q", types.ErrInvalidStage, boxID)
	}
	return st, nil
}

// BoxForStage is the inverse of the box table.
func BoxForStage(st types.Stage) string {
	for box, s := range boxStages {
		if s == st {
			return box
		}
	}
	return ""
}

func contentID(box string) string { return box + "-content" }
