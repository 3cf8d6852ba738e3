package features

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/riftlens/analysis-api/internal/models"
)

// Skillshot slot data per champion (1=Q, 2=W, 3=E, 4=R), curated from the
// Meraki Analytics ability dataset. Champions missing from the table fall
// back to counting every ability cast, which overestimates the denominator
// and therefore underestimates the hit rate rather than inflating it.

//go:embed data/skillshots.json
var skillshotJSON []byte

var skillshotSlots map[string][]int

func init() {
	if err := json.Unmarshal(skillshotJSON, &skillshotSlots); err != nil {
		panic(fmt.Sprintf("features: bad embedded skillshot data: %v", err))
	}
}

var slotLetters = map[int]string{1: "Q", 2: "W", 3: "E", 4: "R"}

// SkillshotCasts sums the casts of the champion's skillshot abilities from
// the participant's stat bag. Unknown champions count all four slots.
func SkillshotCasts(stats models.StatBag, champion string) float64 {
	slots, ok := skillshotSlots[champion]
	if !ok || champion == "" {
		return totalAbilityCasts(stats)
	}
	var total float64
	for _, slot := range slots {
		total += stats.Get(fmt.Sprintf("spell%dCasts", slot))
	}
	return total
}

func totalAbilityCasts(stats models.StatBag) float64 {
	return stats.Get("spell1Casts") + stats.Get("spell2Casts") +
		stats.Get("spell3Casts") + stats.Get("spell4Casts")
}

// SkillshotLetters returns the champion's skillshot slots as sorted key
// letters, e.g. ["Q", "E"]. Unknown champions get all four.
func SkillshotLetters(champion string) []string {
	slots, ok := skillshotSlots[champion]
	if !ok {
		return []string{"Q", "W", "E", "R"}
	}
	sorted := make([]int, 0, len(slots))
	for _, s := range slots {
		if _, valid := slotLetters[s]; valid {
			sorted = append(sorted, s)
		}
	}
	sort.Ints(sorted)
	out := make([]string, len(sorted))
	for i, s := range sorted {
		out[i] = slotLetters[s]
	}
	return out
}
