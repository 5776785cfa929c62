package models

// PoseInstructions is the fixed, ordered list of camera/pose directives.
// Each entry doubles as the cache key inside OutfitLayer.PoseImages.
var PoseInstructions = []string{
	"Full frontal view, hands on hips",
	"Slightly turned, 3/4 view",
	"Side profile view",
	"Jumping in the air, mid-action shot",
	"Walking towards camera",
	"Leaning against a wall",
}

// PoseInstruction returns the instruction at index i
func PoseInstruction(i int) (string, bool) {
	if i < 0 || i >= len(PoseInstructions) {
		return "", false
	}
	return PoseInstructions[i], true
}

// PoseIndex returns the position of instruction in PoseInstructions, or -1
func PoseIndex(instruction string) int {
	for i, p := range PoseInstructions {
		if p == instruction {
			return i
		}
	}
	return -1
}
