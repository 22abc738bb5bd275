package voting

// curate applies cross-emoji validation and penalty rules to the ranked
// groups. Runs after ranking so adjustments never reorder the consensus.
// all includes below-floor groups: evidence from an emoji that missed the
// vote floor still counts as context.
func curate(ranked []*emojiGroup, all map[string]*emojiGroup) {
	person := Normalize(PersonEmoji)
	face := Normalize(FaceEmoji)
	nsfw := Normalize(NSFWEmoji)

	_, personPresent := all[person]
	_, facePresent := all[face]
	posePresent := anyPoseIndicator(all)

	for _, g := range ranked {
		switch g.emoji {
		case person:
			if facePresent {
				g.weight++
				g.score++
				g.validation = append(g.validation, "face_confirmed")
			}
			if posePresent {
				g.weight++
				g.validation = append(g.validation, "pose_confirmed")
			}

		case nsfw:
			// NSFW without human context is suspect.
			if personPresent {
				g.weight++
				g.validation = append(g.validation, "human_context_confirmed")
			} else {
				g.weight--
				g.validation = append(g.validation, "suspicious_no_humans")
			}
			if g.weight < 0 {
				g.weight = 0
			}
			if g.score < 0 {
				g.score = 0
			}
		}
	}
}

// anyPoseIndicator reports whether any group carries a pose property in its
// specialized evidence.
func anyPoseIndicator(all map[string]*emojiGroup) bool {
	for _, g := range all {
		for _, votes := range g.specialized {
			for _, v := range votes {
				if v.Properties == nil {
					continue
				}
				if pose, ok := v.Properties["pose"].(string); ok && pose != "" {
					return true
				}
			}
		}
	}
	return false
}
