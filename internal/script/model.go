package script

import "strings"

// Scene is one narrated beat of a video script.
type Scene struct {
	Number            int      `json:"scene_number"`
	DurationSeconds   float64  `json:"duration_seconds"`
	Title             string   `json:"title"`
	Narration         string   `json:"narration"`
	VisualDescription string   `json:"visual_description"`
	KeyConcepts       []string `json:"key_concepts"`
	AnimationType     string   `json:"animation_type"`
}

// VideoScript is the immutable input to a generation job. It is created
// upstream and consumed read-only by the pipeline.
type VideoScript struct {
	Title                string   `json:"title"`
	TotalDurationSeconds float64  `json:"total_duration_seconds"`
	TargetAudience       string   `json:"target_audience"`
	LearningObjectives   []string `json:"learning_objectives"`
	Scenes               []Scene  `json:"scenes"`
}

// FullNarration joins every scene's narration text in order, separated by a
// single space. This is the text the chunker splits.
func (s *VideoScript) FullNarration() string {
	parts := make([]string, 0, len(s.Scenes))
	for _, scene := range s.Scenes {
		if text := strings.TrimSpace(scene.Narration); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// SceneForOffset returns the scene whose time window contains the given
// offset, or the last scene when the offset runs past the script. Returns
// nil for a script with no scenes.
func (s *VideoScript) SceneForOffset(offsetSeconds float64) *Scene {
	if len(s.Scenes) == 0 {
		return nil
	}
	elapsed := 0.0
	for i := range s.Scenes {
		elapsed += s.Scenes[i].DurationSeconds
		if offsetSeconds < elapsed {
			return &s.Scenes[i]
		}
	}
	return &s.Scenes[len(s.Scenes)-1]
}
