package script

import "testing"

func sampleScript() *VideoScript {
	return &VideoScript{
		Title:                "Fractions",
		TotalDurationSeconds: 15,
		Scenes: []Scene{
			{Number: 1, DurationSeconds: 5, Narration: "A fraction names part of a whole."},
			{Number: 2, DurationSeconds: 5, Narration: "The top number is the numerator."},
			{Number: 3, DurationSeconds: 5, Narration: "The bottom number is the denominator."},
		},
	}
}

func TestFullNarrationJoinsScenes(t *testing.T) {
	got := sampleScript().FullNarration()
	want := "A fraction names part of a whole. The top number is the numerator. The bottom number is the denominator."
	if got != want {
		t.Errorf("FullNarration = %q, want %q", got, want)
	}
}

func TestFullNarrationSkipsEmptyScenes(t *testing.T) {
	vs := sampleScript()
	vs.Scenes[1].Narration = "   "
	got := vs.FullNarration()
	want := "A fraction names part of a whole. The bottom number is the denominator."
	if got != want {
		t.Errorf("FullNarration = %q, want %q", got, want)
	}
}

func TestSceneForOffset(t *testing.T) {
	vs := sampleScript()
	tests := []struct {
		offset float64
		want   int
	}{
		{0, 1},
		{4.9, 1},
		{5, 2},
		{12, 3},
		{99, 3},
	}
	for _, tt := range tests {
		scene := vs.SceneForOffset(tt.offset)
		if scene == nil || scene.Number != tt.want {
			t.Errorf("SceneForOffset(%v) = %+v, want scene %d", tt.offset, scene, tt.want)
		}
	}
}

func TestSceneForOffsetEmptyScript(t *testing.T) {
	vs := &VideoScript{}
	if scene := vs.SceneForOffset(0); scene != nil {
		t.Errorf("expected nil scene, got %+v", scene)
	}
}

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, tt := range tests {
		if got := cleanJSONBlock(tt.in); got != tt.want {
			t.Errorf("cleanJSONBlock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeScriptRepairsNumbering(t *testing.T) {
	vs := &VideoScript{
		Scenes: []Scene{
			{Number: 7, Narration: "one"},
			{Number: 7, Narration: "two"},
		},
	}
	normalizeScript(vs, Request{DurationSeconds: 30, Audience: "students"})
	if vs.TotalDurationSeconds != 30 {
		t.Errorf("total duration = %v, want 30", vs.TotalDurationSeconds)
	}
	if vs.TargetAudience != "students" {
		t.Errorf("audience = %q", vs.TargetAudience)
	}
	for i, scene := range vs.Scenes {
		if scene.Number != i+1 {
			t.Errorf("scene %d number = %d", i, scene.Number)
		}
		if scene.DurationSeconds != 15 {
			t.Errorf("scene %d duration = %v, want 15", i, scene.DurationSeconds)
		}
	}
}
