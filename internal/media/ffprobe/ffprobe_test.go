package ffprobe

import "testing"

func TestParseSummarizesStreams(t *testing.T) {
	payload := `{
		"streams": [
			{"codec_type": "video", "width": 1280, "height": 720},
			{"codec_type": "audio"}
		],
		"format": {"duration": "15.04", "size": "123456", "format_name": "mov,mp4,m4a"}
	}`
	info, err := parse([]byte(payload))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !info.HasVideo || !info.HasAudio {
		t.Error("stream flags should both be set")
	}
	if info.Width != 1280 || info.Height != 720 {
		t.Errorf("dimensions = %dx%d", info.Width, info.Height)
	}
	if info.DurationSeconds != 15.04 {
		t.Errorf("duration = %v", info.DurationSeconds)
	}
	if info.SizeBytes != 123456 {
		t.Errorf("size = %d", info.SizeBytes)
	}
}

func TestParseToleratesMissingFields(t *testing.T) {
	info, err := parse([]byte(`{"format": {}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if info.HasVideo || info.HasAudio || info.DurationSeconds != 0 {
		t.Errorf("empty payload should summarize to zero values: %+v", info)
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}
