package snapshot_test

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/sebdah/goldie/v2"

	"storyreel/internal/snapshot"
)

func populated() snapshot.Snapshot {
	p := snapshot.Ptr[string]
	return snapshot.Snapshot{
		VoiceSpeakerID:        p("narrator-2"),
		VoiceLanguage:         p("de-DE"),
		VoiceEmotion:          p("calm"),
		VoiceSpeed:            snapshot.Ptr(1.1),
		VoicePitch:            snapshot.Ptr(0.9),
		VoiceVolume:           snapshot.Ptr(0.8),
		NarrationText:         p("Once upon a time"),
		NarrationAudioPath:    p("/data/alpha/narration.wav"),
		NarrationSubtitlePath: p("/data/alpha/narration.srt"),
		NarrationDurationMs:   snapshot.Ptr(int64(42_500)),
		IsAudioProcessing:     snapshot.Ptr(true),
		AudioProgressText:     p("synthesizing 3/7"),
		AudioError:            p("timeout"),
		ReferenceImagePath:    p("/data/alpha/ref.png"),
		ReferenceImagePrompt:  p("a lighthouse at dusk"),
		ReferenceImageStyle:   p("watercolor"),
		ReferenceImagesJSON:   p(`[{"path":"/data/alpha/ref.png","prompt":"a lighthouse","style":"watercolor","createdAt":1}]`),
		SceneLinksJSON:        p(`[{"id":"s1","isGenerating":true,"generationAttempt":2}]`),
		SelectedSceneIndex:    snapshot.Ptr(3),
		CurrentStep:           snapshot.Ptr(4),
		CompletedSteps:        snapshot.Ptr(3),
		TotalSteps:            snapshot.Ptr(6),
		ProgressPercent:       snapshot.Ptr(50.5),
		LastUpdatedAt:         snapshot.Ptr(int64(1_760_000_000_000)),
		ProjectDirName:        p("alpha"),
		GeneratedTitle:        p("The Lighthouse"),
		GeneratedPrompt:       p("a story about a lighthouse"),
		GeneratedMusicPath:    p("/data/alpha/music.mp3"),
		GeneratedSceneCount:   snapshot.Ptr(7),
		GeneratedDurationSec:  snapshot.Ptr(63.2),
		FinalVideoPath:        p("/data/alpha/final.mp4"),
		AspectRatio:           p("9:16"),
		Resolution:            p("720p"),
		BackgroundMusicVolume: snapshot.Ptr(0.45),
		SubtitlesEnabled:      snapshot.Ptr(false),
	}
}

func TestRoundTripAllFields(t *testing.T) {
	original := populated()
	if got := original.Present(); got != len(snapshot.FieldNames()) {
		t.Fatalf("fixture should populate every field: %d of %d", got, len(snapshot.FieldNames()))
	}

	data, err := snapshot.Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := snapshot.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, original) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	first, err := snapshot.Encode(populated())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	second, err := snapshot.Encode(populated())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("expected identical encodings for identical snapshots")
	}
}

func TestEncodeGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)

	defaults, err := snapshot.Encode(snapshot.Defaults())
	if err != nil {
		t.Fatalf("Encode defaults: %v", err)
	}
	g.Assert(t, "defaults", defaults)

	sparse, err := snapshot.Encode(snapshot.Snapshot{
		VoiceSpeed:        snapshot.Ptr(1.25),
		IsAudioProcessing: snapshot.Ptr(true),
		ProjectDirName:    snapshot.Ptr("alpha"),
	})
	if err != nil {
		t.Fatalf("Encode sparse: %v", err)
	}
	g.Assert(t, "sparse", sparse)
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	data, err := snapshot.Encode(populated())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	extended := append([]byte(`{"futureField": {"nested": [1, 2, 3]}, `), bytes.TrimPrefix(bytes.TrimSpace(data), []byte("{"))...)

	decoded, err := snapshot.Decode(extended)
	if err != nil {
		t.Fatalf("Decode with unknown field: %v", err)
	}
	if !reflect.DeepEqual(decoded, populated()) {
		t.Fatalf("unknown field should be ignored, got %+v", decoded)
	}
}

func TestDecodeLeavesAbsentFieldsNil(t *testing.T) {
	decoded, err := snapshot.Decode([]byte(`{"projectDirName":"old","voiceSpeed":null}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if snapshot.Or(decoded.ProjectDirName, "") != "old" {
		t.Fatalf("unexpected project dir: %v", decoded.ProjectDirName)
	}
	if decoded.VoiceSpeed != nil {
		t.Fatalf("null field should decode to nil, got %v", *decoded.VoiceSpeed)
	}
	if decoded.GeneratedTitle != nil || decoded.SceneLinksJSON != nil {
		t.Fatal("absent fields should decode to nil")
	}
	if decoded.Present() != 1 {
		t.Fatalf("expected one present field, got %d", decoded.Present())
	}
}

func TestDecodeMalformed(t *testing.T) {
	inputs := map[string]string{
		"empty":      "",
		"truncated":  `{"projectDirName": "alpha"`,
		"wrong type": `{"voiceSpeed": "fast"}`,
		"array":      `[1, 2]`,
		"null":       `null`,
		"string":     `  "alpha"`,
		"number":     `42`,
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := snapshot.Decode([]byte(input))
			if err == nil {
				t.Fatal("expected decode error")
			}
			if !errors.Is(err, snapshot.ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			var decodeErr *snapshot.DecodeError
			if !errors.As(err, &decodeErr) || decodeErr.Err == nil {
				t.Fatalf("expected *DecodeError with cause, got %T", err)
			}
		})
	}
}

func TestWithDefaultsFillsOnlyNilFields(t *testing.T) {
	s := snapshot.WithDefaults(snapshot.Snapshot{VoiceLanguage: snapshot.Ptr("fr-FR")})
	if *s.VoiceLanguage != "fr-FR" {
		t.Fatalf("present field overwritten: %q", *s.VoiceLanguage)
	}
	if *s.AspectRatio != "16:9" || *s.SubtitlesEnabled != true || *s.BackgroundMusicVolume != 0.3 {
		t.Fatalf("defaults not applied: %+v", s)
	}
	if s.Present() != len(snapshot.FieldNames()) {
		t.Fatalf("expected all fields present, got %d", s.Present())
	}
}

func TestFieldNamesAreUnique(t *testing.T) {
	names := snapshot.FieldNames()
	if len(names) != 35 {
		t.Fatalf("expected 35 fields, got %d", len(names))
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			t.Fatal("field without json name")
		}
		if _, ok := seen[name]; ok {
			t.Fatalf("duplicate field name %q", name)
		}
		seen[name] = struct{}{}
	}
}

func TestGroupsCoverEveryFieldOnce(t *testing.T) {
	var grouped []string
	for _, g := range snapshot.Groups() {
		grouped = append(grouped, g.Fields...)
	}
	names := snapshot.FieldNames()
	if len(grouped) != len(names) {
		t.Fatalf("groups list %d fields, snapshot has %d", len(grouped), len(names))
	}
	for i := range names {
		if grouped[i] != names[i] {
			t.Fatalf("field %d: group order %q, encoding order %q", i, grouped[i], names[i])
		}
	}
}

func TestValue(t *testing.T) {
	s := snapshot.Snapshot{VoiceSpeed: snapshot.Ptr(1.5)}
	if v, ok := s.Value("voiceSpeed"); !ok || v.(float64) != 1.5 {
		t.Fatalf("voiceSpeed: %v %v", v, ok)
	}
	if _, ok := s.Value("voicePitch"); ok {
		t.Fatal("absent field reported present")
	}
	if _, ok := s.Value("unknown"); ok {
		t.Fatal("unknown field reported present")
	}
}
