package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// StateFileName is the fixed name of the encoded Snapshot inside a project directory.
const StateFileName = "project_state.json"

// ErrMalformed reports persisted content that could not be decoded.
var ErrMalformed = errors.New("malformed project snapshot")

// DecodeError wraps the parser failure for malformed snapshot text.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMalformed.Error(), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrMalformed }

// Snapshot is the flat aggregate of all persisted project fields.
type Snapshot struct {
	// Voice / speaker configuration.
	VoiceSpeakerID *string  `json:"voiceSpeakerId"`
	VoiceLanguage  *string  `json:"voiceLanguage"`
	VoiceEmotion   *string  `json:"voiceEmotion"`
	VoiceSpeed     *float64 `json:"voiceSpeed"`
	VoicePitch     *float64 `json:"voicePitch"`
	VoiceVolume    *float64 `json:"voiceVolume"`

	// Narration text and derived audio artifacts.
	NarrationText         *string `json:"narrationText"`
	NarrationAudioPath    *string `json:"narrationAudioPath"`
	NarrationSubtitlePath *string `json:"narrationSubtitlePath"`
	NarrationDurationMs   *int64  `json:"narrationDurationMs"`
	IsAudioProcessing     *bool   `json:"isAudioProcessing"`
	AudioProgressText     *string `json:"audioProgressText"`
	AudioError            *string `json:"audioError"`

	// Reference image metadata.
	ReferenceImagePath   *string `json:"referenceImagePath"`
	ReferenceImagePrompt *string `json:"referenceImagePrompt"`
	ReferenceImageStyle  *string `json:"referenceImageStyle"`
	ReferenceImagesJSON  *string `json:"referenceImagesJson"`

	// Per-scene linkage.
	SceneLinksJSON     *string `json:"sceneLinksJson"`
	SelectedSceneIndex *int    `json:"selectedSceneIndex"`

	// Cross-cutting progress counters.
	CurrentStep     *int     `json:"currentStep"`
	CompletedSteps  *int     `json:"completedSteps"`
	TotalSteps      *int     `json:"totalSteps"`
	ProgressPercent *float64 `json:"progressPercent"`
	LastUpdatedAt   *int64   `json:"lastUpdatedAt"`

	ProjectDirName *string `json:"projectDirName"`

	// Last generation run.
	GeneratedTitle       *string  `json:"generatedTitle"`
	GeneratedPrompt      *string  `json:"generatedPrompt"`
	GeneratedMusicPath   *string  `json:"generatedMusicPath"`
	GeneratedSceneCount  *int     `json:"generatedSceneCount"`
	GeneratedDurationSec *float64 `json:"generatedDurationSec"`
	FinalVideoPath       *string  `json:"finalVideoPath"`

	// Output settings.
	AspectRatio           *string  `json:"aspectRatio"`
	Resolution            *string  `json:"resolution"`
	BackgroundMusicVolume *float64 `json:"backgroundMusicVolume"`
	SubtitlesEnabled      *bool    `json:"subtitlesEnabled"`
}

// Encode serializes s as indented JSON terminated by a newline.
func Encode(s Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses snapshot text. Unknown fields are ignored and absent fields
// stay nil.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Snapshot{}, &DecodeError{Err: errors.New("empty input")}
	}
	if trimmed[0] != '{' {
		return Snapshot{}, &DecodeError{Err: errors.New("snapshot is not a JSON object")}
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, &DecodeError{Err: err}
	}
	return s, nil
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Or dereferences p, falling back to def when p is nil.
func Or[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// Defaults returns the default value table for every snapshot field.
func Defaults() Snapshot {
	return Snapshot{
		VoiceSpeakerID: Ptr(""),
		VoiceLanguage:  Ptr("en-US"),
		VoiceEmotion:   Ptr("neutral"),
		VoiceSpeed:     Ptr(1.0),
		VoicePitch:     Ptr(1.0),
		VoiceVolume:    Ptr(1.0),

		NarrationText:         Ptr(""),
		NarrationAudioPath:    Ptr(""),
		NarrationSubtitlePath: Ptr(""),
		NarrationDurationMs:   Ptr(int64(0)),
		IsAudioProcessing:     Ptr(false),
		AudioProgressText:     Ptr(""),
		AudioError:            Ptr(""),

		ReferenceImagePath:   Ptr(""),
		ReferenceImagePrompt: Ptr(""),
		ReferenceImageStyle:  Ptr(""),
		ReferenceImagesJSON:  Ptr("[]"),

		SceneLinksJSON:     Ptr("[]"),
		SelectedSceneIndex: Ptr(0),

		CurrentStep:     Ptr(0),
		CompletedSteps:  Ptr(0),
		TotalSteps:      Ptr(0),
		ProgressPercent: Ptr(0.0),
		LastUpdatedAt:   Ptr(int64(0)),

		ProjectDirName: Ptr(""),

		GeneratedTitle:       Ptr(""),
		GeneratedPrompt:      Ptr(""),
		GeneratedMusicPath:   Ptr(""),
		GeneratedSceneCount:  Ptr(0),
		GeneratedDurationSec: Ptr(0.0),
		FinalVideoPath:       Ptr(""),

		AspectRatio:           Ptr("16:9"),
		Resolution:            Ptr("1080p"),
		BackgroundMusicVolume: Ptr(0.3),
		SubtitlesEnabled:      Ptr(true),
	}
}

// WithDefaults returns a copy of s whose nil fields are taken from Defaults.
func WithDefaults(s Snapshot) Snapshot {
	out := s
	defaults := Defaults()
	dst := reflect.ValueOf(&out).Elem()
	src := reflect.ValueOf(defaults)
	for i := 0; i < dst.NumField(); i++ {
		if dst.Field(i).IsNil() {
			dst.Field(i).Set(src.Field(i))
		}
	}
	return out
}

// FieldNames lists the encoded names of every snapshot field in encoding order.
func FieldNames() []string {
	t := reflect.TypeOf(Snapshot{})
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		names = append(names, name)
	}
	return names
}

// Present reports how many fields of s are non-nil.
func (s Snapshot) Present() int {
	v := reflect.ValueOf(s)
	count := 0
	for i := 0; i < v.NumField(); i++ {
		if !v.Field(i).IsNil() {
			count++
		}
	}
	return count
}

// FieldGroup names a section of related snapshot fields.
type FieldGroup struct {
	Name   string
	Fields []string
}

var fieldGroups = []FieldGroup{
	{Name: "voice", Fields: []string{"voiceSpeakerId", "voiceLanguage", "voiceEmotion", "voiceSpeed", "voicePitch", "voiceVolume"}},
	{Name: "narration", Fields: []string{"narrationText", "narrationAudioPath", "narrationSubtitlePath", "narrationDurationMs", "isAudioProcessing", "audioProgressText", "audioError"}},
	{Name: "reference image", Fields: []string{"referenceImagePath", "referenceImagePrompt", "referenceImageStyle", "referenceImagesJson"}},
	{Name: "scenes", Fields: []string{"sceneLinksJson", "selectedSceneIndex"}},
	{Name: "progress", Fields: []string{"currentStep", "completedSteps", "totalSteps", "progressPercent", "lastUpdatedAt"}},
	{Name: "project", Fields: []string{"projectDirName"}},
	{Name: "generation", Fields: []string{"generatedTitle", "generatedPrompt", "generatedMusicPath", "generatedSceneCount", "generatedDurationSec", "finalVideoPath"}},
	{Name: "output", Fields: []string{"aspectRatio", "resolution", "backgroundMusicVolume", "subtitlesEnabled"}},
}

// Groups returns the field sections in encoding order.
func Groups() []FieldGroup {
	out := make([]FieldGroup, len(fieldGroups))
	for i, g := range fieldGroups {
		out[i] = FieldGroup{Name: g.Name, Fields: append([]string(nil), g.Fields...)}
	}
	return out
}

// Value returns the dereferenced value of the field encoded as name. ok is
// false when the field is absent or name is unknown.
func (s Snapshot) Value(name string) (value any, ok bool) {
	v := reflect.ValueOf(s)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if tag != name {
			continue
		}
		if v.Field(i).IsNil() {
			return nil, false
		}
		return v.Field(i).Elem().Interface(), true
	}
	return nil, false
}
