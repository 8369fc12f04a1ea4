package settings

import (
	"context"
	"fmt"
	"sort"

	"storyreel/internal/fieldstore"
	"storyreel/internal/snapshot"
)

// Store names used as fieldstore namespaces.
const (
	StoreVoice      = "voice"
	StoreNarration  = "narration"
	StoreReference  = "reference"
	StoreScenes     = "scenes"
	StoreProgress   = "progress"
	StoreProject    = "project"
	StoreGeneration = "generation"
	StoreOutput     = "output"
)

// Voice holds speaker configuration.
type Voice struct {
	SpeakerID *fieldstore.Scalar[string]
	Language  *fieldstore.Scalar[string]
	Emotion   *fieldstore.Scalar[string]
	Speed     *fieldstore.Scalar[float64]
	Pitch     *fieldstore.Scalar[float64]
	Volume    *fieldstore.Scalar[float64]
}

// Narration holds narration text and the audio job state.
type Narration struct {
	Text         *fieldstore.Scalar[string]
	AudioPath    *fieldstore.Scalar[string]
	SubtitlePath *fieldstore.Scalar[string]
	DurationMs   *fieldstore.Scalar[int64]
	Processing   *fieldstore.Scalar[bool]
	ProgressText *fieldstore.Scalar[string]
	Error        *fieldstore.Scalar[string]
}

// Reference holds reference image metadata.
type Reference struct {
	ImagePath   *fieldstore.Scalar[string]
	ImagePrompt *fieldstore.Scalar[string]
	ImageStyle  *fieldstore.Scalar[string]
	ImagesJSON  *fieldstore.Scalar[string]
}

// Scenes holds the scene blob and the selected scene.
type Scenes struct {
	LinksJSON     *fieldstore.Scalar[string]
	SelectedIndex *fieldstore.Scalar[int]
}

// Progress holds the cross-cutting progress counters.
type Progress struct {
	CurrentStep    *fieldstore.Scalar[int]
	CompletedSteps *fieldstore.Scalar[int]
	TotalSteps     *fieldstore.Scalar[int]
	Percent        *fieldstore.Scalar[float64]
	LastUpdatedAt  *fieldstore.Scalar[int64]
}

// Project holds the active project directory pointer.
type Project struct {
	DirName *fieldstore.Scalar[string]
}

// GenerationResult is the compound value written when a generation run
// completes.
type GenerationResult struct {
	Title       string
	Prompt      string
	MusicPath   string
	SceneCount  int
	DurationSec float64
}

// Generation holds the last generation run.
type Generation struct {
	Title          *fieldstore.Scalar[string]
	Prompt         *fieldstore.Scalar[string]
	MusicPath      *fieldstore.Scalar[string]
	SceneCount     *fieldstore.Scalar[int]
	DurationSec    *fieldstore.Scalar[float64]
	FinalVideoPath *fieldstore.Scalar[string]

	// Result commits Title through DurationSec in one transaction.
	Result *fieldstore.Group[GenerationResult]
}

// Output holds render settings.
type Output struct {
	AspectRatio           *fieldstore.Scalar[string]
	Resolution            *fieldstore.Scalar[string]
	BackgroundMusicVolume *fieldstore.Scalar[float64]
	SubtitlesEnabled      *fieldstore.Scalar[bool]
}

// Stores bundles every domain store over one backend.
type Stores struct {
	Voice      Voice
	Narration  Narration
	Reference  Reference
	Scenes     Scenes
	Progress   Progress
	Project    Project
	Generation Generation
	Output     Output

	entries map[string]Entry
}

// New binds every field to backend.
func New(backend fieldstore.Backend) *Stores {
	d := snapshot.Defaults()
	s := &Stores{entries: make(map[string]Entry)}

	s.Voice = Voice{
		SpeakerID: str(s, backend, StoreVoice, "speaker_id", d.VoiceSpeakerID),
		Language:  str(s, backend, StoreVoice, "language", d.VoiceLanguage),
		Emotion:   str(s, backend, StoreVoice, "emotion", d.VoiceEmotion),
		Speed:     flt(s, backend, StoreVoice, "speed", d.VoiceSpeed),
		Pitch:     flt(s, backend, StoreVoice, "pitch", d.VoicePitch),
		Volume:    flt(s, backend, StoreVoice, "volume", d.VoiceVolume),
	}
	s.Narration = Narration{
		Text:         str(s, backend, StoreNarration, "text", d.NarrationText),
		AudioPath:    str(s, backend, StoreNarration, "audio_path", d.NarrationAudioPath),
		SubtitlePath: str(s, backend, StoreNarration, "subtitle_path", d.NarrationSubtitlePath),
		DurationMs:   i64(s, backend, StoreNarration, "duration_ms", d.NarrationDurationMs),
		Processing:   boolean(s, backend, StoreNarration, "is_audio_processing", d.IsAudioProcessing),
		ProgressText: str(s, backend, StoreNarration, "progress_text", d.AudioProgressText),
		Error:        str(s, backend, StoreNarration, "error", d.AudioError),
	}
	s.Reference = Reference{
		ImagePath:   str(s, backend, StoreReference, "image_path", d.ReferenceImagePath),
		ImagePrompt: str(s, backend, StoreReference, "image_prompt", d.ReferenceImagePrompt),
		ImageStyle:  str(s, backend, StoreReference, "image_style", d.ReferenceImageStyle),
		ImagesJSON:  str(s, backend, StoreReference, "images_json", d.ReferenceImagesJSON),
	}
	s.Scenes = Scenes{
		LinksJSON:     str(s, backend, StoreScenes, "links_json", d.SceneLinksJSON),
		SelectedIndex: integer(s, backend, StoreScenes, "selected_index", d.SelectedSceneIndex),
	}
	s.Progress = Progress{
		CurrentStep:    integer(s, backend, StoreProgress, "current_step", d.CurrentStep),
		CompletedSteps: integer(s, backend, StoreProgress, "completed_steps", d.CompletedSteps),
		TotalSteps:     integer(s, backend, StoreProgress, "total_steps", d.TotalSteps),
		Percent:        flt(s, backend, StoreProgress, "percent", d.ProgressPercent),
		LastUpdatedAt:  i64(s, backend, StoreProgress, "last_updated_at", d.LastUpdatedAt),
	}
	s.Project = Project{
		DirName: str(s, backend, StoreProject, "dir_name", d.ProjectDirName),
	}
	s.Generation = Generation{
		Title:          str(s, backend, StoreGeneration, "title", d.GeneratedTitle),
		Prompt:         str(s, backend, StoreGeneration, "prompt", d.GeneratedPrompt),
		MusicPath:      str(s, backend, StoreGeneration, "music_path", d.GeneratedMusicPath),
		SceneCount:     integer(s, backend, StoreGeneration, "scene_count", d.GeneratedSceneCount),
		DurationSec:    flt(s, backend, StoreGeneration, "duration_sec", d.GeneratedDurationSec),
		FinalVideoPath: str(s, backend, StoreGeneration, "final_video_path", d.FinalVideoPath),
	}
	s.Generation.Result = newResultGroup(backend, &s.Generation)
	s.Output = Output{
		AspectRatio:           str(s, backend, StoreOutput, "aspect_ratio", d.AspectRatio),
		Resolution:            str(s, backend, StoreOutput, "resolution", d.Resolution),
		BackgroundMusicVolume: flt(s, backend, StoreOutput, "background_music_volume", d.BackgroundMusicVolume),
		SubtitlesEnabled:      boolean(s, backend, StoreOutput, "subtitles_enabled", d.SubtitlesEnabled),
	}
	return s
}

func newResultGroup(backend fieldstore.Backend, g *Generation) *fieldstore.Group[GenerationResult] {
	read := func(ctx context.Context) (GenerationResult, error) {
		var (
			out GenerationResult
			err error
		)
		if out.Title, err = g.Title.Get(ctx); err != nil {
			return out, err
		}
		if out.Prompt, err = g.Prompt.Get(ctx); err != nil {
			return out, err
		}
		if out.MusicPath, err = g.MusicPath.Get(ctx); err != nil {
			return out, err
		}
		if out.SceneCount, err = g.SceneCount.Get(ctx); err != nil {
			return out, err
		}
		out.DurationSec, err = g.DurationSec.Get(ctx)
		return out, err
	}
	write := func(r GenerationResult) map[string]string {
		return map[string]string{
			g.Title.Key():       g.Title.Encode(r.Title),
			g.Prompt.Key():      g.Prompt.Encode(r.Prompt),
			g.MusicPath.Key():   g.MusicPath.Encode(r.MusicPath),
			g.SceneCount.Key():  g.SceneCount.Encode(r.SceneCount),
			g.DurationSec.Key(): g.DurationSec.Encode(r.DurationSec),
		}
	}
	return fieldstore.NewGroup(backend, StoreGeneration, read, write)
}

// Lookup returns the field registered as "store.key".
func (s *Stores) Lookup(name string) (Entry, bool) {
	entry, ok := s.entries[name]
	return entry, ok
}

// Names lists every registered field name in sorted order.
func (s *Stores) Names() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset returns every field to its default, skipping names in keep.
func (s *Stores) Reset(ctx context.Context, keep ...string) error {
	skip := make(map[string]bool, len(keep))
	for _, name := range keep {
		skip[name] = true
	}
	for _, name := range s.Names() {
		if skip[name] {
			continue
		}
		if err := s.entries[name].Reset(ctx); err != nil {
			return err
		}
	}
	return nil
}

func register[T any](s *Stores, field *fieldstore.Scalar[T]) *fieldstore.Scalar[T] {
	if _, dup := s.entries[field.Name()]; dup {
		panic(fmt.Sprintf("settings: duplicate field %s", field.Name()))
	}
	s.entries[field.Name()] = textEntry[T]{field: field}
	return field
}

func str(s *Stores, b fieldstore.Backend, store, key string, def *string) *fieldstore.Scalar[string] {
	return register(s, fieldstore.NewString(b, store, key, snapshot.Or(def, "")))
}

func integer(s *Stores, b fieldstore.Backend, store, key string, def *int) *fieldstore.Scalar[int] {
	return register(s, fieldstore.NewInt(b, store, key, snapshot.Or(def, 0)))
}

func i64(s *Stores, b fieldstore.Backend, store, key string, def *int64) *fieldstore.Scalar[int64] {
	return register(s, fieldstore.NewInt64(b, store, key, snapshot.Or(def, 0)))
}

func flt(s *Stores, b fieldstore.Backend, store, key string, def *float64) *fieldstore.Scalar[float64] {
	return register(s, fieldstore.NewFloat(b, store, key, snapshot.Or(def, 0)))
}

func boolean(s *Stores, b fieldstore.Backend, store, key string, def *bool) *fieldstore.Scalar[bool] {
	return register(s, fieldstore.NewBool(b, store, key, snapshot.Or(def, false)))
}
