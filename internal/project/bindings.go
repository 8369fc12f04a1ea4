package project

import (
	"context"

	"storyreel/internal/fieldstore"
	"storyreel/internal/settings"
	"storyreel/internal/snapshot"
)

// binding ties one snapshot field to its field store. A nil apply means the
// field is restored by dedicated logic in Load.
type binding struct {
	name   string
	gather func(ctx context.Context, snap *snapshot.Snapshot) error
	apply  func(ctx context.Context, snap *snapshot.Snapshot) (bool, error)
}

func bind[T any](name string, field fieldstore.Field[T], slot func(*snapshot.Snapshot) **T) binding {
	return binding{
		name: name,
		gather: func(ctx context.Context, snap *snapshot.Snapshot) error {
			value, err := field.Get(ctx)
			if err != nil {
				return err
			}
			*slot(snap) = &value
			return nil
		},
		apply: func(ctx context.Context, snap *snapshot.Snapshot) (bool, error) {
			value := *slot(snap)
			if value == nil {
				return false, nil
			}
			return true, field.Set(ctx, *value)
		},
	}
}

func gatherOnly(b binding) binding {
	b.apply = nil
	return b
}

// bindings lists every snapshot field in encoding order.
func bindings(s *settings.Stores) []binding {
	type S = snapshot.Snapshot
	return []binding{
		bind("voiceSpeakerId", s.Voice.SpeakerID, func(x *S) **string { return &x.VoiceSpeakerID }),
		bind("voiceLanguage", s.Voice.Language, func(x *S) **string { return &x.VoiceLanguage }),
		bind("voiceEmotion", s.Voice.Emotion, func(x *S) **string { return &x.VoiceEmotion }),
		bind("voiceSpeed", s.Voice.Speed, func(x *S) **float64 { return &x.VoiceSpeed }),
		bind("voicePitch", s.Voice.Pitch, func(x *S) **float64 { return &x.VoicePitch }),
		bind("voiceVolume", s.Voice.Volume, func(x *S) **float64 { return &x.VoiceVolume }),

		bind("narrationText", s.Narration.Text, func(x *S) **string { return &x.NarrationText }),
		bind("narrationAudioPath", s.Narration.AudioPath, func(x *S) **string { return &x.NarrationAudioPath }),
		bind("narrationSubtitlePath", s.Narration.SubtitlePath, func(x *S) **string { return &x.NarrationSubtitlePath }),
		bind("narrationDurationMs", s.Narration.DurationMs, func(x *S) **int64 { return &x.NarrationDurationMs }),
		bind("isAudioProcessing", s.Narration.Processing, func(x *S) **bool { return &x.IsAudioProcessing }),
		bind("audioProgressText", s.Narration.ProgressText, func(x *S) **string { return &x.AudioProgressText }),
		bind("audioError", s.Narration.Error, func(x *S) **string { return &x.AudioError }),

		bind("referenceImagePath", s.Reference.ImagePath, func(x *S) **string { return &x.ReferenceImagePath }),
		bind("referenceImagePrompt", s.Reference.ImagePrompt, func(x *S) **string { return &x.ReferenceImagePrompt }),
		bind("referenceImageStyle", s.Reference.ImageStyle, func(x *S) **string { return &x.ReferenceImageStyle }),
		bind("referenceImagesJson", s.Reference.ImagesJSON, func(x *S) **string { return &x.ReferenceImagesJSON }),

		bind("sceneLinksJson", s.Scenes.LinksJSON, func(x *S) **string { return &x.SceneLinksJSON }),
		bind("selectedSceneIndex", s.Scenes.SelectedIndex, func(x *S) **int { return &x.SelectedSceneIndex }),

		bind("currentStep", s.Progress.CurrentStep, func(x *S) **int { return &x.CurrentStep }),
		bind("completedSteps", s.Progress.CompletedSteps, func(x *S) **int { return &x.CompletedSteps }),
		bind("totalSteps", s.Progress.TotalSteps, func(x *S) **int { return &x.TotalSteps }),
		bind("progressPercent", s.Progress.Percent, func(x *S) **float64 { return &x.ProgressPercent }),
		bind("lastUpdatedAt", s.Progress.LastUpdatedAt, func(x *S) **int64 { return &x.LastUpdatedAt }),

		// Load activates the requested name instead.
		gatherOnly(bind("projectDirName", s.Project.DirName, func(x *S) **string { return &x.ProjectDirName })),

		gatherOnly(bind("generatedTitle", s.Generation.Title, func(x *S) **string { return &x.GeneratedTitle })),
		gatherOnly(bind("generatedPrompt", s.Generation.Prompt, func(x *S) **string { return &x.GeneratedPrompt })),
		gatherOnly(bind("generatedMusicPath", s.Generation.MusicPath, func(x *S) **string { return &x.GeneratedMusicPath })),
		gatherOnly(bind("generatedSceneCount", s.Generation.SceneCount, func(x *S) **int { return &x.GeneratedSceneCount })),
		gatherOnly(bind("generatedDurationSec", s.Generation.DurationSec, func(x *S) **float64 { return &x.GeneratedDurationSec })),
		gatherOnly(bind("finalVideoPath", s.Generation.FinalVideoPath, func(x *S) **string { return &x.FinalVideoPath })),

		bind("aspectRatio", s.Output.AspectRatio, func(x *S) **string { return &x.AspectRatio }),
		bind("resolution", s.Output.Resolution, func(x *S) **string { return &x.Resolution }),
		bind("backgroundMusicVolume", s.Output.BackgroundMusicVolume, func(x *S) **float64 { return &x.BackgroundMusicVolume }),
		bind("subtitlesEnabled", s.Output.SubtitlesEnabled, func(x *S) **bool { return &x.SubtitlesEnabled }),
	}
}

// applyGeneration restores the generation result group. Sub-fields absent
// from snap keep their current value.
func applyGeneration(ctx context.Context, g settings.Generation, snap *snapshot.Snapshot) (int, error) {
	applied := 0
	if snap.GeneratedTitle != nil {
		current, err := g.Result.Get(ctx)
		if err != nil {
			return applied, err
		}
		current.Title = *snap.GeneratedTitle
		current.Prompt = snapshot.Or(snap.GeneratedPrompt, current.Prompt)
		current.MusicPath = snapshot.Or(snap.GeneratedMusicPath, current.MusicPath)
		current.SceneCount = snapshot.Or(snap.GeneratedSceneCount, current.SceneCount)
		current.DurationSec = snapshot.Or(snap.GeneratedDurationSec, current.DurationSec)
		if err := g.Result.Set(ctx, current); err != nil {
			return applied, err
		}
		applied++
	}
	if snap.FinalVideoPath != nil {
		if err := g.FinalVideoPath.Set(ctx, *snap.FinalVideoPath); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}
