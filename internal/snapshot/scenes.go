package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SceneLink is one entry of the per-scene list carried in SceneLinksJSON.
type SceneLink struct {
	ID                     string `json:"id"`
	SceneIndex             int    `json:"sceneIndex"`
	Prompt                 string `json:"prompt"`
	ImagePath              string `json:"imagePath"`
	VideoPath              string `json:"videoPath"`
	ClothesImagePath       string `json:"clothesImagePath"`
	IsGenerating           bool   `json:"isGenerating"`
	IsChangingClothes      bool   `json:"isChangingClothes"`
	IsGeneratingVideo      bool   `json:"isGeneratingVideo"`
	GenerationAttempt      int    `json:"generationAttempt"`
	VideoGenerationAttempt int    `json:"videoGenerationAttempt"`
	ErrorMessage           string `json:"errorMessage"`
}

// Busy reports whether any asynchronous operation is flagged in progress.
func (l SceneLink) Busy() bool {
	return l.IsGenerating || l.IsChangingClothes || l.IsGeneratingVideo
}

// Cleared returns l with every busy-flag off, both retry counters at zero,
// and the error message removed.
func (l SceneLink) Cleared() SceneLink {
	l.IsGenerating = false
	l.IsChangingClothes = false
	l.IsGeneratingVideo = false
	l.GenerationAttempt = 0
	l.VideoGenerationAttempt = 0
	l.ErrorMessage = ""
	return l
}

// SceneList is a decoded scene blob that remembers the original bytes of
// each entry. Entries that are never replaced encode back to those bytes.
type SceneList struct {
	entries []sceneEntry
}

type sceneEntry struct {
	link    SceneLink
	raw     json.RawMessage
	changed bool
}

// DecodeSceneList parses scene blob text. Blank text is an empty list.
func DecodeSceneList(text string) (SceneList, error) {
	if strings.TrimSpace(text) == "" {
		return SceneList{}, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal([]byte(text), &raws); err != nil {
		return SceneList{}, fmt.Errorf("decode scene list: %w", err)
	}
	entries := make([]sceneEntry, 0, len(raws))
	for i, raw := range raws {
		var link SceneLink
		if err := json.Unmarshal(raw, &link); err != nil {
			return SceneList{}, fmt.Errorf("decode scene %d: %w", i, err)
		}
		entries = append(entries, sceneEntry{link: link, raw: raw})
	}
	return SceneList{entries: entries}, nil
}

// NewSceneList builds a list from freshly constructed links.
func NewSceneList(links []SceneLink) SceneList {
	entries := make([]sceneEntry, 0, len(links))
	for _, link := range links {
		entries = append(entries, sceneEntry{link: link, changed: true})
	}
	return SceneList{entries: entries}
}

// Len returns the number of scenes.
func (l SceneList) Len() int { return len(l.entries) }

// At returns the scene at index i.
func (l SceneList) At(i int) SceneLink { return l.entries[i].link }

// Links returns a copy of the decoded scenes.
func (l SceneList) Links() []SceneLink {
	links := make([]SceneLink, 0, len(l.entries))
	for _, entry := range l.entries {
		links = append(links, entry.link)
	}
	return links
}

// Replace returns a new list with scene i set to link. Replacing a scene with
// an identical value leaves the list unchanged.
func (l SceneList) Replace(i int, link SceneLink) SceneList {
	if l.entries[i].link == link {
		return l
	}
	entries := make([]sceneEntry, len(l.entries))
	copy(entries, l.entries)
	entries[i] = sceneEntry{link: link, raw: l.entries[i].raw, changed: true}
	return SceneList{entries: entries}
}

// Changed reports whether any scene was replaced since decoding.
func (l SceneList) Changed() bool {
	for _, entry := range l.entries {
		if entry.changed {
			return true
		}
	}
	return false
}

// Encode renders the list as compact JSON. Unchanged entries reuse their
// original bytes; replaced entries keep any fields this package does not
// know about.
func (l SceneList) Encode() (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, entry := range l.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := entry.encode()
		if err != nil {
			return "", fmt.Errorf("encode scene %d: %w", i, err)
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.String(), nil
}

func (e sceneEntry) encode() ([]byte, error) {
	if !e.changed && len(e.raw) > 0 {
		return e.raw, nil
	}
	known, err := json.Marshal(e.link)
	if err != nil {
		return nil, err
	}
	if len(e.raw) == 0 {
		return known, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(e.raw, &merged); err != nil {
		return known, nil
	}
	var overlay map[string]json.RawMessage
	if err := json.Unmarshal(known, &overlay); err != nil {
		return nil, err
	}
	for key, value := range overlay {
		// Unmarshal matches keys case-insensitively, so a variant spelling
		// left in the raw object would win on the next decode.
		for existing := range merged {
			if strings.EqualFold(existing, key) {
				delete(merged, existing)
			}
		}
		merged[key] = value
	}
	return json.Marshal(merged)
}

// DecodeSceneLinks parses scene blob text into plain values.
func DecodeSceneLinks(text string) ([]SceneLink, error) {
	list, err := DecodeSceneList(text)
	if err != nil {
		return nil, err
	}
	return list.Links(), nil
}

// EncodeSceneLinks renders links as a fresh scene blob.
func EncodeSceneLinks(links []SceneLink) (string, error) {
	return NewSceneList(links).Encode()
}

// ReferenceImage is one entry of ReferenceImagesJSON.
type ReferenceImage struct {
	Path      string `json:"path"`
	Prompt    string `json:"prompt"`
	Style     string `json:"style"`
	CreatedAt int64  `json:"createdAt"`
}

// DecodeReferenceImages parses the reference image blob. Blank text is an empty list.
func DecodeReferenceImages(text string) ([]ReferenceImage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var images []ReferenceImage
	if err := json.Unmarshal([]byte(text), &images); err != nil {
		return nil, fmt.Errorf("decode reference images: %w", err)
	}
	return images, nil
}

// EncodeReferenceImages renders images as a reference image blob.
func EncodeReferenceImages(images []ReferenceImage) (string, error) {
	if images == nil {
		images = []ReferenceImage{}
	}
	data, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encode reference images: %w", err)
	}
	return string(data), nil
}
