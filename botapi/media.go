// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

// Media types accepted by sendMediaGroup.
const (
	MediaPhoto     = "photo"
	MediaVideo     = "video"
	MediaAudio     = "audio"
	MediaDocument  = "document"
	MediaAnimation = "animation"
)

// InputMedia is one item of a media group. Media and Thumbnail may be
// uploads; the resolver replaces them with attach:// references.
type InputMedia struct {
	Type      string
	Media     InputFile
	Thumbnail InputFile
	Caption   string
	ParseMode string
	// HasSpoiler applies to photo, video and animation.
	HasSpoiler bool
	// Extra carries type-specific fields (width, duration, title...).
	Extra Params
}

// PhotoMedia, VideoMedia, AudioMedia, DocumentMedia and AnimationMedia
// build an InputMedia of the matching type.
func PhotoMedia(media InputFile) InputMedia { return InputMedia{Type: MediaPhoto, Media: media} }

func VideoMedia(media InputFile) InputMedia { return InputMedia{Type: MediaVideo, Media: media} }

func AudioMedia(media InputFile) InputMedia { return InputMedia{Type: MediaAudio, Media: media} }

func DocumentMedia(media InputFile) InputMedia { return InputMedia{Type: MediaDocument, Media: media} }

func AnimationMedia(media InputFile) InputMedia { return InputMedia{Type: MediaAnimation, Media: media} }

// WithCaption returns a copy of m with a caption.
func (m InputMedia) WithCaption(caption, parseMode string) InputMedia {
	m.Caption = caption
	m.ParseMode = parseMode
	return m
}

// WithThumbnail returns a copy of m with a thumbnail.
func (m InputMedia) WithThumbnail(thumbnail InputFile) InputMedia {
	m.Thumbnail = thumbnail
	return m
}

// Value encodes m as an object parameter.
func (m InputMedia) Value() Value {
	fields := make(Params, len(m.Extra)+6)
	for name, value := range m.Extra {
		fields[name] = value
	}
	fields["type"] = String(m.Type)
	fields["media"] = File(m.Media)
	if !m.Thumbnail.IsZero() {
		fields["thumbnail"] = File(m.Thumbnail)
	}
	if m.Caption != "" {
		fields["caption"] = String(m.Caption)
	}
	if m.ParseMode != "" {
		fields["parse_mode"] = String(m.ParseMode)
	}
	if m.HasSpoiler {
		fields["has_spoiler"] = Bool(true)
	}
	return Object(fields)
}
