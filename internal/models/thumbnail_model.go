package models

import "strings"

// StylePreset is the visual style of a thumbnail.
type StylePreset string

const (
	StyleBold      StylePreset = "Bold"
	StyleCinematic StylePreset = "Cinematic"
	StyleMinimal   StylePreset = "Minimal"
	StyleGaming    StylePreset = "Gaming"
	StyleTech      StylePreset = "Tech"
	StyleFinance   StylePreset = "Finance"
	StyleViral     StylePreset = "Viral"
)

// StylePresets lists every style in display order.
var StylePresets = []StylePreset{StyleBold, StyleCinematic, StyleMinimal, StyleGaming, StyleTech, StyleFinance, StyleViral}

func (s StylePreset) Valid() bool {
	for _, v := range StylePresets {
		if s == v {
			return true
		}
	}
	return false
}

// Emotion is the primary emotional hook of a thumbnail.
type Emotion string

const (
	EmotionCuriosity  Emotion = "Curiosity"
	EmotionShock      Emotion = "Shock"
	EmotionExcitement Emotion = "Excitement"
	EmotionAuthority  Emotion = "Authority"
	EmotionUrgency    Emotion = "Urgency"
)

var Emotions = []Emotion{EmotionCuriosity, EmotionShock, EmotionExcitement, EmotionAuthority, EmotionUrgency}

func (e Emotion) Valid() bool {
	for _, v := range Emotions {
		if e == v {
			return true
		}
	}
	return false
}

// FaceType selects the kind of subject rendered.
type FaceType string

const (
	FaceNone        FaceType = "None"
	FaceReal        FaceType = "Yes"
	FaceAICharacter FaceType = "AI Character"
)

func (f FaceType) Valid() bool {
	return f == FaceNone || f == FaceReal || f == FaceAICharacter
}

// AspectRatio of the rendered image.
type AspectRatio string

const (
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
	AspectSquare    AspectRatio = "1:1"
)

func (a AspectRatio) Valid() bool {
	return a == AspectLandscape || a == AspectPortrait || a == AspectSquare
}

// ThumbnailConfig holds the parameters of a create-mode generation.
type ThumbnailConfig struct {
	Topic           string      `json:"topic"`
	Style           StylePreset `json:"style"`
	Emotion         Emotion     `json:"emotion"`
	TextOnThumbnail string      `json:"textOnThumbnail"`
	Colors          string      `json:"colors"`
	FaceType        FaceType    `json:"faceType"`
	AspectRatio     AspectRatio `json:"aspectRatio"`
	SubjectGlow     bool        `json:"subjectGlow"`
}

// DefaultThumbnailConfig is the configuration a new session starts from.
func DefaultThumbnailConfig() ThumbnailConfig {
	return ThumbnailConfig{
		Topic:           "How I Built a $10k/mo Business with AI",
		Style:           StyleCinematic,
		Emotion:         EmotionAuthority,
		TextOnThumbnail: "$10k/MO SECRETS",
		Colors:          "Neon blue and metallic silver",
		FaceType:        FaceReal,
		AspectRatio:     AspectLandscape,
		SubjectGlow:     true,
	}
}

// Normalize trims the topic and fills unset enum fields from the defaults.
func (c ThumbnailConfig) Normalize() ThumbnailConfig {
	def := DefaultThumbnailConfig()
	c.Topic = strings.TrimSpace(c.Topic)
	if c.Style == "" {
		c.Style = def.Style
	}
	if c.Emotion == "" {
		c.Emotion = def.Emotion
	}
	if c.FaceType == "" {
		c.FaceType = def.FaceType
	}
	if c.AspectRatio == "" {
		c.AspectRatio = def.AspectRatio
	}
	return c
}

// ToMap snapshots the config for the generation record.
func (c ThumbnailConfig) ToMap() JSONMap {
	return JSONMap{
		"topic":           c.Topic,
		"style":           string(c.Style),
		"emotion":         string(c.Emotion),
		"textOnThumbnail": c.TextOnThumbnail,
		"colors":          c.Colors,
		"faceType":        string(c.FaceType),
		"aspectRatio":     string(c.AspectRatio),
		"subjectGlow":     c.SubjectGlow,
	}
}

// EditRequest is an edit-mode ("morph") request: up to three source images plus instructions.
type EditRequest struct {
	Images       []string `json:"images"`
	Instructions string   `json:"instructions"`
}

// Suggestion is the provider's recommended strategy for a topic.
type Suggestion struct {
	SuggestedText    string      `json:"suggestedText"`
	SuggestedStyle   StylePreset `json:"suggestedStyle"`
	SuggestedEmotion Emotion     `json:"suggestedEmotion"`
	Reasoning        string      `json:"reasoning"`
}

// AuditTip is one improvement hint. Type is success, warning or info.
type AuditTip struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// AuditResult is the provider's virality critique of a config.
type AuditResult struct {
	Score   int        `json:"score"`
	Verdict string     `json:"verdict"`
	Tips    []AuditTip `json:"tips"`
}
