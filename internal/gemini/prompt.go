package gemini

import (
	"fmt"
	"strings"

	"thumblytic-backend-go/internal/models"
)

const defaultColors = "Vibrant and bold (YouTube friendly)"

const subjectGlowInstruction = "EXTREMELY IMPORTANT: Apply a subtle, professional outer glow (rim light or soft high-quality aura) specifically around the main subject to make it pop and stand out from the background dramatically."

func subjectDescription(face models.FaceType) string {
	switch face {
	case models.FaceNone:
		return "No faces"
	case models.FaceReal:
		return "Real person face with shock/excitement"
	default:
		return "Hyper-realistic AI Character face"
	}
}

// BuildThumbnailPrompt renders the image prompt for a create-mode config.
// Output is a pure function of the config.
func BuildThumbnailPrompt(c models.ThumbnailConfig) string {
	glow := ""
	if c.SubjectGlow {
		glow = subjectGlowInstruction
	}
	colors := strings.TrimSpace(c.Colors)
	if colors == "" {
		colors = defaultColors
	}

	lines := []string{
		fmt.Sprintf("Generate a professional, high-converting %s thumbnail for a video about: %s.", c.AspectRatio, c.Topic),
		fmt.Sprintf("Style: %s, cinematic, premium quality.", c.Style),
		fmt.Sprintf("Emotion: %s, vivid and impactful.", c.Emotion),
		"Visual Composition: Rule-of-thirds alignment, sharp focus on the subject, background blur depth (bokeh effect).",
		strings.TrimSpace("Lighting: Dramatic lighting, rim light on subject, high contrast. " + glow),
		fmt.Sprintf("Colors: %s.", colors),
		fmt.Sprintf("Text Integration: The text \"%s\" should be bold, highly readable, 3D typography with strong hierarchy, placed according to viral design standards.", c.TextOnThumbnail),
		fmt.Sprintf("Subject: %s.", subjectDescription(c.FaceType)),
		"Quality: 8k resolution, ultra-detailed, no noise, no watermarks, studio-level color grading.",
		"Additional Features: Include viral assets like subtle glow effects, arrows or relevant icons if it boosts CTR.",
	}
	return strings.Join(lines, "\n")
}

// BuildEditPrompt renders the instruction text sent alongside the source images.
func BuildEditPrompt(imageCount int, instructions string) string {
	return fmt.Sprintf("You are an expert thumbnail designer. Use the provided %d images as reference/source. Instructions: %s. "+
		"Combine elements, swap subjects, or transform the style as requested. "+
		"Maintain hyper-realistic quality, viral composition, and cinematic lighting.",
		imageCount, strings.TrimSpace(instructions))
}

func suggestionPrompt(topic string) string {
	return fmt.Sprintf("Analyze the following video topic and suggest a high-CTR thumbnail strategy: \"%s\".", topic)
}

func auditPrompt(c models.ThumbnailConfig) string {
	return fmt.Sprintf("Audit this thumbnail configuration for virality: Topic: %s, Style: %s, Emotion: %s, Text: %s.",
		c.Topic, c.Style, c.Emotion, c.TextOnThumbnail)
}

const (
	suggestionSystemInstruction = "You are a world-class YouTube growth expert. Suggest a viral thumbnail strategy. Return only JSON."
	auditSystemInstruction      = "Critique the thumbnail configuration and provide a score (0-100) and 3 specific improvement tips. Return only JSON."
)
