package extractor

import "fmt"

const ocrSystemPrompt = "You are an expert OCR engine. Transcribe the " +
	"text in the image exactly as it appears. Preserve line breaks, " +
	"punctuation, and formatting. Return ONLY the transcribed text with " +
	"no commentary, no markdown fences, and no descriptions of the image."

func (e *Extractor) buildOCRPrompt(regionType string) string {
	prompt := fmt.Sprintf(
		"Extract all text from this image. It shows a %q section of a document.",
		regionType)
	if e.cfg.Request != "" {
		prompt += fmt.Sprintf(
			" The user is specifically interested in: %s. "+
				"Transcribe the full section faithfully regardless.",
			e.cfg.Request)
	}
	prompt += " If the image contains no legible text, return an empty response."
	return prompt
}
